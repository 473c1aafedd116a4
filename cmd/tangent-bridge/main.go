// Command tangent-bridge is the file bridge sidecar of the Tangent notebook
// app. The UI shell launches it and exchanges JSON requests over stdio;
// "serve" exposes the same commands over WebSocket and HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
