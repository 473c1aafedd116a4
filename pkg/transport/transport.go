// Package transport carries bridge requests over stdio, WebSocket and HTTP.
//
// Every transport speaks the same JSON shapes: a types.Request in, a
// types.Response out, with the request id echoed back. Requests on one
// connection may complete out of order.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/entrhq/tangent/pkg/types"
)

// Invoker executes a request. *bridge.Bridge implements it.
type Invoker interface {
	Invoke(ctx context.Context, req *types.Request) *types.Response
}

// decodeRequest parses one request message. The returned response is
// non-nil when the message is unusable and should be sent back as is.
//
// Numeric ids decode as json.Number so they are echoed back digit for digit.
func decodeRequest(data []byte) (*types.Request, *types.Response) {
	var req types.Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return nil, types.NewError(nil, types.ErrorKindInvalid, fmt.Sprintf("invalid request: %v", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, types.NewError(nil, types.ErrorKindInvalid, "invalid request: trailing data after request object")
	}
	if req.Cmd == "" {
		return nil, types.NewError(req.ID, types.ErrorKindInvalid, "invalid request: missing cmd")
	}
	return &req, nil
}
