package types

import "encoding/json"

// ErrorKind classifies a failed request for callers that want more than the message.
type ErrorKind string

const (
	ErrorKindNotFound       ErrorKind = "not_found"       // ErrorKindNotFound indicates a file the request needed does not exist.
	ErrorKindIO             ErrorKind = "io"              // ErrorKindIO indicates a read, write or directory creation failure.
	ErrorKindParse          ErrorKind = "parse"           // ErrorKindParse indicates the persisted recent-file list is malformed.
	ErrorKindPlatform       ErrorKind = "platform"        // ErrorKindPlatform indicates a required system directory could not be resolved.
	ErrorKindInvalid        ErrorKind = "invalid"         // ErrorKindInvalid indicates malformed request arguments or a rejected path.
	ErrorKindUnknownCommand ErrorKind = "unknown_command" // ErrorKindUnknownCommand indicates the command name is not registered.
)

// Request is a single command invocation sent by the UI shell.
type Request struct {
	// ID is echoed back in the Response so the caller can correlate replies.
	// Any JSON value is accepted; the transports decode numbers as
	// json.Number so large ids survive the round trip.
	ID any `json:"id"`

	// Cmd is the command name, e.g. "read_notebook_file".
	Cmd string `json:"cmd"`

	// Args holds the command arguments as a JSON object.
	Args json.RawMessage `json:"args,omitempty"`
}

// Response is the reply to a Request.
type Response struct {
	ID     any       `json:"id"`
	OK     bool      `json:"ok"`
	Result any       `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
	Kind   ErrorKind `json:"kind,omitempty"`
}

// NewResult builds a successful response.
func NewResult(id any, result any) *Response {
	return &Response{ID: id, OK: true, Result: result}
}

// NewError builds a failed response carrying a human-readable message.
func NewError(id any, kind ErrorKind, message string) *Response {
	return &Response{ID: id, Kind: kind, Error: message}
}
