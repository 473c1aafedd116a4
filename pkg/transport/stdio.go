package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/entrhq/tangent/pkg/logging"
	"github.com/entrhq/tangent/pkg/metrics"
	"github.com/entrhq/tangent/pkg/types"
)

// StdioServer reads newline-delimited requests and writes one response line
// per request. Each request runs on its own goroutine.
type StdioServer struct {
	invoker Invoker
	in      io.Reader
	out     io.Writer
	logger  *logging.Logger

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// NewStdioServer creates a server reading from in and writing to out.
func NewStdioServer(invoker Invoker, in io.Reader, out io.Writer, logger *logging.Logger) *StdioServer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &StdioServer{
		invoker: invoker,
		in:      in,
		out:     out,
		logger:  logger,
	}
}

// Serve processes requests until in reaches EOF or ctx is cancelled, then
// waits for in-flight requests to finish. Cancellation is noticed between
// lines; a blocked read is not interrupted.
func (s *StdioServer) Serve(ctx context.Context) error {
	metrics.ConnectionOpened("stdio")
	defer metrics.ConnectionClosed("stdio")
	defer s.wg.Wait()

	s.logger.Infof("serving requests on stdio")

	reader := bufio.NewReader(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := reader.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			s.dispatch(ctx, line)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Infof("stdin closed, waiting for in-flight requests")
				return nil
			}
			return fmt.Errorf("failed to read request: %w", err)
		}
	}
}

func (s *StdioServer) dispatch(ctx context.Context, line []byte) {
	req, bad := decodeRequest(line)
	if bad != nil {
		s.logger.Warnf("rejected request line: %s", bad.Error)
		s.write(bad)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		reqCtx := logging.WithRequestID(ctx, logging.NewRequestID())
		s.write(s.invoker.Invoke(reqCtx, req))
	}()
}

func (s *StdioServer) write(resp *types.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Errorf("failed to encode response: %v", err)
		data, _ = json.Marshal(types.NewError(resp.ID, types.ErrorKindIO, "failed to encode response"))
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		s.logger.Errorf("failed to write response: %v", err)
	}
}
