package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/entrhq/tangent/pkg/logging"
	"github.com/entrhq/tangent/pkg/metrics"
	"github.com/entrhq/tangent/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// ServerOptions configures a Server.
type ServerOptions struct {
	// AllowedOrigins lists browser origins accepted on /ws. Empty accepts
	// requests without an Origin header and same-host origins only.
	AllowedOrigins []string

	Logger *logging.Logger
}

// Server serves the bridge over HTTP:
//
//	GET  /ws            WebSocket: requests in, responses and events out
//	POST /invoke/{cmd}  args object as body, Response as reply
//	GET  /healthz       liveness
//	GET  /metrics       Prometheus exposition
type Server struct {
	invoker  Invoker
	logger   *logging.Logger
	origins  map[string]bool
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// NewServer creates a server dispatching to invoker.
func NewServer(invoker Invoker, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		invoker: invoker,
		logger:  logger,
		origins: make(map[string]bool, len(opts.AllowedOrigins)),
		mux:     http.NewServeMux(),
		clients: make(map[*wsClient]struct{}),
	}
	for _, o := range opts.AllowedOrigins {
		s.origins[strings.TrimRight(o, "/")] = true
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.HandleFunc("POST /invoke/{cmd}", s.handleInvoke)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", metrics.Handler())

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and disconnects WebSocket clients.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Infof("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Close()
	err := srv.Shutdown(shutdownCtx)
	<-errCh
	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Broadcast pushes event to every connected WebSocket client.
func (s *Server) Broadcast(event *types.Event) {
	s.mu.Lock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(event); err != nil {
			s.logger.Debugf("failed to push %s event: %v", event.Type, err)
		}
	}
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects all WebSocket clients.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if s.origins[strings.TrimRight(origin, "/")] {
		return true
	}
	if len(s.origins) > 0 {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade: %v", err)
		return
	}

	client := &wsClient{conn: conn}
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()
	metrics.ConnectionOpened("websocket")
	s.logger.Infof("websocket client connected from %s", r.RemoteAddr)

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		conn.Close()
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
		metrics.ConnectionClosed("websocket")
		s.logger.Infof("websocket client %s disconnected", r.RemoteAddr)
	}()

	ctx := r.Context()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		req, bad := decodeRequest(msg)
		if bad != nil {
			_ = client.send(bad)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			reqCtx := logging.WithRequestID(ctx, logging.NewRequestID())
			if err := client.send(s.invoker.Invoke(reqCtx, req)); err != nil {
				s.logger.Debugf("failed to send response: %v", err)
			}
		}()
	}
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, types.NewError(nil, types.ErrorKindInvalid, fmt.Sprintf("failed to read request body: %v", err)))
		return
	}

	var id any
	requestID := r.Header.Get("X-Request-Id")
	if requestID != "" {
		id = requestID
	} else {
		requestID = logging.NewRequestID()
	}

	req := &types.Request{ID: id, Cmd: r.PathValue("cmd")}
	if len(strings.TrimSpace(string(body))) > 0 {
		req.Args = json.RawMessage(body)
	}

	ctx := logging.WithRequestID(r.Context(), requestID)
	writeResponse(w, s.invoker.Invoke(ctx, req))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func writeResponse(w http.ResponseWriter, resp *types.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(resp))
	_ = json.NewEncoder(w).Encode(resp)
}

func statusFor(resp *types.Response) int {
	if resp.OK {
		return http.StatusOK
	}
	switch resp.Kind {
	case types.ErrorKindInvalid:
		return http.StatusBadRequest
	case types.ErrorKindNotFound, types.ErrorKindUnknownCommand:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
