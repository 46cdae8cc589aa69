// Package server exposes the kernel over HTTP: the agent card, Connect RPCs
// for invoke and stream, Prometheus metrics, and a health probe.
//
// RPC messages are google.protobuf.Struct values, so clients can speak the
// Connect JSON protocol without generated stubs:
//
//	POST /stockagent.v1.AgentService/Invoke
//	{"session_id": "s1", "query": "What is the stock price of AAPL?"}
//
// Reset takes only a session_id and clears that session's history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/stockagent/kernel"
	"github.com/tailored-agentic-units/stockagent/manifest"
	"github.com/tailored-agentic-units/stockagent/observability"
	"github.com/tailored-agentic-units/stockagent/outcome"
)

// RPC procedure paths.
const (
	ServiceName     = "stockagent.v1.AgentService"
	InvokeProcedure = "/" + ServiceName + "/Invoke"
	StreamProcedure = "/" + ServiceName + "/Stream"
	ResetProcedure  = "/" + ServiceName + "/Reset"
	CardPath        = "/.well-known/agent.json"
	SessionsPath    = "/sessions"
)

// Server event types.
const (
	EventRequest observability.EventType = "server.request"
	EventError   observability.EventType = "server.error"
)

// Agent is the kernel surface the server needs.
type Agent interface {
	Invoke(ctx context.Context, sessionID, query string) (outcome.Outcome, error)
	Stream(ctx context.Context, sessionID, query string) iter.Seq2[kernel.ProgressEvent, error]
	Reset(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the observer for request and error events.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithGatherer serves metrics from g at /metrics. Without it the route is
// not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// Server routes transport requests to an Agent.
type Server struct {
	agent    Agent
	card     manifest.Card
	observer observability.Observer
	gatherer prometheus.Gatherer
}

// New creates a Server for a and advertises card.
func New(a Agent, card manifest.Card, opts ...Option) *Server {
	s := &Server{
		agent:    a,
		card:     card,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get(CardPath, s.handleCard)
	r.Get(SessionsPath, s.handleSessions)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Handle(InvokeProcedure, connect.NewUnaryHandler(InvokeProcedure, s.invoke))
	r.Handle(StreamProcedure, connect.NewServerStreamHandler(StreamProcedure, s.stream))
	r.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, s.reset))

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) handleCard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.card); err != nil {
		s.emitError(context.Background(), "card", err)
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.agent.Sessions(r.Context())
	if err != nil {
		s.emitError(r.Context(), "sessions", err)
		http.Error(w, outcome.FallbackMessage, http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"sessions": ids}); err != nil {
		s.emitError(r.Context(), "sessions", err)
	}
}

func (s *Server) reset(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	sessionID, err := parseSessionID(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.agent.Reset(ctx, sessionID); err != nil {
		return nil, s.connectError(ctx, "reset", err)
	}

	msg, err := NewResetRequest(sessionID)
	if err != nil {
		return nil, s.connectError(ctx, "reset", err)
	}
	return connect.NewResponse(msg), nil
}

func (s *Server) invoke(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	sessionID, query, err := parseRequest(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	out, err := s.agent.Invoke(ctx, sessionID, query)
	if err != nil {
		return nil, s.connectError(ctx, "invoke", err)
	}

	msg, err := outcomeMessage(out)
	if err != nil {
		return nil, s.connectError(ctx, "invoke", err)
	}
	return connect.NewResponse(msg), nil
}

func (s *Server) stream(ctx context.Context, req *connect.Request[structpb.Struct], stream *connect.ServerStream[structpb.Struct]) error {
	sessionID, query, err := parseRequest(req.Msg)
	if err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	for event, err := range s.agent.Stream(ctx, sessionID, query) {
		if err != nil {
			return s.connectError(ctx, "stream", err)
		}

		msg, err := eventMessage(event)
		if err != nil {
			return s.connectError(ctx, "stream", err)
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// connectError maps kernel errors to Connect codes. Unexpected errors are
// logged and replaced with a generic message.
func (s *Server) connectError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, kernel.ErrEmptySessionID):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		s.emitError(ctx, op, err)
		return connect.NewError(connect.CodeInternal, errors.New(outcome.FallbackMessage))
	}
}

func (s *Server) emitError(ctx context.Context, op string, err error) {
	observability.Emit(ctx, s.observer, EventError, observability.LevelError, "server."+op, map[string]any{
		observability.KeyError: err.Error(),
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		observability.Emit(r.Context(), s.observer, EventRequest, observability.LevelVerbose, "server.http", map[string]any{
			"method":                    r.Method,
			"path":                      r.URL.Path,
			"status":                    ww.Status(),
			"request_id":                middleware.GetReqID(r.Context()),
			observability.KeyDurationMS: time.Since(start).Milliseconds(),
		})
	})
}
