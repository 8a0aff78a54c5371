package httpapi

import (
	"log"
	"runtime"
	"time"

	"github.com/valyala/fasthttp"
)

// Config holds server configuration, mirroring the options a caller would
// want to tune for any fasthttp-backed service.
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
	CORSOrigin    string
}

// DefaultConfig returns sensible defaults for addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:          addr,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		MaxConcurrent: runtime.NumCPU() * 2,
	}
}

// Server wires a set of Planners (one per routing profile) to an HTTP
// surface.
type Server struct {
	cfg      Config
	handlers *Handlers
	srv      *fasthttp.Server
	sem      chan struct{}
}

// NewServer builds a Server ready to ListenAndServe.
func NewServer(cfg Config, handlers *Handlers) *Server {
	s := &Server{
		cfg:      cfg,
		handlers: handlers,
		sem:      make(chan struct{}, cfg.MaxConcurrent),
	}
	s.srv = &fasthttp.Server{
		Handler:      s.route,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe blocks serving requests on cfg.Addr.
func (s *Server) ListenAndServe() error {
	log.Printf("httpapi: listening on %s", s.cfg.Addr)
	return s.srv.ListenAndServe(s.cfg.Addr)
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown() error { return s.srv.Shutdown() }

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	s.withMiddleware(func(ctx *fasthttp.RequestCtx) {
		switch {
		case string(ctx.Path()) == "/api/v1/route" && ctx.IsPost():
			s.handlers.HandleRoute(ctx)
		case string(ctx.Path()) == "/api/v1/health" && ctx.IsGet():
			s.handlers.HandleHealth(ctx)
		case string(ctx.Path()) == "/api/v1/stats" && ctx.IsGet():
			s.handlers.HandleStats(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			writeJSON(ctx, ErrorResponse{Error: "not_found"})
		}
	})(ctx)
}

// withMiddleware applies security headers, CORS, a concurrency limiter,
// panic recovery and request logging, the same shape as the teacher's
// net/http middleware chain, ported to fasthttp's RequestHandler contract.
func (s *Server) withMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("X-Content-Type-Options", "nosniff")
		ctx.Response.Header.Set("X-Frame-Options", "DENY")
		ctx.Response.Header.Set("Cache-Control", "no-store")
		if s.cfg.CORSOrigin != "" {
			ctx.Response.Header.Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		}

		select {
		case s.sem <- struct{}{}:
			defer func() { <-s.sem }()
		default:
			ctx.Response.Header.Set("Retry-After", "1")
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			writeJSON(ctx, ErrorResponse{Error: "service_unavailable"})
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("httpapi: panic: %v", rec)
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				writeJSON(ctx, ErrorResponse{Error: "internal_error"})
			}
		}()

		start := time.Now()
		next(ctx)
		log.Printf("%s %s %s", ctx.Method(), ctx.Path(), time.Since(start).Round(time.Microsecond))
	}
}
