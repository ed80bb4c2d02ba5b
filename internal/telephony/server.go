package telephony

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	twilioclient "github.com/twilio/twilio-go/client"
	"github.com/twilio/twilio-go/twiml"
	"golang.org/x/sync/errgroup"

	"github.com/executiveusa/synthia/internal/health"
	"github.com/executiveusa/synthia/internal/observe"
)

// streamPath is the WebSocket endpoint Twilio connects its media stream to.
const streamPath = "/ws/twilio-stream"

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 15 * time.Second

// ServerConfig configures the public HTTP surface.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// PublicHost is the externally reachable hostname, used to build the
	// wss:// stream URL in TwiML and to validate webhook signatures.
	PublicHost string
	// TwilioAuthToken enables webhook signature validation when non-empty.
	TwilioAuthToken string
	// ConnectingPhrase is spoken by Twilio before the stream opens.
	ConnectingPhrase string
	// Metrics feeds the HTTP middleware. Nil disables the request metric.
	Metrics *observe.Metrics
}

// Server is the HTTP front door: the /voice webhook answering calls with
// TwiML, the media stream WebSocket, health probes and metrics.
type Server struct {
	cfg       ServerConfig
	stream    *StreamHandler
	validator twilioclient.RequestValidator
	srv       *http.Server
	log       *slog.Logger
}

// NewServer assembles the mux and returns a Server ready to Run.
func NewServer(cfg ServerConfig, stream *StreamHandler, checks *health.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ConnectingPhrase == "" {
		cfg.ConnectingPhrase = "Hi, this is Synthia from The Pauli Effect. Connecting you now."
	}
	s := &Server{
		cfg:       cfg,
		stream:    stream,
		validator: twilioclient.NewRequestValidator(cfg.TwilioAuthToken),
		log:       log,
	}

	// The WebSocket route stays outside the tracing middleware: the
	// connection hijack needs the raw ResponseWriter.
	wrap := observe.Middleware(cfg.Metrics)
	mux := http.NewServeMux()
	mux.Handle("POST /voice", wrap(http.HandlerFunc(s.handleVoice)))
	mux.Handle("GET "+streamPath, stream)
	mux.Handle("GET /metrics", wrap(promhttp.Handler()))
	if checks != nil {
		mux.Handle("GET /healthz", wrap(http.HandlerFunc(checks.Healthz)))
		mux.Handle("GET /readyz", wrap(http.HandlerFunc(checks.Readyz)))
	}

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully. Streams in
// progress get [shutdownTimeout] to drain.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// handleVoice answers Twilio's incoming-call webhook with TwiML that opens
// a bidirectional media stream back to this server, carrying the caller's
// number as a stream parameter.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !s.validSignature(r) {
		s.log.Warn("webhook signature rejected", "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	caller := r.PostForm.Get("From")
	s.log.Info("incoming call", "call_sid", r.PostForm.Get("CallSid"), "from", caller)

	say := &twiml.VoiceSay{Message: s.cfg.ConnectingPhrase}
	stream := &twiml.VoiceStream{
		Url: "wss://" + s.cfg.PublicHost + streamPath,
		InnerElements: []twiml.Element{
			&twiml.VoiceParameter{Name: callerParameter, Value: caller},
		},
	}
	connect := &twiml.VoiceConnect{InnerElements: []twiml.Element{stream}}

	response, err := twiml.Voice([]twiml.Element{say, connect})
	if err != nil {
		s.log.Error("twiml generation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprint(w, response)
}

// validSignature checks the X-Twilio-Signature header. Validation is
// skipped when no auth token is configured (local development).
func (s *Server) validSignature(r *http.Request) bool {
	if s.cfg.TwilioAuthToken == "" {
		return true
	}
	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}
	url := "https://" + s.cfg.PublicHost + r.URL.RequestURI()
	return s.validator.Validate(url, params, r.Header.Get("X-Twilio-Signature"))
}
