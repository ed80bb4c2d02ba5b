// Package app wires all Synthia subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves calls until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithMemoryStore, WithDispatcher, etc.). When an option is not provided,
// New creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/executiveusa/synthia/internal/callsession"
	"github.com/executiveusa/synthia/internal/config"
	"github.com/executiveusa/synthia/internal/dispatch"
	"github.com/executiveusa/synthia/internal/health"
	"github.com/executiveusa/synthia/internal/observe"
	"github.com/executiveusa/synthia/internal/reasoning"
	"github.com/executiveusa/synthia/internal/telephony"
	"github.com/executiveusa/synthia/pkg/memory"
	"github.com/executiveusa/synthia/pkg/memory/postgres"
	"github.com/executiveusa/synthia/pkg/provider/llm"
	"github.com/executiveusa/synthia/pkg/provider/stt"
	"github.com/executiveusa/synthia/pkg/provider/tts"
)

// Providers holds the AI backends the pipeline runs on. Reasoning lists the
// LLM fallback chain in priority order; STT and TTS are single providers.
// Populated by main via the config registry.
type Providers struct {
	Reasoning []llm.Provider
	STT       stt.Provider
	TTS       tts.Provider
}

// App owns all subsystem lifetimes and serves the Twilio voice pipeline.
type App struct {
	cfg       *config.Config
	providers *Providers

	engine     *reasoning.Engine
	store      memory.Store
	dispatcher dispatch.Dispatcher
	metrics    *observe.Metrics
	server     *telephony.Server

	// dbPing is non-nil when a real database backs the memory store; it
	// feeds the /readyz database check.
	dbPing func(context.Context) error

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithMemoryStore injects a caller memory store instead of connecting to
// PostgreSQL from config.
func WithMemoryStore(s memory.Store) Option {
	return func(a *App) { a.store = s }
}

// WithDispatcher injects a job dispatcher instead of creating a webhook
// dispatcher from config.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(a *App) { a.dispatcher = d }
}

// WithMetrics injects a metrics recorder instead of using the process-wide
// default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main (populated via the config registry). Use Option functions
// to inject test doubles for any subsystem.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		return nil, errors.New("app: providers must not be nil")
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}

	if err := a.initReasoning(); err != nil {
		return nil, fmt.Errorf("app: init reasoning: %w", err)
	}
	if err := a.initMemory(ctx); err != nil {
		return nil, fmt.Errorf("app: init memory: %w", err)
	}
	a.initDispatch()
	a.initMetrics()
	a.initServer()

	return a, nil
}

// initReasoning builds the fallback reasoning engine from the provider chain.
func (a *App) initReasoning() error {
	engine, err := reasoning.NewEngine(a.providers.Reasoning, reasoning.Config{
		MaxTokens:   a.cfg.Reasoning.MaxTokens,
		Temperature: a.cfg.Reasoning.Temperature,
		Timeout:     a.cfg.Reasoning.Timeout.Std(),
	})
	if err != nil {
		return err
	}
	a.engine = engine
	return nil
}

// initMemory connects the PostgreSQL caller memory, unless a store was
// injected or memory.dsn is empty. Without a store the agent still answers
// calls; it just never remembers anyone.
func (a *App) initMemory(ctx context.Context) error {
	if a.store != nil {
		return nil // injected
	}
	dsn := a.cfg.Memory.DSN
	if dsn == "" {
		slog.Info("caller memory disabled; no dsn configured")
		return nil
	}

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return err
	}
	a.store = store
	a.dbPing = store.Ping
	a.closers = append(a.closers, func() error {
		store.Close()
		return nil
	})
	return nil
}

// initDispatch creates the design-brief webhook dispatcher if one wasn't
// injected. Without a webhook URL briefs are logged and dropped.
func (a *App) initDispatch() {
	if a.dispatcher != nil {
		return
	}
	if url := a.cfg.Dispatch.WebhookURL; url != "" {
		a.dispatcher = dispatch.NewWebhook(url)
		return
	}
	slog.Info("brief dispatch disabled; no webhook_url configured")
}

func (a *App) initMetrics() {
	if a.metrics != nil {
		return
	}
	a.metrics = observe.DefaultMetrics()
}

// initServer assembles the session factory, health checks and HTTP surface.
func (a *App) initServer() {
	factory := func(c callsession.Config) (*callsession.Session, error) {
		return callsession.New(c, callsession.Deps{
			Reasoning:  a.engine,
			STT:        a.providers.STT,
			TTS:        a.providers.TTS,
			Memory:     a.store,
			Dispatcher: a.dispatcher,
			Metrics:    a.metrics,
		})
	}
	stream := telephony.NewStreamHandler(factory, slog.Default())

	checks := health.New(a.healthCheckers()...)

	a.server = telephony.NewServer(telephony.ServerConfig{
		Addr:             a.cfg.ListenAddr,
		PublicHost:       a.cfg.PublicHost,
		TwilioAuthToken:  a.cfg.Twilio.AuthToken,
		ConnectingPhrase: a.cfg.Twilio.ConnectingPhrase,
		Metrics:          a.metrics,
	}, stream, checks, slog.Default())
}

// healthCheckers builds the /readyz probes: the provider pipeline must be
// complete, and the database (when configured) must answer a ping.
func (a *App) healthCheckers() []health.Checker {
	checkers := []health.Checker{
		{
			Name: "providers",
			Check: func(context.Context) error {
				if a.providers.STT == nil {
					return errors.New("no stt provider configured")
				}
				if a.providers.TTS == nil {
					return errors.New("no tts provider configured")
				}
				return nil
			},
		},
	}
	if a.dbPing != nil {
		checkers = append(checkers, health.Checker{
			Name:  "database",
			Check: a.dbPing,
		})
	}
	return checkers
}

// Engine returns the reasoning engine, mainly for startup logging.
func (a *App) Engine() *reasoning.Engine {
	return a.engine
}

// Run serves calls until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Shutdown releases all resources. Safe to call more than once; only the
// first call does the work. The HTTP server drains inside [App.Run] when its
// context is cancelled, so this only closes what New opened.
func (a *App) Shutdown(context.Context) error {
	var errs []error
	a.stopOnce.Do(func() {
		for _, closeFn := range a.closers {
			if err := closeFn(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
