package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/debug"
	"github.com/careroute/concierge/pkg/observability"
	"github.com/careroute/concierge/pkg/provider"
	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
	"github.com/careroute/concierge/pkg/transport"
)

// Engine runs one chat turn end to end. It implements
// transport.ChatService.
type Engine struct {
	gateway   provider.Gateway
	registry  *tools.Registry
	handlers  map[string]tools.Handler
	persister *Persister
	validate  api.ValidationConfig
	cfg       Config
	logger    *slog.Logger
}

// Ensure Engine implements transport.ChatService at compile time.
var _ transport.ChatService = (*Engine)(nil)

// Options are the collaborators of an Engine.
type Options struct {
	Gateway   provider.Gateway
	Registry  *tools.Registry
	Handlers  map[string]tools.Handler
	Persister *Persister

	// Validation limits the inbound request. The zero value means
	// api.DefaultValidationConfig.
	Validation *api.ValidationConfig

	Logger *slog.Logger
}

// New creates an Engine. The registry and the handler table must name
// exactly the same tools.
func New(opts Options, cfg Config) (*Engine, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("engine: gateway must not be nil")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("engine: registry must not be nil")
	}
	if err := checkHandlers(opts.Registry, opts.Handlers); err != nil {
		return nil, err
	}

	e := &Engine{
		gateway:   opts.Gateway,
		registry:  opts.Registry,
		handlers:  opts.Handlers,
		persister: opts.Persister,
		validate:  api.DefaultValidationConfig(),
		cfg:       cfg,
		logger:    opts.Logger,
	}
	if opts.Validation != nil {
		e.validate = *opts.Validation
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.persister == nil {
		e.persister = NewPersister(nil, 0, e.logger)
	}
	return e, nil
}

func checkHandlers(reg *tools.Registry, handlers map[string]tools.Handler) error {
	names := reg.Names()
	for _, name := range names {
		if handlers[name] == nil {
			return fmt.Errorf("engine: tool %q has no handler", name)
		}
	}
	for name := range handlers {
		if !slices.Contains(names, name) {
			return fmt.Errorf("engine: handler %q has no tool definition", name)
		}
	}
	return nil
}

// Chat handles one chat turn.
func (e *Engine) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	if apiErr := api.ValidateRequest(req, e.validate); apiErr != nil {
		return nil, apiErr
	}

	conv := e.assemble(req)
	reply, err := e.converse(ctx, conv)
	if err != nil {
		return nil, err
	}

	res := e.dispatch(ctx, e.session(ctx, req.Context), reply.Segments)

	if res.journeyRef != "" {
		payload := res.payload
		if payload == nil && res.createdJourney != "" {
			payload = tools.JourneyRef{JourneyID: res.createdJourney}
		}
		e.persister.Record(ctx, res.journeyRef, req.UserMessage, res.message, payload)
	}

	resp := &api.ChatResponse{
		Message:   res.message,
		JourneyID: res.createdJourney,
	}
	switch p := res.payload.(type) {
	case tools.FacilityList:
		resp.Facilities = p.Facilities
	case tools.ComparisonSet:
		resp.Facilities = p.Facilities
	}
	return resp, nil
}

// session binds the turn to the authenticated caller. A verified token
// subject wins over the userId in the request body, so writes land on the
// same rows the scoped reads can see.
func (e *Engine) session(ctx context.Context, sc api.SessionContext) api.SessionContext {
	caller := storage.CallerFrom(ctx)
	if caller == "" {
		return sc
	}
	if sc.UserID != "" && sc.UserID != caller {
		e.logger.WarnContext(ctx, "request userId does not match token subject, using subject",
			"user_id", sc.UserID, "subject", caller)
	}
	sc.UserID = caller
	return sc
}

// converse makes the single gateway call of a turn under the engine
// timeout and records its metrics.
func (e *Engine) converse(ctx context.Context, conv *provider.Conversation) (*provider.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.timeout())
	defer cancel()

	provName := e.gateway.Name()
	debug.Log("engine", "calling gateway", "provider", provName, "model", conv.Model,
		"history", len(conv.History), "tools", len(conv.Tools))

	startTime := time.Now()
	reply, err := e.gateway.Converse(ctx, conv)
	duration := time.Since(startTime)

	observability.EngineLatency.WithLabelValues(provName, conv.Model).Observe(duration.Seconds())
	if err != nil {
		observability.EngineRequestsTotal.WithLabelValues(provName, conv.Model, "error").Inc()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, api.NewEngineError(fmt.Sprintf("engine call timed out after %s", e.cfg.timeout()))
		}
		return nil, err
	}

	observability.EngineRequestsTotal.WithLabelValues(provName, conv.Model, "success").Inc()
	observability.EngineTokensTotal.WithLabelValues(provName, conv.Model, "input").Add(float64(reply.Usage.InputTokens))
	observability.EngineTokensTotal.WithLabelValues(provName, conv.Model, "output").Add(float64(reply.Usage.OutputTokens))
	debug.Log("engine", "gateway replied", "provider", provName, "segments", len(reply.Segments),
		"duration", duration)
	return reply, nil
}
