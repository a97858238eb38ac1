package autopolicy

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chr1sbest/permguard/internal/logging"
)

// ErrorResponder writes the response for a request whose authorization
// could not be evaluated, for example because the policy handler failed.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authorizer) {
		a.logger = logger
	}
}

// WithDenialHandler sets the handler invoked for rejected HTTP requests. The
// default logs through the Authorizer's logger.
func WithDenialHandler(h DenialHandler) Option {
	return func(a *Authorizer) {
		a.denials = h
	}
}

// WithErrorResponder replaces the default 500 response written when
// evaluation returns an error.
func WithErrorResponder(fn ErrorResponder) Option {
	return func(a *Authorizer) {
		a.onError = fn
	}
}

// WithHandlers appends requirement handlers. They run in the order given,
// after any handlers already configured.
func WithHandlers(handlers ...Handler) Option {
	return func(a *Authorizer) {
		a.handlers = append(a.handlers, handlers...)
	}
}

// Result is the outcome of evaluating one policy.
type Result struct {
	Policy      string
	Allowed     bool
	Failed      bool
	Unsatisfied []Requirement
}

// Authorizer resolves policies by name and evaluates them with its handlers.
type Authorizer struct {
	provider Provider
	handlers []Handler
	logger   *slog.Logger
	denials  DenialHandler
	onError  ErrorResponder
}

// New returns an Authorizer resolving policies through provider.
func New(provider Provider, opts ...Option) *Authorizer {
	a := &Authorizer{provider: provider}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.Resolve(a.logger)
	if a.denials == nil {
		a.denials = &LogDenialHandler{Logger: a.logger}
	}
	if a.onError == nil {
		a.onError = a.internalError
	}
	return a
}

// Authorize resolves name and evaluates the resulting policy.
func (a *Authorizer) Authorize(ctx context.Context, name string) (Result, error) {
	policy, err := a.provider.GetPolicy(ctx, name)
	if err != nil {
		return Result{Policy: name}, err
	}
	return a.Evaluate(ctx, policy)
}

// Evaluate runs every handler over policy in order. A handler never stops
// the others from running; only an error does, and it is returned as is.
// ctx is not checked for cancellation between handlers.
func (a *Authorizer) Evaluate(ctx context.Context, policy Policy) (Result, error) {
	ev := newEvaluation(policy)
	for _, h := range a.handlers {
		if err := h.Handle(ctx, ev); err != nil {
			return Result{Policy: policy.Name}, err
		}
	}

	res := Result{
		Policy:      policy.Name,
		Allowed:     ev.HasSucceeded(),
		Failed:      ev.HasFailed(),
		Unsatisfied: ev.Pending(),
	}
	if res.Allowed {
		a.logger.DebugContext(ctx, "authorization allowed",
			"event", "authz_policy_allowed",
			"module", "autopolicy",
			"policy", policy.Name,
		)
	} else {
		a.logger.DebugContext(ctx, "authorization denied",
			"event", "authz_policy_denied",
			"module", "autopolicy",
			"policy", policy.Name,
			"unsatisfied", requirementNames(res.Unsatisfied),
		)
	}
	return res, nil
}

func (a *Authorizer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.ErrorContext(r.Context(), "authorization evaluation failed",
		"event", "authz_evaluation_failed",
		"module", "autopolicy",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error(),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func requirementNames(reqs []Requirement) []string {
	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		names = append(names, r.String())
	}
	return names
}
