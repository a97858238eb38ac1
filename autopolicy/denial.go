package autopolicy

import (
	"context"
	"log/slog"

	"github.com/chr1sbest/permguard/internal/logging"
)

// Denial describes a request rejected by the HTTP middleware.
type Denial struct {
	ID          string
	Policy      string
	Subject     string
	Anonymous   bool
	Method      string
	Path        string
	Unsatisfied []string
	Failed      bool
}

// DenialHandler is called for every request the middleware rejects.
type DenialHandler interface {
	OnDenial(ctx context.Context, d Denial)
}

var (
	_ DenialHandler = (*LogDenialHandler)(nil)
	_ DenialHandler = NopDenialHandler{}
)

// LogDenialHandler writes denials to a slog.Logger at warn level.
type LogDenialHandler struct {
	Logger *slog.Logger
}

func (h *LogDenialHandler) OnDenial(ctx context.Context, d Denial) {
	logging.Resolve(h.Logger).WarnContext(ctx, "authorization denied",
		"event", "authz_request_denied",
		"module", "autopolicy",
		"denial_id", d.ID,
		"policy", d.Policy,
		"subject", d.Subject,
		"anonymous", d.Anonymous,
		"method", d.Method,
		"path", d.Path,
		"unsatisfied", d.Unsatisfied,
		"failed", d.Failed,
	)
}

// NopDenialHandler discards denials.
type NopDenialHandler struct{}

func (NopDenialHandler) OnDenial(context.Context, Denial) {}
