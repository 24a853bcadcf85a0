package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"flywheel/internal/greeter"
	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/platform/httputil"
	"flywheel/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/greeter-mocks.go -package=mocks GreetService

// GreetService defines the greeter operations the HTTP layer needs.
type GreetService interface {
	Bind(ctx context.Context, names []string) (context.Context, error)
	Greet(ctx context.Context, req greeter.Request) (string, error)
	Loud(ctx context.Context) context.Context
	Layers() []greeter.LayerInfo
}

// Handler is the thin HTTP layer over the greeter service.
type Handler struct {
	service GreetService
	logger  *slog.Logger
}

func NewHandler(service GreetService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GreetResponse is the body of GET /greet/{name}.
type GreetResponse struct {
	Greeting string   `json:"greeting"`
	Name     string   `json:"name"`
	Role     string   `json:"role,omitempty"`
	Client   string   `json:"client,omitempty"`
	Layers   []string `json:"layers,omitempty"`
}

// HandleGreet handles GET /greet/{name}?role=&loud=.
func (h *Handler) HandleGreet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req := greeter.Request{
		Name:   chi.URLParam(r, "name"),
		Role:   r.URL.Query().Get("role"),
		Client: requestcontext.ClientFamily(ctx),
	}
	if raw := r.URL.Query().Get("loud"); raw != "" {
		loud, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "loud must be a boolean"))
			return
		}
		if loud {
			ctx = h.service.Loud(ctx)
		}
	}

	greeting, err := h.service.Greet(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "greet failed",
			"request_id", requestID,
			"name", req.Name,
			"role", req.Role,
			"client", req.Client,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "greeted",
		"request_id", requestID,
		"name", req.Name,
		"layers", requestcontext.Layers(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, GreetResponse{
		Greeting: greeting,
		Name:     req.Name,
		Role:     req.Role,
		Client:   req.Client,
		Layers:   requestcontext.Layers(ctx),
	})
}

// HandlePoints handles GET /points: every layer with its registrations.
func (h *Handler) HandlePoints(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"layers": h.service.Layers(),
	})
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
