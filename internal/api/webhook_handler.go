package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/maika/internal/actions"
	"github.com/phrazzld/maika/internal/api/shared"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// ActionDispatcher runs one named action for one conversation turn.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, name string, req actions.Request) (actions.Response, error)
}

// WebhookHandler serves the dialogue engine's action calls.
type WebhookHandler struct {
	dispatcher ActionDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(dispatcher ActionDispatcher, logger *slog.Logger) *WebhookHandler {
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "webhook_handler")),
	}
}

// HandleAction handles POST /webhook.
//
// A storage failure still answers 200 with the apology message so the
// conversation can continue; the failure is logged.
func (h *WebhookHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req WebhookRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	if caller, ok := shared.GetCaller(r.Context()); ok {
		log = log.With(slog.String("caller", caller))
	}
	log.Debug("dispatching action",
		slog.String("action", req.NextAction),
		slog.String("sender_id", req.SenderID))

	resp, err := h.dispatcher.Dispatch(r.Context(), req.NextAction, toActionRequest(&req))
	if err != nil {
		if !store.IsStorageError(err) {
			HandleAPIError(w, r, err, "Failed to run action")
			return
		}
		log.Error("action failed on storage",
			slog.String("action", req.NextAction),
			slog.String("error", err.Error()))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toWebhookResponse(resp))
}
