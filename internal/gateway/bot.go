package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/platform"
)

// handleCreateBot forwards the registration payload to the platform,
// swapping the caller's cookie token in as the bearer credential.
func (h *Handler) handleCreateBot(w http.ResponseWriter, r *http.Request) {
	var req platform.CreateBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	client := h.platform.WithToken(tokenFromContext(r.Context()))
	resp, err := client.CreateBot(r.Context(), req)
	if err != nil {
		h.logger.Error("Error creating bot", zap.Error(err), zap.String("bot_id", req.BotID))
		var apiErr *platform.APIError
		if errors.As(err, &apiErr) {
			Error(w, apiErr.Status, apiErr.Message)
			return
		}
		Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	JSON(w, http.StatusOK, resp)
}

// handleGetBot serves the bot read model; unknown ids get a 404 the
// client maps to its not-found view.
func (h *Handler) handleGetBot(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")

	bot, err := h.platform.GetBot(r.Context(), botID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			Error(w, http.StatusNotFound, "Bot not found")
			return
		}
		h.logger.Error("Error fetching bot", zap.Error(err), zap.String("bot_id", botID))
		Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	JSON(w, http.StatusOK, bot)
}
