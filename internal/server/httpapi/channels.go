package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// ChannelHandler serves the channel profile, watch history and subscription
// routes.
type ChannelHandler struct {
	channels *services.ChannelService
	logger   logging.Logger
}

func NewChannelHandler(cs *services.ChannelService, logger logging.Logger) *ChannelHandler {
	return &ChannelHandler{channels: cs, logger: logger}
}

func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	p, err := h.channels.ChannelProfile(ctx, chi.URLParam(r, "username"), u.ID)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, p, "channel fetched")
}

func (h *ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	history, err := h.channels.WatchHistory(ctx, u.ID)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, history, "watch history fetched")
}

func (h *ChannelHandler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	if err := h.channels.RecordWatch(ctx, u.ID, chi.URLParam(r, "videoID")); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{}, "watch recorded")
}

func (h *ChannelHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	subs, err := h.channels.Subscriptions(ctx, u.ID)
	if err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, subs, "subscriptions fetched")
}

func (h *ChannelHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	if err := h.channels.Subscribe(ctx, u.ID, chi.URLParam(r, "channelID")); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct{}{}, "subscribed")
}

func (h *ChannelHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, _ := UserFromContext(ctx)

	if err := h.channels.Unsubscribe(ctx, u.ID, chi.URLParam(r, "channelID")); err != nil {
		writeError(ctx, w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{}, "unsubscribed")
}
