package handlers

import (
	"encoding/json"
	"net/http"

	"docchat/internal/core/session"
	"docchat/internal/services"
)

type ChatHandler struct {
	chat     *services.ChatService
	sessions *session.Store
}

func NewChatHandler(chat *services.ChatService, sessions *session.Store) *ChatHandler {
	return &ChatHandler{chat: chat, sessions: sessions}
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask runs one synchronous question/answer exchange against the session's
// held document and persists both turns before responding.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(int64)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sid, _ := ctx.Value("session_id").(string)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	sess, ok := h.sessions.Get(sid)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	answer, err := h.chat.Ask(ctx, userID, sess.DocumentText, req.Question)
	if err != nil {
		http.Error(w, "failed to record exchange", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answer)
}

// History returns the user's full transcript in creation order.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.chat.History(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
