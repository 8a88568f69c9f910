package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"docchat/internal/core/session"
	"docchat/internal/services"
)

type AuthHandler struct {
	auth      *services.AuthService
	sessions  *session.Store
	jwtSecret string
}

func NewAuthHandler(auth *services.AuthService, sessions *session.Store, jwtSecret string) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, jwtSecret: jwtSecret}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	ok, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "username already exists", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "account created"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	userID, ok, err := h.auth.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		// Same message for unknown user and wrong password.
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	sid := uuid.NewString()
	h.sessions.Create(sid, userID, req.Username)

	token, err := h.generateJWT(userID, sid)
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token":    token,
		"username": req.Username,
	})
}

// Logout destroys the session, clearing the held document text with it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, ok := r.Context().Value("session_id").(string)
	if !ok {
		http.Error(w, "session_id not found in context", http.StatusUnauthorized)
		return
	}
	h.sessions.Delete(sid)
	w.WriteHeader(http.StatusNoContent)
}

// generateJWT creates a signed token carrying the user and session IDs.
func (h *AuthHandler) generateJWT(userID int64, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": sessionID,
		"iat":        time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(h.jwtSecret))
}
