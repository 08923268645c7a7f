package handlers

import (
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/AnshRaj112/catchlog-backend/internal/middleware"
	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
	"github.com/google/uuid"
)

type SignupRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	RecoveryEmail string `json:"recovery_email,omitempty"` // optional, stored encrypted
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse returns only public account data.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Signup registers an account and starts a session.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		writeErr(w, "sign up", err)
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeErr(w, "sign up", err)
		return
	}

	var recovery string
	if email := strings.TrimSpace(req.RecoveryEmail); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			writeErr(w, "sign up", &utils.ValidationError{Field: "recovery_email", Message: "Recovery email is invalid"})
			return
		}
		sealed, err := h.Encryptor.Encrypt(strings.ToLower(email))
		if err != nil {
			// Account creation proceeds without the recovery email.
			log.Printf("auth: recovery email not stored: %v", err)
		}
		recovery = sealed
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeErr(w, "sign up", err)
		return
	}

	user, err := h.Users.CreateUser(r.Context(), utils.NormalizeUsername(req.Username), hash, recovery)
	if err != nil {
		writeErr(w, "sign up", err)
		return
	}

	token, ok := h.startSession(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		Token:   token,
		User:    user,
	})
}

// Signin checks credentials and starts a session. Unknown users and wrong
// passwords get the same answer.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.Users.GetUserByUsername(r.Context(), utils.NormalizeUsername(req.Username))
	if err != nil {
		writeErr(w, "sign in", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	match, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, ok := h.startSession(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// Signout ends the current session and forgets the current user locally.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.InvalidateSession(r.Context(), middleware.BearerToken(r)); err != nil {
		writeErr(w, "sign out", err)
		return
	}
	local, _ := h.userSync(r)
	if err := local.SetCurrentUser(r.Context(), nil); err != nil {
		log.Printf("auth: clear current user: %v", err)
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Signed out"})
}

// Me returns the authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	user, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeErr(w, "load user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: user})
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) (string, bool) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		writeErr(w, "start session", err)
		return "", false
	}
	token, err := h.Sessions.CreateSession(r.Context(), id)
	if err != nil {
		writeErr(w, "start session", err)
		return "", false
	}
	if err := h.Sync.For(user.ID).SetCurrentUser(r.Context(), user); err != nil {
		log.Printf("auth: remember current user: %v", err)
	}
	return token, true
}
