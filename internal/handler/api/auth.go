// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"plume/internal/auth"
	"plume/internal/middleware"
	"plume/internal/model"
)

// LoginRequest is the body of the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the identity payload returned by login and me.
type UserResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

func (h *Handler) userToResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: h.gate.IsAdmin(u),
	}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteValidationError(w, validationDetails(err))
		return
	}

	ip := middleware.ClientIP(r)
	if !h.loginGuard.CheckIPRateLimit(ip) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited",
			"Too many login attempts, slow down", nil)
		return
	}
	if locked, remaining := h.loginGuard.IsAccountLocked(req.Email); locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("Account temporarily locked, try again in %s", remaining.Round(time.Second)), nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("Failed to load user for login", "error", err, "category", "auth")
			WriteInternalError(w, "Login failed")
			return
		}
		h.failLogin(w, req.Email, ip)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("Failed to verify password", "error", err, "category", "auth")
		WriteInternalError(w, "Login failed")
		return
	}
	if !ok {
		h.failLogin(w, req.Email, ip)
		return
	}

	h.loginGuard.RecordSuccessfulLogin(req.Email)

	// Transparently upgrade hashes minted with older parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash, time.Now()); err != nil {
				slog.Warn("Failed to store rehashed password", "error", err, "category", "auth")
			}
		}
	}

	// New token on privilege change, standard session fixation defense.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("Failed to renew session token", "error", err, "category", "auth")
		WriteInternalError(w, "Login failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.queries.TouchLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Warn("Failed to record login time", "error", err, "category", "auth")
	}

	slog.Info("User logged in", "category", "auth", "email", user.Email, "ip", ip)
	WriteSuccess(w, h.userToResponse(&user), nil)
}

// failLogin records a failed attempt and answers with the same message
// whether the account exists or not.
func (h *Handler) failLogin(w http.ResponseWriter, email, ip string) {
	locked, lockFor := h.loginGuard.RecordFailedAttempt(email)
	if locked {
		slog.Warn("Account locked after repeated login failures",
			"category", "auth", "email", email, "ip", ip, "duration", lockFor.String())
	} else {
		slog.Warn("Failed login attempt", "category", "auth", "email", email, "ip", ip)
	}
	WriteUnauthorized(w, "Invalid email or password")
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("Failed to destroy session", "error", err, "category", "auth")
		WriteInternalError(w, "Logout failed")
		return
	}
	if user != nil {
		slog.Info("User logged out", "category", "auth", "email", user.Email)
	}
	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not logged in")
		return
	}
	WriteSuccess(w, h.userToResponse(user), nil)
}
