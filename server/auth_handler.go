package server

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"Tunelist/core/auth"
	"Tunelist/logger"
	"Tunelist/model"
	"Tunelist/repository"
)

// credentialsRequest represents the register and login request body
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User    *model.User    `json:"user"`
	Session *model.Session `json:"session"`
}

// bindCredentials decodes and validates the body, answering 4xx itself on failure.
func bindCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := bindRequest(r, &req); err != nil {
		writeBindError(w, err)
		return req, false
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "email and password are required")
		return req, false
	}
	return req, true
}

// RegisterHandler handles user registration requests
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := bindCredentials(w, r)
	if !ok {
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid email address")
		return
	}

	user, session, err := h.identity.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrPasswordTooLong):
			writeFailure(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrDuplicateUser):
			logger.Warn("[Register] 邮箱已存在", logger.String("email", req.Email))
			writeFailure(w, http.StatusConflict, "email already registered")
		default:
			h.writeStoreError(w, r, "failed to register", err)
		}
		return
	}

	writeSuccess(w, http.StatusCreated, sessionResponse{User: user, Session: session}, "user registered")
}

// LoginHandler handles user login requests
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := bindCredentials(w, r)
	if !ok {
		return
	}

	user, session, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Warn("[Login] 登录失败", logger.String("email", req.Email))
			writeFailure(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.writeStoreError(w, r, "failed to login", err)
		return
	}

	logger.Info("[Login] 登录成功", logger.String("userId", user.ID))
	writeSuccess(w, http.StatusOK, sessionResponse{User: user, Session: session}, "")
}

// LogoutHandler revokes the presented bearer token, if any.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(r.Context(), bearerToken(r)); err != nil {
		h.writeStoreError(w, r, "failed to logout", err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "logged out")
}
