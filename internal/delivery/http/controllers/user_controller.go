package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required,max=200"`
	Department string `json:"department" validate:"max=100"`
	StudentID  string `json:"student_id" validate:"max=50"`
	Year       *int   `json:"year" validate:"omitempty,min=1,max=10"`
}

// Validate implements Validator.
func (s SignUpRequest) Validate() []string {
	if s.FullName != "" && strings.TrimSpace(s.FullName) == "" {
		return []string{"full_name cannot be blank"}
	}
	return nil
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the response body for POST /auth/login
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	User      *domain.User `json:"user"`
}

// UserSuccessResponse is the success response envelope for endpoints returning one user.
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LoginSuccessResponse is the success response envelope for POST /auth/login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserController handles sign-up, login, logout and the current user.
type UserController struct {
	Logger       *slog.Logger
	Service      domain.UserService
	Sessions     domain.SessionStore
	Tokens       domain.TokenIssuer
	SessionTTL   time.Duration
	SecureCookie bool
}

// NewUserController creates a UserController. Tokens are issued for sessionTTL; secureCookie marks
// the session cookie as HTTPS-only.
func NewUserController(logger *slog.Logger, svc domain.UserService, sessions domain.SessionStore, tokens domain.TokenIssuer, sessionTTL time.Duration, secureCookie bool) *UserController {
	return &UserController{
		Logger:       logger,
		Service:      svc,
		Sessions:     sessions,
		Tokens:       tokens,
		SessionTTL:   sessionTTL,
		SecureCookie: secureCookie,
	}
}

// SignUp godoc
// @Summary Sign up a new student
// @Description Create a STUDENT account. Username and email must be unique; the password is stored salted and hashed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} controllers.UserSuccessResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (username or email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *UserController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SignUp(r.Context(), domain.SignUpInput{
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.TrimSpace(req.Email),
		Password:   req.Password,
		FullName:   strings.TrimSpace(req.FullName),
		Department: strings.TrimSpace(req.Department),
		StudentID:  strings.TrimSpace(req.StudentID),
		Year:       req.Year,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with username and password. Starts a new session and returns a signed token carrying its id; the token is also set as the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains token, token_type, expires_in and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Authenticate(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}

	// A fresh session on every login; the previous one, if any, is dropped.
	if old, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := old.Invalidate(r.Context()); err != nil {
			c.Logger.WarnContext(r.Context(), "invalidate previous session", "err", err)
		}
	}
	sess, err := c.Sessions.New(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.Login(r.Context(), sess, user); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	token, err := c.Tokens.Issue(sess.ID(), c.SessionTTL)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(c.SessionTTL.Seconds()),
		User:      user,
	})
}

// Logout godoc
// @Summary Log out
// @Description Remove the user from the current session and invalidate it. Succeeds even without a session.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/logout [post]
func (c *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := c.Service.Logout(r.Context(), sess); err != nil {
			writeServiceError(w, r, c.Logger, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetMe godoc
// @Summary Get current user
// @Description Returns the user bound to the current session.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserSuccessResponse "data contains the current user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
