package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

// UpdateRegistrationStatusRequest is the request body for PATCH /admin/registrations/{id}/status.
type UpdateRegistrationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate implements Validator.
func (u UpdateRegistrationStatusRequest) Validate() []string {
	if u.Status == "" {
		return nil
	}
	if _, err := domain.ParseRegistrationStatus(u.Status); err != nil {
		return []string{"status must be PENDING, APPROVED or REJECTED"}
	}
	return nil
}

// RejectEventRequest is the request body for POST /admin/events/{eventID}/reject.
type RejectEventRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// UpdateUserRoleRequest is the request body for PATCH /admin/users/{userID}/role.
type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// Validate implements Validator.
func (u UpdateUserRoleRequest) Validate() []string {
	if u.Role == "" {
		return nil
	}
	if _, err := domain.ParseRole(u.Role); err != nil {
		return []string{"role must be STUDENT or ADMIN"}
	}
	return nil
}

// UpdateUserStatusRequest is the request body for PATCH /admin/users/{userID}/status.
type UpdateUserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// RegistrationStats is the response body for GET /admin/registrations/stats.
type RegistrationStats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// RegistrationStatsSuccessResponse is the success response envelope for GET /admin/registrations/stats.
type RegistrationStatsSuccessResponse struct {
	Data  RegistrationStats `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserListSuccessResponse is the success response envelope for GET /admin/users.
type UserListSuccessResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AdminController serves the moderation endpoints. Every route is behind RequireAdmin; the services
// check the role again.
type AdminController struct {
	Logger        *slog.Logger
	Users         domain.UserService
	Events        domain.EventService
	Registrations domain.RegistrationService
}

func NewAdminController(logger *slog.Logger, users domain.UserService, events domain.EventService, registrations domain.RegistrationService) *AdminController {
	return &AdminController{
		Logger:        logger,
		Users:         users,
		Events:        events,
		Registrations: registrations,
	}
}

// ListRegistrations godoc
// @Summary List registrations
// @Description All registrations, or filtered by exactly one of: event_id, status, or a from/to registration-time range (RFC 3339, inclusive).
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param event_id query string false "Event ID"
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param from query string false "Range start (RFC 3339)"
// @Param to query string false "Range end (RFC 3339)"
// @Success 200 {object} controllers.RegistrationListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/registrations [get]
func (c *AdminController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eventID, status, from, to := q.Get("event_id"), q.Get("status"), q.Get("from"), q.Get("to")

	filters := 0
	for _, set := range []bool{eventID != "", status != "", from != "" || to != ""} {
		if set {
			filters++
		}
	}
	if filters > 1 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "use only one of event_id, status or from/to")
		return
	}

	var (
		regs []*domain.Registration
		err  error
	)
	switch {
	case eventID != "":
		regs, err = c.Registrations.ListByEvent(r.Context(), eventID)
	case status != "":
		st, perr := domain.ParseRegistrationStatus(status)
		if perr != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status must be PENDING, APPROVED or REJECTED")
			return
		}
		if st == domain.RegistrationPending {
			regs, err = c.Registrations.ListPending(r.Context())
		} else {
			regs, err = c.Registrations.ListByStatus(r.Context(), st)
		}
	case from != "" || to != "":
		start, serr := time.Parse(time.RFC3339, from)
		end, eerr := time.Parse(time.RFC3339, to)
		if serr != nil || eerr != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "from and to must both be RFC 3339 timestamps")
			return
		}
		regs, err = c.Registrations.ListByDateRange(r.Context(), start, end)
	default:
		regs, err = c.Registrations.ListAll(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// RegistrationStats godoc
// @Summary Registration counts by status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RegistrationStatsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/registrations/stats [get]
func (c *AdminController) RegistrationStats(w http.ResponseWriter, r *http.Request) {
	counts, err := c.Registrations.StatusCounts(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	stats := RegistrationStats{
		Pending:  counts[domain.RegistrationPending],
		Approved: counts[domain.RegistrationApproved],
		Rejected: counts[domain.RegistrationRejected],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// UpdateRegistrationStatus godoc
// @Summary Moderate a registration
// @Description Set a registration's status. Any status may move to any other.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param body body UpdateRegistrationStatusRequest true "New status"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/registrations/{id}/status [patch]
func (c *AdminController) UpdateRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateRegistrationStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, _ := domain.ParseRegistrationStatus(req.Status)
	reg, err := c.Registrations.UpdateRegistrationStatus(r.Context(), r.PathValue("id"), status, admin)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// ApproveEvent godoc
// @Summary Approve an event
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/approve [post]
func (c *AdminController) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	event, err := c.Events.ApproveEvent(r.Context(), r.PathValue("eventID"), admin)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// RejectEvent godoc
// @Summary Reject an event
// @Description Reject an event with an optional reason. The body may be omitted.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body RejectEventRequest false "Rejection reason"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/reject [post]
func (c *AdminController) RejectEvent(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req RejectEventRequest
	if r.ContentLength != 0 && !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Events.RejectEvent(r.Context(), r.PathValue("eventID"), req.Reason, admin)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// UpdateUserRole godoc
// @Summary Change a user's role
// @Description Admins cannot change their own role.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param body body UpdateUserRoleRequest true "New role"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID}/role [patch]
func (c *AdminController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateUserRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	role, _ := domain.ParseRole(req.Role)
	user, err := c.Users.UpdateUserRole(r.Context(), r.PathValue("userID"), role, admin)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateUserStatus godoc
// @Summary Activate or deactivate a user
// @Description Inactive users cannot log in. Admins cannot change their own status.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param body body UpdateUserStatusRequest true "New status"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID}/status [patch]
func (c *AdminController) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Users.UpdateUserStatus(r.Context(), r.PathValue("userID"), *req.Active, admin)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
