package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"taskapi/internal/service"
)

// UserHandler serves the caller's own profile and account.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ProfileRequest represents a profile update. Omitted fields are unchanged.
type ProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=50"`
	Bio    *string `json:"bio" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar" validate:"omitempty,urlorempty"`
}

// Normalize trims every provided field.
func (r *ProfileRequest) Normalize() {
	for _, f := range []*string{r.Name, r.Bio, r.Avatar} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// PasswordRequest represents a password change.
type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// DeleteAccountRequest confirms an account deletion.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// GetProfile godoc
// @Summary Get profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DataResponse{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.svc.GetProfile(c.Request().Context(), id.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "", user)
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest true "Profile fields"
// @Success 200 {object} DataResponse{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req ProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), id.ID, service.ProfileUpdate{
		Name:   req.Name,
		Bio:    req.Bio,
		Avatar: req.Avatar,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PasswordRequest true "Passwords"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req PasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.svc.ChangePassword(c.Request().Context(), id.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Status: statusSuccess, Message: "Password updated successfully"})
}

// DeleteAccount godoc
// @Summary Delete account and all of its tasks
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DeleteAccountRequest true "Password confirmation"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/account [delete]
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req DeleteAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.svc.DeleteAccount(c.Request().Context(), id.ID, req.Password); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Status: statusSuccess, Message: "Account deleted successfully"})
}
