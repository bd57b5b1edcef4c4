package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"taskman/internal/errors"
	"taskman/internal/model"
	"taskman/internal/service"
)

// UserHandler handles user endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents a partial user update. Absent and null keys
// are both left unchanged.
type UpdateUserRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	ActiveTaskCount *int    `json:"active_task_count"`
	OnHoldTaskCount *int    `json:"on_hold_task_count"`
	TotalTaskCount  *int    `json:"total_task_count"`
	Role            *string `json:"role"`
	CreatedDate     *string `json:"created_date"`
}

// UserMutationResponse confirms a register or update.
type UserMutationResponse struct {
	Message  string `json:"message"`
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} UserMutationResponse
// @Failure 400 {object} errors.Response
// @Router /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.userService.Register(c.Request().Context(), service.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		if he.StatusCode == http.StatusOK {
			// Missing-field rejections historically respond 200.
			return c.JSON(http.StatusOK, errors.Response{Message: he.Message})
		}
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}

	return c.JSON(http.StatusCreated, UserMutationResponse{
		Message:  "User registered successfully",
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}

// ListUsers godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Router /users/ [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := h.userService.GetUser(c.Request().Context(), uint(id))
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest false "Partial user payload"
// @Success 200 {object} UserMutationResponse
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := service.UpdateUserInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ActiveTaskCount: req.ActiveTaskCount,
		OnHoldTaskCount: req.OnHoldTaskCount,
		TotalTaskCount:  req.TotalTaskCount,
		Role:            req.Role,
	}
	if req.CreatedDate != nil {
		if t, ok := parseTimestamp(*req.CreatedDate); ok {
			in.CreatedDate = &t
		}
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), uint(id), in)
	if err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}

	return c.JSON(http.StatusOK, UserMutationResponse{
		Message:  "User updated successfully",
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), uint(id)); err != nil {
		he := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(he.StatusCode, he.Message)
	}
	return c.JSON(http.StatusOK, errors.Response{Message: "User deleted successfully"})
}

// parseTimestamp accepts the canonical task layout and RFC 3339.
func parseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(model.DateTimeLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
