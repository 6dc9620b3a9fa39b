package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"huronportal/internal/apperror"
	"huronportal/internal/middleware"
	"huronportal/internal/service"
	"huronportal/pkg/response"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the users admin panel; every route is admin only.
func (h *UserHandler) RegisterRoutes(router gin.IRouter, requireSession gin.HandlerFunc) {
	users := router.Group("/users", requireSession, middleware.RequireAdmin())
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUserByID)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

// ListUsers handles GET /users
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        search             query  string  false  "Substring of username, name or email"
// @Param        role               query  string  false  "Admin | Controller | Viewer"
// @Param        isActive           query  bool    false  "Filter on the active flag"
// @Param        limit              query  int     false  "Page size (default every row, max 100)"
// @Param        continuationToken  query  string  false  "Cursor returned by the previous page"
// @Success      200  {object}  response.ListResponse{data=[]service.UserResponse}
// @Failure      403  {object}  response.Response
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	q := service.ListUsersQuery{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   fullListRequest(c),
	}
	if raw, ok := c.GetQuery("isActive"); ok && raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Fail(c, apperror.NewValidation("Invalid data", apperror.FieldError{
				Field: "isActive", Message: "isActive must be true or false",
			}))
			return
		}
		q.IsActive = &active
	}

	page, err := h.userService.ListUsers(c.Request.Context(), q)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(page.Items, page.NextCursor))
}

// GetUserByID handles GET /users/:id
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, user.Version)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// CreateUser handles POST /users requests mapping
// @Summary      Create a new user
// @Description  Creates a new user validating constraints and hashing password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, user.Version)
	c.JSON(http.StatusCreated, response.SuccessWithMessage(http.StatusCreated, user, "User created successfully"))
}

// UpdateUser handles PUT /users/:id
// @Summary      Update a user
// @Description  Role changes and deactivation revoke the user's open sessions
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id        path      string                     true   "User ID"
// @Param        If-Match  header    string                     false  "Expected version"
// @Param        payload   body      service.UpdateUserRequest  true   "Fields to change"
// @Success      200       {object}  response.Response{data=service.UserResponse}
// @Failure      404       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Failure      412       {object}  response.Response
// @Router       /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if err := expectedVersion(c, &req.Version); err != nil {
		response.Fail(c, err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, user.Version)
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, user, "User updated successfully"))
}

// DeleteUser handles DELETE /users/:id
// @Summary      Delete a user
// @Description  An administrator cannot delete their own account
// @Tags         users
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  response.Response  "Self deletion"
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
