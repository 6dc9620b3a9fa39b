package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huronportal/internal/auth"
	"huronportal/internal/middleware"
	"huronportal/internal/service"
	"huronportal/pkg/response"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) RegisterRoutes(router gin.IRouter, requireSession gin.HandlerFunc) {
	clients := router.Group("/clients", requireSession)
	{
		clients.GET("", middleware.RequirePermission(auth.ClientsRead), h.ListClients)
		clients.GET("/:id", middleware.RequirePermission(auth.ClientsRead), h.GetClient)
		clients.POST("", middleware.RequirePermission(auth.ClientsCreate), h.CreateClient)
		clients.PUT("/:id", middleware.RequirePermission(auth.ClientsUpdate), h.UpdateClient)
		clients.DELETE("/:id", middleware.RequirePermission(auth.ClientsDelete), h.DeleteClient)
	}
}

// ListClients handles GET /clients
// @Summary      List clients
// @Description  Clients ordered by company name, keyset paginated
// @Tags         clients
// @Produce      json
// @Param        search             query  string  false  "Case-insensitive substring of the company name"
// @Param        limit              query  int     false  "Page size (default 50, max 100)"
// @Param        continuationToken  query  string  false  "Cursor returned by the previous page"
// @Success      200  {object}  response.ListResponse{data=[]model.Client}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	page, err := h.clientService.ListClients(c.Request.Context(), service.ListClientsQuery{
		Search: c.Query("search"),
		Page:   pageRequest(c),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(page.Items, page.NextCursor))
}

// GetClient handles GET /clients/:id
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=model.Client}
// @Failure      404  {object}  response.Response
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, client.Version)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// CreateClient handles POST /clients
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateClientRequest  true  "Client"
// @Success      201      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, client.Version)
	c.JSON(http.StatusCreated, response.SuccessWithMessage(http.StatusCreated, client, "Client created successfully"))
}

// UpdateClient handles PUT /clients/:id
// @Summary      Update a client
// @Description  Partial update; a version in the body or If-Match header guards against lost updates
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id        path      string                       true   "Client ID"
// @Param        If-Match  header    string                       false  "Expected version"
// @Param        payload   body      service.UpdateClientRequest  true   "Fields to change"
// @Success      200       {object}  response.Response{data=model.Client}
// @Failure      404       {object}  response.Response
// @Failure      412       {object}  response.Response
// @Router       /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if err := expectedVersion(c, &req.Version); err != nil {
		response.Fail(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, client.Version)
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, client, "Client updated successfully"))
}

// DeleteClient handles DELETE /clients/:id
// @Summary      Delete a client
// @Description  Refused with 409 while machines still reference the client
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.clientService.DeleteClient(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, nil, "Client deleted successfully"))
}
