package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huronportal/internal/auth"
	"huronportal/internal/middleware"
	"huronportal/internal/service"
	"huronportal/pkg/response"
)

type MachineHandler struct {
	machineService service.MachineService
}

func NewMachineHandler(machineService service.MachineService) *MachineHandler {
	return &MachineHandler{machineService: machineService}
}

func (h *MachineHandler) RegisterRoutes(router gin.IRouter, requireSession gin.HandlerFunc) {
	machines := router.Group("/machines", requireSession)
	{
		machines.GET("", middleware.RequirePermission(auth.MachinesRead), h.ListMachines)
		machines.GET("/:id", middleware.RequirePermission(auth.MachinesRead), h.GetMachine)
		machines.POST("", middleware.RequirePermission(auth.MachinesCreate), h.CreateMachine)
		machines.PUT("/:id", middleware.RequirePermission(auth.MachinesUpdate), h.UpdateMachine)
		machines.DELETE("/:id", middleware.RequirePermission(auth.MachinesDelete), h.DeleteMachine)
	}
}

// ListMachines handles GET /machines
// @Summary      List machines
// @Description  Machines ordered by OL number, keyset paginated
// @Tags         machines
// @Produce      json
// @Param        search             query  string  false  "Substring of OL number, type or client name"
// @Param        clientId           query  string  false  "Only machines of this client"
// @Param        numeroOL           query  string  false  "Substring of the OL number"
// @Param        limit              query  int     false  "Page size (default 50, max 100)"
// @Param        continuationToken  query  string  false  "Cursor returned by the previous page"
// @Success      200  {object}  response.ListResponse{data=[]model.Machine}
// @Failure      401  {object}  response.Response
// @Router       /machines [get]
func (h *MachineHandler) ListMachines(c *gin.Context) {
	page, err := h.machineService.ListMachines(c.Request.Context(), service.ListMachinesQuery{
		Search:   c.Query("search"),
		ClientID: c.Query("clientId"),
		NumeroOL: c.Query("numeroOL"),
		Page:     pageRequest(c),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(page.Items, page.NextCursor))
}

// GetMachine handles GET /machines/:id
// @Summary      Get a machine
// @Tags         machines
// @Produce      json
// @Param        id   path      string  true  "Machine ID"
// @Success      200  {object}  response.Response{data=model.Machine}
// @Failure      404  {object}  response.Response
// @Router       /machines/{id} [get]
func (h *MachineHandler) GetMachine(c *gin.Context) {
	machine, err := h.machineService.GetMachine(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, machine.Version)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, machine))
}

// CreateMachine handles POST /machines
// @Summary      Create a machine
// @Tags         machines
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateMachineRequest  true  "Machine"
// @Success      201      {object}  response.Response{data=model.Machine}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response  "Client or machine type not found"
// @Failure      409      {object}  response.Response  "Duplicate OL number"
// @Router       /machines [post]
func (h *MachineHandler) CreateMachine(c *gin.Context) {
	var req service.CreateMachineRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	machine, err := h.machineService.CreateMachine(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, machine.Version)
	c.JSON(http.StatusCreated, response.SuccessWithMessage(http.StatusCreated, machine, "Machine created successfully"))
}

// UpdateMachine handles PUT /machines/:id
// @Summary      Update a machine
// @Tags         machines
// @Accept       json
// @Produce      json
// @Param        id        path      string                        true   "Machine ID"
// @Param        If-Match  header    string                        false  "Expected version"
// @Param        payload   body      service.UpdateMachineRequest  true   "Fields to change"
// @Success      200       {object}  response.Response{data=model.Machine}
// @Failure      404       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Failure      412       {object}  response.Response
// @Router       /machines/{id} [put]
func (h *MachineHandler) UpdateMachine(c *gin.Context) {
	var req service.UpdateMachineRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if err := expectedVersion(c, &req.Version); err != nil {
		response.Fail(c, err)
		return
	}

	machine, err := h.machineService.UpdateMachine(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, machine.Version)
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, machine, "Machine updated successfully"))
}

// DeleteMachine handles DELETE /machines/:id
// @Summary      Delete a machine
// @Tags         machines
// @Produce      json
// @Param        id   path      string  true  "Machine ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /machines/{id} [delete]
func (h *MachineHandler) DeleteMachine(c *gin.Context) {
	if err := h.machineService.DeleteMachine(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, nil, "Machine deleted successfully"))
}
