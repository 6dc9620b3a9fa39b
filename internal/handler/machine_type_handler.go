package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"huronportal/internal/middleware"
	"huronportal/internal/service"
	"huronportal/pkg/response"
)

type MachineTypeHandler struct {
	machineTypeService service.MachineTypeService
}

func NewMachineTypeHandler(machineTypeService service.MachineTypeService) *MachineTypeHandler {
	return &MachineTypeHandler{machineTypeService: machineTypeService}
}

// RegisterRoutes exposes the catalogue to every session; writes are admin only.
func (h *MachineTypeHandler) RegisterRoutes(router gin.IRouter, requireSession gin.HandlerFunc) {
	types := router.Group("/machine-types", requireSession)
	{
		types.GET("", h.ListMachineTypes)
		types.GET("/export", h.ExportMachineTypes)
		types.GET("/:id", h.GetMachineType)
		types.POST("", middleware.RequireAdmin(), h.CreateMachineType)
		types.PUT("/:id", middleware.RequireAdmin(), h.UpdateMachineType)
		types.DELETE("/:id", middleware.RequireAdmin(), h.DeleteMachineType)
		types.POST("/:id/duplicate", middleware.RequireAdmin(), h.DuplicateMachineType)
	}
}

// ListMachineTypes handles GET /machine-types
// @Summary      List machine types
// @Tags         machine-types
// @Produce      json
// @Param        search             query  string  false  "Substring of name or manufacturer"
// @Param        limit              query  int     false  "Page size (default every row, max 100)"
// @Param        continuationToken  query  string  false  "Cursor returned by the previous page"
// @Success      200  {object}  response.ListResponse{data=[]model.MachineType}
// @Failure      401  {object}  response.Response
// @Router       /machine-types [get]
func (h *MachineTypeHandler) ListMachineTypes(c *gin.Context) {
	page, err := h.machineTypeService.ListMachineTypes(c.Request.Context(), service.ListMachineTypesQuery{
		Search: c.Query("search"),
		Page:   fullListRequest(c),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(page.Items, page.NextCursor))
}

// ExportMachineTypes handles GET /machine-types/export
// @Summary      Export the catalogue
// @Description  Downloads every machine type as csv (default), json or xlsx
// @Tags         machine-types
// @Produce      text/csv,application/json,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "csv | json | xlsx"
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /machine-types/export [get]
func (h *MachineTypeHandler) ExportMachineTypes(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	file, err := h.machineTypeService.ExportMachineTypes(c.Request.Context(), format)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// GetMachineType handles GET /machine-types/:id
// @Summary      Get a machine type
// @Tags         machine-types
// @Produce      json
// @Param        id   path      string  true  "Machine type ID"
// @Success      200  {object}  response.Response{data=model.MachineType}
// @Failure      404  {object}  response.Response
// @Router       /machine-types/{id} [get]
func (h *MachineTypeHandler) GetMachineType(c *gin.Context) {
	mt, err := h.machineTypeService.GetMachineType(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, mt.Version)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, mt))
}

// CreateMachineType handles POST /machine-types
// @Summary      Create a machine type
// @Tags         machine-types
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateMachineTypeRequest  true  "Machine type"
// @Success      201      {object}  response.Response{data=model.MachineType}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response  "Name already used"
// @Router       /machine-types [post]
func (h *MachineTypeHandler) CreateMachineType(c *gin.Context) {
	var req service.CreateMachineTypeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	mt, err := h.machineTypeService.CreateMachineType(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, mt.Version)
	c.JSON(http.StatusCreated, response.SuccessWithMessage(http.StatusCreated, mt, "Machine type created successfully"))
}

// UpdateMachineType handles PUT /machine-types/:id
// @Summary      Update a machine type
// @Tags         machine-types
// @Accept       json
// @Produce      json
// @Param        id        path      string                            true   "Machine type ID"
// @Param        If-Match  header    string                            false  "Expected version"
// @Param        payload   body      service.UpdateMachineTypeRequest  true   "Fields to change"
// @Success      200       {object}  response.Response{data=model.MachineType}
// @Failure      404       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Failure      412       {object}  response.Response
// @Router       /machine-types/{id} [put]
func (h *MachineTypeHandler) UpdateMachineType(c *gin.Context) {
	var req service.UpdateMachineTypeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	if err := expectedVersion(c, &req.Version); err != nil {
		response.Fail(c, err)
		return
	}

	mt, err := h.machineTypeService.UpdateMachineType(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, mt.Version)
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, mt, "Machine type updated successfully"))
}

// DeleteMachineType handles DELETE /machine-types/:id
// @Summary      Delete a machine type
// @Description  Refused with 409 while any machine references the type
// @Tags         machine-types
// @Param        id   path  string  true  "Machine type ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /machine-types/{id} [delete]
func (h *MachineTypeHandler) DeleteMachineType(c *gin.Context) {
	if err := h.machineTypeService.DeleteMachineType(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicateMachineType handles POST /machine-types/:id/duplicate
// @Summary      Duplicate a machine type
// @Description  Copies every field under the first free "(Copy)" / "(Copy N)" name
// @Tags         machine-types
// @Produce      json
// @Param        id   path      string  true  "Source machine type ID"
// @Success      201  {object}  response.Response{data=model.MachineType}
// @Failure      404  {object}  response.Response
// @Router       /machine-types/{id}/duplicate [post]
func (h *MachineTypeHandler) DuplicateMachineType(c *gin.Context) {
	mt, err := h.machineTypeService.DuplicateMachineType(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	setETag(c, mt.Version)
	c.JSON(http.StatusCreated, response.SuccessWithMessage(http.StatusCreated, mt, "Machine type duplicated successfully"))
}
