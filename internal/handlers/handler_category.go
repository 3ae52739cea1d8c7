package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
	"github.com/orcaplan/orcaplan-backend/internal/middleware"
)

// categoryHandler handles HTTP requests for the category catalog.
type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

func newCategoryHandler(cs portssvc.CategorySvcFacade) *categoryHandler {
	return &categoryHandler{categoryService: cs}
}

// registerCategoryRoutes registers routes related to categories. Mutations are
// admin-only, enforced again at the service layer.
func registerCategoryRoutes(rg *gin.RouterGroup, cs portssvc.CategorySvcFacade) {
	h := newCategoryHandler(cs)

	categorias := rg.Group("/categorias")
	{
		categorias.GET("", h.listCategories)
		categorias.GET("/filtros", h.filterValues)
		categorias.GET("/:id", h.getCategory)
		categorias.POST("", middleware.RequireRoles(domain.RoleAdmin), h.createCategory)
		categorias.PUT("/:id", middleware.RequireRoles(domain.RoleAdmin), h.updateCategory)
		categorias.DELETE("/:id", middleware.RequireRoles(domain.RoleAdmin), h.deleteCategory)
		categorias.POST("/import", middleware.RequireRoles(domain.RoleAdmin), h.importCategories)
	}
}

// listCategories godoc
// @Summary List categories
// @Tags categorias
// @Produce json
// @Param categoria query string false "Exact name"
// @Param uf query string false "UF"
// @Param grupo query string false "Group"
// @Param search query string false "Substring over name, group and cost class"
// @Success 200 {array} dto.CategoryResponse
// @Security BearerAuth
// @Router /categorias [get]
func (h *categoryHandler) listCategories(c *gin.Context) {
	filter := domain.CategoryFilter{
		Name:   c.Query("categoria"),
		UF:     c.Query("uf"),
		Group:  c.Query("grupo"),
		Search: c.Query("search"),
	}

	cats, err := h.categoryService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponses(cats))
}

func (h *categoryHandler) getCategory(c *gin.Context) {
	cat, err := h.categoryService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(cat))
}

// createCategory godoc
// @Summary Create a category
// @Tags categorias
// @Accept json
// @Produce json
// @Param categoria body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string "Invalid input or duplicate category"
// @Security BearerAuth
// @Router /categorias [post]
func (h *categoryHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for category create", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	cat, err := h.categoryService.Create(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(cat))
}

// updateCategory godoc
// @Summary Update a category
// @Description Only the supplied fields change
// @Tags categorias
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Param categoria body dto.UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} dto.CategoryResponse
// @Security BearerAuth
// @Router /categorias/{id} [put]
func (h *categoryHandler) updateCategory(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	cat, err := h.categoryService.Update(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(cat))
}

// deleteCategory godoc
// @Summary Delete a category
// @Description Fails while budget entries still reference the category
// @Tags categorias
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Category still referenced"
// @Security BearerAuth
// @Router /categorias/{id} [delete]
func (h *categoryHandler) deleteCategory(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Categoria excluída"})
}

func (h *categoryHandler) filterValues(c *gin.Context) {
	values, err := h.categoryService.FilterValues(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// importCategories godoc
// @Summary Import categories from a spreadsheet
// @Description Accepts an .xlsx upload under the "file" form field; rows that already exist are skipped
// @Tags categorias
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet (.xlsx)"
// @Success 200 {object} dto.ImportResult
// @Success 207 {object} dto.ImportResult
// @Failure 400 {object} map[string]string "Missing or unsupported file"
// @Security BearerAuth
// @Router /categorias/import [post]
func (h *categoryHandler) importCategories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo não enviado"})
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Apenas arquivos .xlsx são aceitos"})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded spreadsheet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Não foi possível ler o arquivo"})
		return
	}
	defer file.Close()

	result, err := h.categoryService.ImportSpreadsheet(c.Request.Context(), file, fileHeader.Filename, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(batchStatus(result.HasErrors()), result)
}
