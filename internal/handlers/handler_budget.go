package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
	"github.com/orcaplan/orcaplan-backend/internal/middleware"
)

// budgetHandler handles HTTP requests for budget entries and the approval
// workflow.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
	auditService  portssvc.AuditSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade, as portssvc.AuditSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs, auditService: as}
}

// registerBudgetRoutes registers routes related to budget entries.
func registerBudgetRoutes(rg *gin.RouterGroup, bs portssvc.BudgetSvcFacade, as portssvc.AuditSvcFacade) {
	h := newBudgetHandler(bs, as)

	orcamentos := rg.Group("/orcamentos")
	{
		orcamentos.GET("", h.listBudgets)
		orcamentos.POST("", h.upsertBudget)
		orcamentos.GET("/filtros", h.filterValues)
		orcamentos.GET("/categoria/:categoriaID/ano/:ano", h.monthGrid)
		orcamentos.GET("/submissions", middleware.RequireRoles(domain.RoleGestor), h.submissions)
		orcamentos.GET("/rejections", middleware.RequireRoles(domain.RoleAdmin), h.rejections)
		orcamentos.POST("/batch", h.batchUpsert)
		orcamentos.POST("/batch_submit", h.batchSubmit)
		orcamentos.POST("/batch_approve", h.batchApprove)
		orcamentos.POST("/batch_reject", h.batchReject)
		orcamentos.POST("/:id/aprovar", h.approve)
		orcamentos.POST("/:id/reprovar", h.reject)
		orcamentos.GET("/:id", h.getBudget)
		orcamentos.DELETE("/:id", h.deleteBudget)
	}
}

// listBudgets godoc
// @Summary List budget entries
// @Description Lists budget entries with optional filters, categories embedded
// @Tags orcamentos
// @Produce json
// @Param ano query int false "Year"
// @Param mes query string false "Month name"
// @Param status query string false "Workflow status"
// @Param uf query string false "UF"
// @Param master query string false "Cost center"
// @Param id_categoria query string false "Category id"
// @Param categoria query string false "Category name"
// @Success 200 {array} dto.BudgetResponse
// @Security BearerAuth
// @Router /orcamentos [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	filter := domain.BudgetFilter{
		Month:        domain.Month(c.Query("mes")),
		Status:       domain.BudgetStatus(c.Query("status")),
		UF:           c.Query("uf"),
		CostCenter:   c.Query("master"),
		CategoryID:   c.Query("id_categoria"),
		CategoryName: c.Query("categoria"),
	}
	if yearStr := c.Query("ano"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ano inválido"})
			return
		}
		filter.Year = year
	}

	entries, err := h.budgetService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponses(entries))
}

// upsertBudget godoc
// @Summary Create or update a budget entry
// @Description Upserts the entry identified by (id_categoria, mes, ano). Returns 201 on create, 200 on update.
// @Tags orcamentos
// @Accept json
// @Produce json
// @Param orcamento body dto.UpsertBudgetRequest true "Budget entry"
// @Success 200 {object} dto.BudgetResponse
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input or duplicate entry"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /orcamentos [post]
func (h *budgetHandler) upsertBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for upsert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	entry, created, err := h.budgetService.Upsert(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToBudgetResponse(entry))
}

func (h *budgetHandler) getBudget(c *gin.Context) {
	entry, err := h.budgetService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(entry))
}

// monthGrid godoc
// @Summary Twelve-month grid of one category/year
// @Description Returns all twelve months; months without a stored entry appear as virtual zero rows
// @Tags orcamentos
// @Produce json
// @Param categoriaID path string true "Category id"
// @Param ano path int true "Year"
// @Success 200 {object} dto.MonthGridResponse
// @Security BearerAuth
// @Router /orcamentos/categoria/{categoriaID}/ano/{ano} [get]
func (h *budgetHandler) monthGrid(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("ano"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ano inválido"})
		return
	}

	grid, err := h.budgetService.MonthGrid(c.Request.Context(), c.Param("categoriaID"), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

func (h *budgetHandler) filterValues(c *gin.Context) {
	values, err := h.budgetService.FilterValues(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// approve godoc
// @Summary Approve a budget entry
// @Tags orcamentos
// @Produce json
// @Param id path string true "Budget entry id"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Already approved or invalid transition"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /orcamentos/{id}/aprovar [post]
func (h *budgetHandler) approve(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	entry, err := h.budgetService.Approve(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(entry))
}

// reject godoc
// @Summary Reject a budget entry
// @Tags orcamentos
// @Accept json
// @Produce json
// @Param id path string true "Budget entry id"
// @Param motivo body dto.RejectRequest false "Rejection reason"
// @Success 200 {object} dto.BudgetResponse
// @Security BearerAuth
// @Router /orcamentos/{id}/reprovar [post]
func (h *budgetHandler) reject(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	// The body is optional; an absent motivo gets the default reason.
	var req dto.RejectRequest
	_ = c.ShouldBindJSON(&req)

	entry, err := h.budgetService.Reject(c.Request.Context(), c.Param("id"), req.Reason, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(entry))
}

func (h *budgetHandler) deleteBudget(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.budgetService.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Orçamento excluído"})
}

// batchStatus picks 200 for a clean batch and 207 when some items failed.
func batchStatus(hasErrors bool) int {
	if hasErrors {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}

// batchUpsert godoc
// @Summary Bulk create/update budget entries
// @Description Per-item failures never abort the batch; returns 207 on partial success
// @Tags orcamentos
// @Accept json
// @Produce json
// @Param batch body dto.BatchUpsertRequest true "Batch items"
// @Success 200 {object} dto.BatchUpsertResult
// @Success 207 {object} dto.BatchUpsertResult
// @Security BearerAuth
// @Router /orcamentos/batch [post]
func (h *budgetHandler) batchUpsert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BatchUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for batch upsert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	result, err := h.budgetService.BatchUpsert(c.Request.Context(), req.Items, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(batchStatus(result.HasErrors()), result)
}

// batchSubmit godoc
// @Summary Send budget entries for approval
// @Tags orcamentos
// @Accept json
// @Produce json
// @Param ids body dto.BatchIDsRequest true "Budget entry ids"
// @Success 200 {object} dto.BatchActionResult
// @Success 207 {object} dto.BatchActionResult
// @Security BearerAuth
// @Router /orcamentos/batch_submit [post]
func (h *budgetHandler) batchSubmit(c *gin.Context) {
	var req dto.BatchIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	result, err := h.budgetService.BatchSubmit(c.Request.Context(), req.IDs, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(batchStatus(result.HasErrors()), result)
}

// batchApprove godoc
// @Summary Approve budget entries in bulk
// @Tags orcamentos
// @Accept json
// @Produce json
// @Param ids body dto.BatchIDsRequest true "Budget entry ids"
// @Success 200 {object} dto.BatchActionResult
// @Success 207 {object} dto.BatchActionResult
// @Security BearerAuth
// @Router /orcamentos/batch_approve [post]
func (h *budgetHandler) batchApprove(c *gin.Context) {
	var req dto.BatchIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	result, err := h.budgetService.BatchApprove(c.Request.Context(), req.IDs, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(batchStatus(result.HasErrors()), result)
}

// batchReject godoc
// @Summary Reject budget entries in bulk
// @Tags orcamentos
// @Accept json
// @Produce json
// @Param batch body dto.BatchRejectRequest true "Ids and shared reason"
// @Success 200 {object} dto.BatchRejectResult
// @Success 207 {object} dto.BatchRejectResult
// @Security BearerAuth
// @Router /orcamentos/batch_reject [post]
func (h *budgetHandler) batchReject(c *gin.Context) {
	var req dto.BatchRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	result, err := h.budgetService.BatchReject(c.Request.Context(), req.IDs, req.Reason, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(batchStatus(result.HasErrors()), result)
}

// submissions godoc
// @Summary Pending submissions grouped by submit event
// @Description Gestor review screen, reconstructed from the audit trail
// @Tags orcamentos
// @Produce json
// @Success 200 {array} dto.SubmissionGroup
// @Security BearerAuth
// @Router /orcamentos/submissions [get]
func (h *budgetHandler) submissions(c *gin.Context) {
	groups, err := h.auditService.Submissions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// rejections godoc
// @Summary Rejections grouped by reject event
// @Description Admin review screen, reconstructed from the audit trail
// @Tags orcamentos
// @Produce json
// @Success 200 {array} dto.RejectionGroup
// @Security BearerAuth
// @Router /orcamentos/rejections [get]
func (h *budgetHandler) rejections(c *gin.Context) {
	groups, err := h.auditService.Rejections(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}
