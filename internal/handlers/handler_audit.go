package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
)

const defaultLogsPerPage = 50

// auditHandler handles HTTP requests for the audit trail.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers the log routes. The whole group is admin-only.
func registerAuditRoutes(rg *gin.RouterGroup, as portssvc.AuditSvcFacade) {
	h := newAuditHandler(as)

	logs := rg.Group("/logs")
	{
		logs.GET("", h.listLogs)
		logs.GET("/resumo", h.summary)
		logs.GET("/exportar", h.exportCSV)
		logs.GET("/:id", h.getLog)
	}
}

// auditFilterFromQuery builds the shared listing/export filter. Dates accept
// RFC 3339 or plain YYYY-MM-DD; the upper bound is inclusive of the whole day.
func auditFilterFromQuery(c *gin.Context) (domain.AuditFilter, error) {
	filter := domain.AuditFilter{
		ActorID:       c.Query("id_usuario"),
		AffectedTable: c.Query("tabela"),
		Kind:          domain.AuditKind(c.Query("kind")),
		ActionSearch:  c.Query("acao"),
	}

	parse := func(value string, endOfDay bool) (*time.Time, error) {
		if value == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return &t, nil
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}

	var err error
	if filter.From, err = parse(c.Query("de"), false); err != nil {
		return filter, err
	}
	if filter.To, err = parse(c.Query("ate"), true); err != nil {
		return filter, err
	}
	return filter, nil
}

// listLogs godoc
// @Summary List audit logs
// @Tags logs
// @Produce json
// @Param page query int false "Page, 1-based"
// @Param per_page query int false "Page size, default 50"
// @Param id_usuario query string false "Actor id"
// @Param tabela query string false "Affected table"
// @Param kind query string false "Payload kind"
// @Param acao query string false "Substring over the action label"
// @Param de query string false "From date (RFC 3339 or YYYY-MM-DD)"
// @Param ate query string false "To date, inclusive"
// @Success 200 {object} dto.AuditLogListResponse
// @Security BearerAuth
// @Router /logs [get]
func (h *auditHandler) listLogs(c *gin.Context) {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Intervalo de datas inválido"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultLogsPerPage)))
	if perPage < 1 {
		perPage = defaultLogsPerPage
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	resp, err := h.auditService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *auditHandler) getLog(c *gin.Context) {
	resp, err := h.auditService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// summary godoc
// @Summary Audit volume overview
// @Tags logs
// @Produce json
// @Success 200 {object} domain.AuditSummary
// @Security BearerAuth
// @Router /logs/resumo [get]
func (h *auditHandler) summary(c *gin.Context) {
	resp, err := h.auditService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// exportCSV godoc
// @Summary Export audit logs as CSV
// @Description Semicolon-separated, same filters as the listing, no pagination
// @Tags logs
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Security BearerAuth
// @Router /logs/exportar [get]
func (h *auditHandler) exportCSV(c *gin.Context) {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Intervalo de datas inválido"})
		return
	}

	data, filename, err := h.auditService.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
