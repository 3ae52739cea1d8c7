package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
)

// dashboardHandler handles HTTP requests for the reporting surfaces.
type dashboardHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newDashboardHandler(rs portssvc.ReportingSvcFacade) *dashboardHandler {
	return &dashboardHandler{reportingService: rs}
}

// registerDashboardRoutes registers the dashboard routes. Open to any
// authenticated role.
func registerDashboardRoutes(rg *gin.RouterGroup, rs portssvc.ReportingSvcFacade) {
	h := newDashboardHandler(rs)

	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("", h.dashboard)
		dashboard.GET("/kpis", h.kpis)
	}
}

func reportFilterFromQuery(c *gin.Context) (domain.ReportFilter, error) {
	filter := domain.ReportFilter{
		CategoryName: c.Query("categoria"),
		UF:           c.Query("uf"),
		Group:        c.Query("grupo"),
	}
	if yearStr := c.Query("ano"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return filter, err
		}
		filter.Year = year
	}
	return filter, nil
}

// dashboard godoc
// @Summary Budget dashboard aggregates
// @Description Totals, monthly series, critical months, top group variances and cost-center rollup
// @Tags dashboard
// @Produce json
// @Param ano query int false "Year"
// @Param categoria query string false "Category name"
// @Param uf query string false "UF"
// @Param grupo query string false "Group"
// @Success 200 {object} dto.DashboardResponse
// @Security BearerAuth
// @Router /dashboard [get]
func (h *dashboardHandler) dashboard(c *gin.Context) {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ano inválido"})
		return
	}

	resp, err := h.reportingService.Dashboard(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// kpis godoc
// @Summary Headline counters
// @Tags dashboard
// @Produce json
// @Param ano query int false "Year"
// @Success 200 {object} domain.KPIs
// @Security BearerAuth
// @Router /dashboard/kpis [get]
func (h *dashboardHandler) kpis(c *gin.Context) {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ano inválido"})
		return
	}

	resp, err := h.reportingService.KPIs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
