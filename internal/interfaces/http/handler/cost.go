package handler

import (
	"github.com/gin-gonic/gin"
	costapp "github.com/rst/farmcontrol/internal/application/cost"
)

// CostHandler handles cost entry API endpoints
type CostHandler struct {
	BaseHandler
	costService *costapp.CostService
}

// NewCostHandler creates a new CostHandler
func NewCostHandler(costService *costapp.CostService) *CostHandler {
	return &CostHandler{costService: costService}
}

// Create godoc
// @Summary      Record a cost entry
// @Tags         costs
// @Accept       json
// @Produce      json
// @Param        request body costapp.CreateCostEntryRequest true "Cost entry"
// @Success      201 {object} dto.Response{data=costapp.CostEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /costs [post]
func (h *CostHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req costapp.CreateCostEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.costService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetByID godoc
// @Summary      Get a cost entry
// @Tags         costs
// @Produce      json
// @Param        id path string true "Cost entry ID"
// @Success      200 {object} dto.Response{data=costapp.CostEntryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /costs/{id} [get]
func (h *CostHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entry, err := h.costService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List godoc
// @Summary      List cost entries
// @Description  Filter by text, classification, minimum amount, supplier and date range
// @Tags         costs
// @Produce      json
// @Param        search query string false "Description, category or supplier contains"
// @Param        classification query []string false "FIXED, VARIABLE or INVESTMENT"
// @Param        min_amount query string false "Minimum amount"
// @Param        from query string false "First date (YYYY-MM-DD)"
// @Param        to query string false "Last date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]costapp.CostEntryResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /costs [get]
func (h *CostHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter costapp.CostEntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	entries, total, err := h.costService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pagination(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}

// CurrentMonth godoc
// @Summary      Cost entries of the current month
// @Tags         costs
// @Produce      json
// @Success      200 {object} dto.Response{data=[]costapp.CostEntryResponse}
// @Security     BearerAuth
// @Router       /costs/current-month [get]
func (h *CostHandler) CurrentMonth(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	entries, err := h.costService.ListCurrentMonth(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Summary godoc
// @Summary      Monthly cost summary
// @Tags         costs
// @Produce      json
// @Success      200 {object} dto.Response{data=report.CostSummary}
// @Security     BearerAuth
// @Router       /costs/summary [get]
func (h *CostHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	summary, err := h.costService.MonthlySummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Stats godoc
// @Summary      Cost statistics for a filter
// @Tags         costs
// @Produce      json
// @Success      200 {object} dto.Response{data=report.CostStats}
// @Security     BearerAuth
// @Router       /costs/stats [get]
func (h *CostHandler) Stats(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter costapp.CostEntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	stats, err := h.costService.Stats(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Export godoc
// @Summary      Download cost entries
// @Tags         costs
// @Produce      text/csv
// @Param        format query string false "csv (default) or xlsx"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /costs/export [get]
func (h *CostHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	var filter costapp.CostEntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	doc, err := h.costService.Export(c.Request.Context(), tenantID, filter, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendDocument(c, doc)
}

// Categories godoc
// @Summary      Allowed categories per classification
// @Tags         costs
// @Produce      json
// @Param        classification query string false "Only this classification"
// @Success      200 {object} dto.Response{data=[]costapp.CategoryResponse}
// @Router       /costs/categories [get]
func (h *CostHandler) Categories(c *gin.Context) {
	categories, err := h.costService.Categories(c.Query("classification"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Units godoc
// @Summary      Accepted measurement units
// @Tags         costs
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Router       /costs/units [get]
func (h *CostHandler) Units(c *gin.Context) {
	h.Success(c, h.costService.Units())
}
