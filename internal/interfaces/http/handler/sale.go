package handler

import (
	"github.com/gin-gonic/gin"
	salesapp "github.com/rst/farmcontrol/internal/application/sales"
	"github.com/rst/farmcontrol/internal/interfaces/http/middleware"
)

// SaleHandler handles sale and consignment settlement endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create godoc
// @Summary      Record a sale
// @Description  Direct sales are paid unless sold on term; consignments wait for settlement
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body salesapp.CreateSaleRequest true "Sale"
// @Success      201 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req salesapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        search query string false "Number or customer contains"
// @Param        payment_type query []string false "Payment types"
// @Param        status query []string false "Statuses"
// @Param        from query string false "First date (YYYY-MM-DD)"
// @Param        to query string false "Last date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]salesapp.SaleResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter salesapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	list, total, err := h.saleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pagination(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, list, total, page, pageSize)
}

// CurrentMonth godoc
// @Summary      Sales of the current month
// @Tags         sales
// @Produce      json
// @Success      200 {object} dto.Response{data=[]salesapp.SaleResponse}
// @Security     BearerAuth
// @Router       /sales/current-month [get]
func (h *SaleHandler) CurrentMonth(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	list, err := h.saleService.ListCurrentMonth(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Summary godoc
// @Summary      Monthly sales summary
// @Tags         sales
// @Produce      json
// @Success      200 {object} dto.Response{data=report.SalesSummary}
// @Security     BearerAuth
// @Router       /sales/summary [get]
func (h *SaleHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	summary, err := h.saleService.MonthlySummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// MarkPaid godoc
// @Summary      Record payment of a pending sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/pay [post]
func (h *SaleHandler) MarkPaid(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sale, err := h.saleService.MarkPaid(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Cancel godoc
// @Summary      Cancel a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sale, err := h.saleService.Cancel(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Settle godoc
// @Summary      Settle a consignment
// @Description  Items are matched to the sale items by position. Unconsumed, unlost quantity is returned.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID"
// @Param        request body salesapp.SettleSaleRequest true "Counted quantities"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/settle [post]
func (h *SaleHandler) Settle(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req salesapp.SettleSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.SettledBy == "" {
		req.SettledBy = middleware.GetOperator(c)
	}

	sale, err := h.saleService.Settle(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// PreviewSettlement godoc
// @Summary      Compute a settlement without applying it
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID"
// @Param        request body salesapp.SettleSaleRequest true "Counted quantities"
// @Success      200 {object} dto.Response{data=salesapp.SettlementResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/settlement/preview [post]
func (h *SaleHandler) PreviewSettlement(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req salesapp.SettleSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	preview, err := h.saleService.PreviewSettlement(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Export godoc
// @Summary      Download sales
// @Tags         sales
// @Produce      text/csv
// @Param        format query string false "csv (default) or xlsx"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /sales/export [get]
func (h *SaleHandler) Export(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	format, ok := h.exportFormat(c)
	if !ok {
		return
	}
	var filter salesapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	doc, err := h.saleService.Export(c.Request.Context(), tenantID, filter, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendDocument(c, doc)
}
