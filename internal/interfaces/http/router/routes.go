package router

import "github.com/rst/farmcontrol/internal/interfaces/http/handler"

// Handlers are the endpoint groups served under /api/v1
type Handlers struct {
	System     *handler.SystemHandler
	Cost       *handler.CostHandler
	Supplier   *handler.SupplierHandler
	Sale       *handler.SaleHandler
	Report     *handler.ReportHandler
	Attachment *handler.AttachmentHandler
}

// DomainGroups returns the farm route groups
func DomainGroups(h Handlers) []RouteRegistrar {
	system := NewDomainGroup("system", "/system").
		GET("/ping", h.System.Ping).
		GET("/info", h.System.Info)

	costs := NewDomainGroup("cost", "/costs").
		POST("", h.Cost.Create).
		GET("", h.Cost.List).
		GET("/current-month", h.Cost.CurrentMonth).
		GET("/summary", h.Cost.Summary).
		GET("/stats", h.Cost.Stats).
		GET("/export", h.Cost.Export).
		GET("/categories", h.Cost.Categories).
		GET("/units", h.Cost.Units).
		GET("/:id", h.Cost.GetByID)

	partner := NewDomainGroup("partner", "/partner")
	partner.Group("supplier", "/suppliers").
		POST("", h.Supplier.Create).
		GET("", h.Supplier.List).
		GET("/lookup", h.Supplier.Lookup).
		GET("/stats", h.Supplier.Stats).
		GET("/export", h.Supplier.Export).
		GET("/:id", h.Supplier.GetByID).
		PUT("/:id", h.Supplier.Update).
		POST("/:id/toggle-active", h.Supplier.ToggleActive).
		GET("/:id/purchases", h.Supplier.Purchases)

	sales := NewDomainGroup("sales", "/sales").
		POST("", h.Sale.Create).
		GET("", h.Sale.List).
		GET("/current-month", h.Sale.CurrentMonth).
		GET("/summary", h.Sale.Summary).
		GET("/export", h.Sale.Export).
		GET("/:id", h.Sale.GetByID).
		POST("/:id/pay", h.Sale.MarkPaid).
		POST("/:id/cancel", h.Sale.Cancel).
		POST("/:id/settle", h.Sale.Settle).
		POST("/:id/settlement/preview", h.Sale.PreviewSettlement)

	reports := NewDomainGroup("report", "/reports").
		GET("/dashboard", h.Report.Dashboard)

	attachments := NewDomainGroup("attachment", "/attachments").
		POST("/invoices", h.Attachment.UploadInvoice)

	return []RouteRegistrar{system, costs, partner, sales, reports, attachments}
}
