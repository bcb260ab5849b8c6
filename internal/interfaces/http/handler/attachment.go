package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	attachmentapp "github.com/rst/farmcontrol/internal/application/attachment"
	"github.com/rst/farmcontrol/internal/interfaces/http/dto"
)

// AttachmentHandler receives invoice uploads
type AttachmentHandler struct {
	BaseHandler
	uploader *attachmentapp.InvoiceUploader
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(uploader *attachmentapp.InvoiceUploader) *AttachmentHandler {
	return &AttachmentHandler{uploader: uploader}
}

// UploadInvoice godoc
// @Summary      Upload an invoice photo or PDF
// @Description  JPEG, PNG or PDF up to 10 MB. Large photos are downscaled.
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Invoice file"
// @Success      201 {object} dto.Response{data=attachmentapp.UploadResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /attachments/invoices [post]
func (h *AttachmentHandler) UploadInvoice(c *gin.Context) {
	if _, ok := h.tenantID(c); !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Request validation failed", "file: This field is required")
		return
	}
	f, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	// One byte over the limit is enough for the uploader to reject it
	data, err := io.ReadAll(io.LimitReader(f, attachmentapp.MaxInvoiceBytes+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	result, err := h.uploader.Upload(c.Request.Context(), attachmentapp.InvoiceFile{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
