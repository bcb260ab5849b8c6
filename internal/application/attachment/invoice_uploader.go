// Package attachment stores invoice photos and PDFs attached to cost entries.
package attachment

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/logger"
	"github.com/rst/farmcontrol/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// MaxInvoiceBytes is the largest accepted invoice file
	MaxInvoiceBytes = 10 << 20
	// MaxImageDimension bounds the width and height of stored invoice photos
	MaxImageDimension = 2048
	// InvoiceFolder is the object key prefix of invoice uploads
	InvoiceFolder = "notas_fiscais"

	jpegQuality = 85
)

// ErrInvalidAttachment is returned when an upload fails validation
var ErrInvalidAttachment = shared.NewDomainError("INVALID_ATTACHMENT", "Invalid invoice attachment")

var (
	allowedContentTypes = []string{"image/jpeg", "image/jpg", "image/png", "application/pdf"}
	allowedExtensions   = []string{"jpg", "jpeg", "png", "pdf"}
)

// InvoiceFile is an uploaded invoice as received from the client
type InvoiceFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// UploadResult describes a stored invoice
type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Resized     bool   `json:"resized"`
	// Placeholder is set when the object store failed and URL points at nothing
	Placeholder bool `json:"placeholder"`
}

// InvoiceUploader validates invoice files and writes them to object storage
type InvoiceUploader struct {
	storage         ObjectStorage
	placeholderBase string
	now             func() time.Time
	newID           func() string
}

// NewInvoiceUploader creates a new InvoiceUploader
func NewInvoiceUploader(storage ObjectStorage, placeholderBase string) *InvoiceUploader {
	return &InvoiceUploader{
		storage:         storage,
		placeholderBase: strings.TrimRight(placeholderBase, "/"),
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// Upload stores the file under notas_fiscais/{YYYYmmdd_HHMMSS}_{id8}.{ext}.
// Oversized photos are downscaled first. A storage failure is not an error:
// the result then carries a placeholder URL.
func (u *InvoiceUploader) Upload(ctx context.Context, file InvoiceFile) (*UploadResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "attachment", "upload_invoice",
		attribute.String("content_type", file.ContentType),
		attribute.Int("size", len(file.Data)))
	defer span.End()

	contentType, ext, err := validate(file)
	if err != nil {
		return nil, err
	}

	data := file.Data
	resized := false
	if contentType != "application/pdf" {
		data, resized, err = fitImage(data, ext)
		if err != nil {
			return nil, err
		}
	}

	key := fmt.Sprintf("%s/%s_%s.%s", InvoiceFolder, u.now().Format("20060102_150405"), u.newID()[:8], ext)
	result := &UploadResult{
		Key:         key,
		ContentType: contentType,
		Size:        len(data),
		Resized:     resized,
	}

	url, err := u.storage.Upload(ctx, key, contentType, data)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.FromContext(ctx).Warn("Invoice upload failed, returning placeholder URL",
			zap.String("key", key),
			zap.Error(err),
		)
		result.URL = u.placeholderBase + "/" + key
		result.Placeholder = true
		return result, nil
	}

	result.URL = url
	logger.FromContext(ctx).Info("Invoice uploaded",
		zap.String("key", key),
		zap.Int("size", len(data)),
		zap.Bool("resized", resized),
	)
	return result, nil
}

// validate checks the file and returns its normalized content type and extension
func validate(file InvoiceFile) (string, string, error) {
	if len(file.Data) == 0 {
		return "", "", ErrInvalidAttachment.WithDetails("file is empty")
	}
	if len(file.Data) > MaxInvoiceBytes {
		return "", "", ErrInvalidAttachment.WithDetails("file exceeds 10 MB")
	}

	contentType, _, _ := strings.Cut(file.ContentType, ";")
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !slices.Contains(allowedContentTypes, contentType) {
		return "", "", ErrInvalidAttachment.WithDetails("unsupported content type " + file.ContentType)
	}
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(file.FileName), "."))
	if !slices.Contains(allowedExtensions, ext) {
		return "", "", ErrInvalidAttachment.WithDetails("unsupported file extension " + path.Ext(file.FileName))
	}
	return contentType, ext, nil
}

// fitImage downscales images larger than MaxImageDimension on either side,
// keeping the aspect ratio and the original encoding.
func fitImage(data []byte, ext string) ([]byte, bool, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, ErrInvalidAttachment.WithDetails("image could not be decoded")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= MaxImageDimension && bounds.Dy() <= MaxImageDimension {
		return data, false, nil
	}

	fitted := imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)
	format := imaging.JPEG
	if ext == "png" {
		format = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, false, fmt.Errorf("encode resized invoice: %w", err)
	}
	return buf.Bytes(), true, nil
}
