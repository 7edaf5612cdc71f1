package models

import (
	"strings"
)

// Source identifies how a receipt was submitted.
type Source string

const (
	SourceFile    Source = "file"
	SourceCapture Source = "capture"
)

// CaptureContentType is the content type recorded for camera captures.
const CaptureContentType = "image/jpeg"

// allowedContentTypes lists the receipt formats ingestion accepts for file uploads.
var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/tiff":      {},
}

// Upload describes a receipt submission that starts a session's ingestion.
type Upload struct {
	Source      Source
	FileName    string
	ContentType string
	Size        int64
}

// Validate checks the submission before any session state changes.
// Captures are normalized to CaptureContentType.
func (u *Upload) Validate() error {
	switch u.Source {
	case SourceCapture:
		u.ContentType = CaptureContentType
		return nil
	case SourceFile:
		ct := strings.ToLower(strings.TrimSpace(u.ContentType))
		if _, ok := allowedContentTypes[ct]; !ok {
			return NewValidationError("content_type", "unsupported receipt format %q", u.ContentType)
		}
		if u.Size < 0 {
			return NewValidationError("size", "must not be negative")
		}
		u.ContentType = ct
		return nil
	default:
		return NewValidationError("source", "must be %q or %q", SourceFile, SourceCapture)
	}
}
