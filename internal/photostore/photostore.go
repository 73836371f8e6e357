// Package photostore stages photos picked in the add-item form until the
// form is submitted.
package photostore

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// MaxPhotoSize is the largest accepted upload.
const MaxPhotoSize = 4 * 1024 * 1024

var (
	ErrNotFound    = errors.New("photo not found")
	ErrTooLarge    = errors.New("photo exceeds size limit")
	ErrUnsupported = errors.New("unsupported image format")
)

type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// allowedImageTypes is the set of MIME types the portfolio API accepts.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// DetectImage sniffs data and returns its MIME type if it is an accepted
// image no larger than MaxPhotoSize.
func DetectImage(data []byte) (string, error) {
	if len(data) > MaxPhotoSize {
		return "", ErrTooLarge
	}
	mime := http.DetectContentType(data)
	if !allowedImageTypes[mime] {
		return "", ErrUnsupported
	}
	return mime, nil
}
