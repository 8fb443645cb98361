package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportPrefix = "exports/"
)

// UploadResult describes a stored object. Location is its public URL when
// the bucket has one.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores exported files and hands out their public URLs.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ExportKey names an export object: exports/<name>-<UTC timestamp>.<ext>.
func ExportKey(name string, at time.Time, ext string) string {
	return fmt.Sprintf("%s%s-%s.%s", exportPrefix, name, at.UTC().Format("20060102-150405"), strings.TrimPrefix(ext, "."))
}
