// Package store caches conversion results keyed by the content of the
// uploaded file, so re-uploads of identical bytes skip the pipeline.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"manifestconv/internal/manifest/models"
)

// Result is one cached conversion output: the table for previews and the
// serialized workbook for downloads.
type Result struct {
	Columns  []string     `json:"columns"`
	Rows     []models.Row `json:"rows"`
	Workbook []byte       `json:"workbook"`
}

// Key derives the cache key for an upload. The pipeline mode is part of the
// key so template-mode results never collide with plain ones.
func Key(fileBytes []byte, mode string) string {
	sum := sha256.Sum256(fileBytes)
	return hex.EncodeToString(sum[:]) + ":" + mode
}

// Store is the result cache. A miss is (nil, nil); cache failures must never
// fail a conversion, callers degrade to recomputing.
type Store interface {
	Get(ctx context.Context, key string) (*Result, error)
	Set(ctx context.Context, key string, res *Result, ttl time.Duration) error
}
