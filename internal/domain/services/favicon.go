package services

import (
	"context"

	"bookmarkd/internal/domain/models"
)

// FaviconResolver performs a best-effort icon lookup for a page URL.
// It never fails: any problem yields a nil icon.
type FaviconResolver interface {
	Resolve(ctx context.Context, pageURL string) *models.Icon
}
