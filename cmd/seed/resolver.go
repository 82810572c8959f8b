package main

import (
	"context"

	"bookmarkd/internal/domain/models"
)

// noFavicons skips icon lookup so seeding works offline
type noFavicons struct{}

func (noFavicons) Resolve(ctx context.Context, pageURL string) *models.Icon {
	return nil
}
