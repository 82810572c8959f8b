package services

import "bookmarkd/internal/domain/models"

// ChangeNotifier receives an event after every committed change.
// Publish must not block.
type ChangeNotifier interface {
	Publish(event models.ChangeEvent)
}
