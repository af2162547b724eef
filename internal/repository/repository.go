package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MrFantastico007/DeadDrop/internal/models"
)

// ErrNotFound is returned when a message id resolves to nothing.
var ErrNotFound = errors.New("message not found")

// MessageStore is the persistence gateway for messages. Implementations
// assign the identifier and createdAt at insert time; identifiers are
// unique across all rooms and never reused.
type MessageStore interface {
	Insert(ctx context.Context, m *models.Message) (*models.Message, error)
	ListByRoom(ctx context.Context, roomCode string) ([]*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	DeleteByID(ctx context.Context, id string) error

	// ActiveRoomCodes returns the distinct room codes with at least one
	// message created at or after since.
	ActiveRoomCodes(ctx context.Context, since time.Time) ([]string, error)
	// ListOutsideRooms returns every message whose room code is not in keep.
	ListOutsideRooms(ctx context.Context, keep []string) ([]*models.Message, error)
	// DeleteByIDs removes the given messages, returning how many went away.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
