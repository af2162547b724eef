package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MrFantastico007/DeadDrop/internal/metrics"
	"github.com/MrFantastico007/DeadDrop/internal/models"
	"github.com/MrFantastico007/DeadDrop/internal/repository"
	"github.com/MrFantastico007/DeadDrop/internal/storage"
)

// ErrValidation marks submissions rejected before any persistence attempt.
var ErrValidation = errors.New("validation failed")

// Broadcaster fans an event out to every live member of a room.
type Broadcaster interface {
	Broadcast(roomCode, event string, payload interface{})
}

// Event names pushed to room members.
const (
	eventMessageReceived = "message-received"
	eventMessageDeleted  = "message-deleted"
)

// SubmitInput is a message submission as received from a participant.
type SubmitInput struct {
	RoomCode          string `json:"roomCode"`
	Kind              string `json:"kind"`
	Content           string `json:"content"`
	FileRef           string `json:"fileRef"`
	FileDeletionToken string `json:"fileDeletionToken"`
}

// MessageService owns the message lifecycle: validate, persist, broadcast;
// and the symmetric path for deletion. The HTTP response to a submitter is
// informational; the broadcast is the canonical signal for UI state.
type MessageService struct {
	store     repository.MessageStore
	objects   storage.ObjectStore
	broadcast Broadcaster
	log       *zap.SugaredLogger
}

func NewMessageService(store repository.MessageStore, objects storage.ObjectStore, b Broadcaster, log *zap.SugaredLogger) *MessageService {
	return &MessageService{store: store, objects: objects, broadcast: b, log: log}
}

// Submit validates and persists a new message, then broadcasts the stored
// record to the room. Every live member, the submitter included, receives
// exactly one copy per connection.
func (s *MessageService) Submit(ctx context.Context, in SubmitInput) (*models.Message, error) {
	roomCode := models.NormalizeRoomCode(in.RoomCode)
	if roomCode == "" {
		return nil, fmt.Errorf("%w: room code is required", ErrValidation)
	}

	m := &models.Message{RoomCode: roomCode, Kind: in.Kind, Content: in.Content}
	switch in.Kind {
	case models.KindText:
		if strings.TrimSpace(in.Content) == "" {
			return nil, fmt.Errorf("%w: text message needs content", ErrValidation)
		}
	case models.KindFile:
		// The ref/token pair comes from a prior upload call. A crash between
		// upload and submit leaves an orphaned object; that window is accepted.
		if in.FileRef == "" || in.FileDeletionToken == "" {
			return nil, fmt.Errorf("%w: file message needs fileRef and fileDeletionToken", ErrValidation)
		}
		m.FileRef = in.FileRef
		m.FileDeletionToken = in.FileDeletionToken
	default:
		return nil, fmt.Errorf("%w: kind must be text or file", ErrValidation)
	}

	stored, err := s.store.Insert(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	metrics.MessagesCreated.Inc()
	s.broadcast.Broadcast(roomCode, eventMessageReceived, stored)
	return stored, nil
}

// History returns the room's full message history, ascending by createdAt.
// An unknown room code is not an error: it yields an empty history, the
// normal state of a room nobody has posted to.
func (s *MessageService) History(ctx context.Context, roomCode string) ([]*models.Message, error) {
	roomCode = models.NormalizeRoomCode(roomCode)
	if roomCode == "" {
		return nil, fmt.Errorf("%w: room code is required", ErrValidation)
	}
	msgs, err := s.store.ListByRoom(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return msgs, nil
}

// Delete removes a message and, for file messages, its stored payload.
// Payload deletion is best-effort: an object-store failure is logged and
// the record still goes away, since a permanently undeletable message is
// worse than a leaked object. Any participant who can name an id may
// delete it; holders of the room code are trusted.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if m.IsFile() && m.FileDeletionToken != "" {
		if err := s.objects.Delete(ctx, m.FileDeletionToken); err != nil {
			s.log.Errorw("file payload delete failed, removing record anyway",
				"message", id, "error", err)
		}
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	metrics.MessagesDeleted.Inc()
	s.broadcast.Broadcast(m.RoomCode, eventMessageDeleted, id)
	return nil
}

// UploadFile is the thin passthrough to the object store. The returned
// ref/token pair is what a subsequent Submit must carry for a file message.
func (s *MessageService) UploadFile(ctx context.Context, filename, contentType string, data []byte) (*storage.StoredObject, error) {
	obj, err := s.objects.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store payload: %w", err)
	}
	return obj, nil
}
