package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrFantastico007/DeadDrop/internal/models"
	"github.com/MrFantastico007/DeadDrop/internal/repository"
	"github.com/MrFantastico007/DeadDrop/internal/storage"
	"go.uber.org/zap"
)

// fakeStore is an in-memory MessageStore. Identifiers are assigned from a
// counter and createdAt from the injectable clock, mirroring the gateway
// contract that the store owns both.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	messages []*models.Message
	clock    func() time.Time

	insertErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{clock: func() time.Time { return time.Now().UTC() }}
}

func (s *fakeStore) Insert(_ context.Context, m *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.seq++
	cp := *m
	cp.ID = fmt.Sprintf("msg-%04d", s.seq)
	cp.CreatedAt = s.clock()
	s.messages = append(s.messages, &cp)
	out := cp
	return &out, nil
}

func (s *fakeStore) ListByRoom(_ context.Context, roomCode string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []*models.Message{}
	for _, m := range s.messages {
		if m.RoomCode == roomCode {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeStore) ActiveRoomCodes(_ context.Context, since time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, m := range s.messages {
		if m.CreatedAt.Before(since) {
			continue
		}
		if _, ok := seen[m.RoomCode]; !ok {
			seen[m.RoomCode] = struct{}{}
			out = append(out, m.RoomCode)
		}
	}
	return out, nil
}

func (s *fakeStore) ListOutsideRooms(_ context.Context, keep []string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keepSet := map[string]struct{}{}
	for _, c := range keep {
		keepSet[c] = struct{}{}
	}
	out := []*models.Message{}
	for _, m := range s.messages {
		if _, ok := keepSet[m.RoomCode]; !ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := map[string]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.messages[:0]
	var deleted int64
	for _, m := range s.messages {
		if _, ok := drop[m.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	s.messages = kept
	return deleted, nil
}

// seed inserts a message directly, bypassing validation, with an explicit
// creation time.
func (s *fakeStore) seed(room, kind, content, token string, createdAt time.Time) *models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m := &models.Message{
		ID:                fmt.Sprintf("msg-%04d", s.seq),
		RoomCode:          room,
		Kind:              kind,
		Content:           content,
		FileDeletionToken: token,
		CreatedAt:         createdAt,
	}
	if kind == models.KindFile {
		m.FileRef = "https://files.example/" + m.ID
	}
	s.messages = append(s.messages, m)
	return m
}

// fakeObjects records deletions and can fail selected tokens.
type fakeObjects struct {
	mu       sync.Mutex
	deleted  []string
	failFor  map[string]bool
	allFail  bool
	uploaded int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{failFor: map[string]bool{}}
}

func (o *fakeObjects) Upload(_ context.Context, filename, _ string, _ []byte) (*storage.StoredObject, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uploaded++
	key := fmt.Sprintf("obj-%04d", o.uploaded)
	return &storage.StoredObject{Ref: "https://files.example/" + filename, Token: key}, nil
}

func (o *fakeObjects) Delete(_ context.Context, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.allFail || o.failFor[token] {
		return errors.New("object store unavailable")
	}
	o.deleted = append(o.deleted, token)
	return nil
}

// broadcastRecorder captures fan-out calls in issue order.
type broadcastRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

func (r *broadcastRecorder) Broadcast(roomCode, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Room: roomCode, Event: event, Payload: payload})
}

func (r *broadcastRecorder) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent{}, r.events...)
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
