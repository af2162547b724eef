package storage

import "context"

// Upload result: Ref is what clients use to fetch the payload, Token is
// the opaque credential needed to delete it later. The two always travel
// together for file messages.
type StoredObject struct {
	Ref   string
	Token string
}

// ObjectStore is the payload gateway. The core never inspects refs or
// tokens, it only round-trips them.
type ObjectStore interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (*StoredObject, error)
	Delete(ctx context.Context, token string) error
}
