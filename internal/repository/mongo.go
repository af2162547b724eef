package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrFantastico007/DeadDrop/internal/models"
)

// MongoStore persists messages in a single collection, indexed by
// room_code + created_at for history reads and the inactivity sweep.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "room_code", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("room_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Insert(ctx context.Context, m *models.Message) (*models.Message, error) {
	m.ID = ""
	m.CreatedAt = time.Now().UTC()
	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		return nil, err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	m.ID = oid.Hex()
	return m, nil
}

func (s *MongoStore) ListByRoom(ctx context.Context, roomCode string) ([]*models.Message, error) {
	cur, err := s.coll.Find(ctx, bson.M{"room_code": roomCode},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var m record
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m.toModel(), nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ActiveRoomCodes(ctx context.Context, since time.Time) ([]string, error) {
	vals, err := s.coll.Distinct(ctx, "room_code", bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(vals))
	for _, v := range vals {
		if c, ok := v.(string); ok {
			codes = append(codes, c)
		}
	}
	return codes, nil
}

func (s *MongoStore) ListOutsideRooms(ctx context.Context, keep []string) ([]*models.Message, error) {
	if keep == nil {
		keep = []string{}
	}
	cur, err := s.coll.Find(ctx, bson.M{"room_code": bson.M{"$nin": keep}})
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cur)
}

func (s *MongoStore) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	res, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// record mirrors models.Message but keeps _id as an ObjectID so cursor
// decoding round-trips cleanly.
type record struct {
	ID                primitive.ObjectID `bson:"_id"`
	RoomCode          string             `bson:"room_code"`
	Kind              string             `bson:"kind"`
	Content           string             `bson:"content"`
	FileRef           string             `bson:"file_ref,omitempty"`
	FileDeletionToken string             `bson:"file_deletion_token,omitempty"`
	CreatedAt         time.Time          `bson:"created_at"`
}

func (r *record) toModel() *models.Message {
	return &models.Message{
		ID:                r.ID.Hex(),
		RoomCode:          r.RoomCode,
		Kind:              r.Kind,
		Content:           r.Content,
		FileRef:           r.FileRef,
		FileDeletionToken: r.FileDeletionToken,
		CreatedAt:         r.CreatedAt,
	}
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]*models.Message, error) {
	defer cur.Close(ctx)
	out := []*models.Message{}
	for cur.Next(ctx) {
		var r record
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, cur.Err()
}
