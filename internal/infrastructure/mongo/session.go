package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garikaib/rates-scrapper/internal/application"
	"github.com/garikaib/rates-scrapper/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Session reads and appends snapshots in the shared collection. The
// collection is shared with other producers: reads take the full document,
// writes insert a new one, nothing is ever updated or deleted.
type Session struct {
	coll *mongo.Collection
	log  *zap.Logger
}

var _ application.SnapshotSession = (*Session)(nil)

// Current returns the snapshot with the maximum date, or
// domain.ErrNoSnapshot when the collection is empty.
func (s *Session) Current(ctx context.Context) (domain.Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: domain.FieldDate, Value: -1}})
	var doc bson.M
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("mongo: read current snapshot: %w", err)
	}
	return s.snapshotFromDoc(doc), nil
}

// Insert appends a new snapshot and returns its storage id.
func (s *Session) Insert(ctx context.Context, fields domain.SnapshotFields) (string, error) {
	res, err := s.coll.InsertOne(ctx, bson.M(fields))
	if err != nil {
		return "", fmt.Errorf("mongo: insert snapshot: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

// snapshotFromDoc splits a raw document into identity, date and the field
// set that gets carried forward. A snapshot whose date field is missing or
// of a foreign type sorts as never-current, so the next sync supersedes it.
func (s *Session) snapshotFromDoc(doc bson.M) domain.Snapshot {
	snap := domain.Snapshot{Fields: domain.SnapshotFields{}}
	for k, v := range doc {
		if k == "_id" {
			if oid, ok := v.(primitive.ObjectID); ok {
				snap.ID = oid.Hex()
			} else {
				snap.ID = fmt.Sprintf("%v", v)
			}
			continue
		}
		snap.Fields[k] = v
	}
	switch d := snap.Fields[domain.FieldDate].(type) {
	case primitive.DateTime:
		snap.AsOf = d.Time().UTC()
	case time.Time:
		snap.AsOf = d.UTC()
	default:
		s.log.Warn("mongo.snapshot_date_unreadable", zap.String("id", snap.ID))
	}
	return snap
}
