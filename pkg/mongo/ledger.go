package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
)

// CollectionName is the default collection for backup codes.
const CollectionName = "backup_codes"

// Ledger stores one document per backup code.
type Ledger struct {
	coll *mongo.Collection
}

type codeDocument struct {
	Owner      string     `bson:"owner"`
	Hash       string     `bson:"hash"`
	BatchID    string     `bson:"batch_id"`
	CreatedAt  time.Time  `bson:"created_at"`
	Consumed   bool       `bson:"consumed"`
	ConsumedAt *time.Time `bson:"consumed_at,omitempty"`
}

// NewLedger uses the backup_codes collection of db.
func NewLedger(db *mongo.Database) *Ledger {
	return &Ledger{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique (owner, hash) index. Safe to call on every start.
func (l *Ledger) EnsureIndexes(ctx context.Context) error {
	_, err := l.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "hash", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("owner_hash_unique"),
	})
	if err != nil {
		return errors.Join(ErrFailedToCreateIndexes, err)
	}
	return nil
}

// Replace deletes the owner's codes and inserts the new batch. Without a replica set the two
// steps are not one transaction; a crash in between leaves the owner with no codes.
func (l *Ledger) Replace(ctx context.Context, owner string, records []backupcode.Record) error {
	if owner == "" {
		return backupcode.ErrEmptyOwner
	}
	if _, err := l.coll.DeleteMany(ctx, bson.D{{Key: "owner", Value: owner}}); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]codeDocument, len(records))
	for i, r := range records {
		docs[i] = codeDocument{
			Owner:      owner,
			Hash:       r.Hash,
			BatchID:    r.BatchID.String(),
			CreatedAt:  r.CreatedAt,
			Consumed:   r.ConsumedAt != nil,
			ConsumedAt: r.ConsumedAt,
		}
	}
	if _, err := l.coll.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return backupcode.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (l *Ledger) List(ctx context.Context, owner string) ([]backupcode.Record, error) {
	cur, err := l.coll.Find(ctx,
		bson.D{{Key: "owner", Value: owner}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "hash", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var docs []codeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]backupcode.Record, 0, len(docs))
	for _, d := range docs {
		batchID, err := uuid.Parse(d.BatchID)
		if err != nil {
			return nil, err
		}
		out = append(out, backupcode.Record{
			Owner:      d.Owner,
			Hash:       d.Hash,
			BatchID:    batchID,
			CreatedAt:  d.CreatedAt,
			ConsumedAt: d.ConsumedAt,
		})
	}
	return out, nil
}

// MarkConsumed updates the document only while consumed is false; the server applies the
// filter and the update atomically on a single document.
func (l *Ledger) MarkConsumed(ctx context.Context, owner, hash string, at time.Time) (bool, error) {
	res, err := l.coll.UpdateOne(ctx,
		bson.D{{Key: "owner", Value: owner}, {Key: "hash", Value: hash}, {Key: "consumed", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "consumed", Value: true}, {Key: "consumed_at", Value: at}}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (l *Ledger) Delete(ctx context.Context, owner string) error {
	_, err := l.coll.DeleteMany(ctx, bson.D{{Key: "owner", Value: owner}})
	return err
}

var _ backupcode.Ledger = (*Ledger)(nil)
