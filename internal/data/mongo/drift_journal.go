// Package mongo stores the synchronizer's drift journal in MongoDB. The
// journal is append-only operator evidence, kept outside PostgreSQL so a
// journal outage cannot touch the ledger write path.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/envelope-ledger/internal/ledger"
)

const (
	// DriftCollectionName is the name of the drift correction collection in MongoDB
	DriftCollectionName = "drift_corrections"
)

// driftDocument is the stored shape of a correction. UUIDs and decimals are
// persisted as strings; decimal.Decimal carries no exported fields, so BSON
// cannot marshal it directly.
type driftDocument struct {
	BudgetID        string    `bson:"budget_id"`
	CategoryID      string    `bson:"category_id"`
	PreviousBalance string    `bson:"previous_balance"`
	SyncedBalance   string    `bson:"synced_balance"`
	CorrelationID   string    `bson:"correlation_id,omitempty"`
	CorrectedAt     time.Time `bson:"corrected_at"`
}

func newDriftDocument(record *ledger.DriftRecord) driftDocument {
	return driftDocument{
		BudgetID:        record.BudgetID.String(),
		CategoryID:      record.CategoryID.String(),
		PreviousBalance: record.PreviousBalance.String(),
		SyncedBalance:   record.SyncedBalance.String(),
		CorrelationID:   record.CorrelationID,
		CorrectedAt:     record.CorrectedAt,
	}
}

func (d driftDocument) toRecord() (*ledger.DriftRecord, error) {
	budgetID, err := uuid.Parse(d.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("invalid budget id %q: %w", d.BudgetID, err)
	}
	categoryID, err := uuid.Parse(d.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id %q: %w", d.CategoryID, err)
	}
	previous, err := decimal.NewFromString(d.PreviousBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid previous balance %q: %w", d.PreviousBalance, err)
	}
	synced, err := decimal.NewFromString(d.SyncedBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid synced balance %q: %w", d.SyncedBalance, err)
	}

	return &ledger.DriftRecord{
		BudgetID:        budgetID,
		CategoryID:      categoryID,
		PreviousBalance: previous,
		SyncedBalance:   synced,
		CorrelationID:   d.CorrelationID,
		CorrectedAt:     d.CorrectedAt,
	}, nil
}

// DriftJournal implements the ledger.DriftJournal interface for MongoDB
type DriftJournal struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewDriftJournal creates a new MongoDB drift journal
func NewDriftJournal(logger *slog.Logger, db *mongo.Database) *DriftJournal {
	return &DriftJournal{
		db:     db,
		logger: logger,
	}
}

var _ ledger.DriftJournal = (*DriftJournal)(nil)

// Append stores one drift correction record
func (j *DriftJournal) Append(ctx context.Context, record *ledger.DriftRecord) error {
	collection := j.db.Collection(DriftCollectionName)

	_, err := collection.InsertOne(ctx, newDriftDocument(record))
	if err != nil {
		j.logger.Error("Failed to journal drift correction",
			"category_id", record.CategoryID.String(),
			"error", err)
		return fmt.Errorf("failed to journal drift correction: %w", err)
	}

	return nil
}

// ListByBudget retrieves the most recent corrections for a budget, newest
// first
func (j *DriftJournal) ListByBudget(ctx context.Context, budgetID uuid.UUID, limit int) ([]*ledger.DriftRecord, error) {
	collection := j.db.Collection(DriftCollectionName)

	filter := bson.M{"budget_id": budgetID.String()}
	opts := options.Find().
		SetSort(bson.M{"corrected_at": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		j.logger.Error("Failed to list drift corrections",
			"budget_id", budgetID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list drift corrections: %w", err)
	}
	defer cursor.Close(ctx)

	var documents []driftDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode drift corrections: %w", err)
	}

	records := make([]*ledger.DriftRecord, 0, len(documents))
	for _, doc := range documents {
		record, err := doc.toRecord()
		if err != nil {
			return nil, fmt.Errorf("failed to decode drift corrections: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}
