package repository

import (
	"context"

	"gorm.io/gorm"
)

const nextSequenceSQL = `INSERT INTO sequence_counters (name, value, updated_at)
VALUES (?, 1, NOW())
ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1, updated_at = NOW()
RETURNING value`

// SequenceRepository is a Postgres-backed sequence.Counter. Called inside
// RunInTx, the increment commits or rolls back with the surrounding work.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	if err := GetDB(ctx, r.db).Raw(nextSequenceSQL, name).Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}
