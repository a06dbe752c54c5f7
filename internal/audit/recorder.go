// Package audit captures before/after images of mutations to tracked
// entities. Recording is best-effort: a failed write to the audit log is
// logged and swallowed, never surfaced to the caller, so auditing can
// never fail the business operation it observes.
package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/pkg/logger"
)

// Recorder appends audit records for mutations on tracked entities.
type Recorder struct {
	repo domain.AuditRepository
}

func NewRecorder(repo domain.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record persists one audit entry outside any caller transaction.
// actorUserID is nil for system-initiated mutations. before and after are
// entity snapshots; pass nil for the missing side of an insert or delete.
func (r *Recorder) Record(ctx context.Context, actorUserID *uint, action domain.Action, entity string, recordID uint, before, after interface{}) {
	record, ok := r.build(ctx, actorUserID, action, entity, recordID, before, after)
	if !ok {
		return
	}
	if err := r.repo.Create(record); err != nil {
		r.logFailure(ctx, err, action, entity, recordID)
	}
}

// RecordInTx persists one audit entry inside the caller's transaction, so
// the record commits and rolls back with the mutation it describes. The
// insert runs under a savepoint: if it fails, the savepoint is rolled back
// and the surrounding transaction continues untouched.
func (r *Recorder) RecordInTx(ctx context.Context, tx *gorm.DB, actorUserID *uint, action domain.Action, entity string, recordID uint, before, after interface{}) {
	record, ok := r.build(ctx, actorUserID, action, entity, recordID, before, after)
	if !ok {
		return
	}

	const savepoint = "audit_record"
	if err := tx.SavePoint(savepoint).Error; err != nil {
		r.logFailure(ctx, err, action, entity, recordID)
		return
	}
	if err := r.repo.WithTx(tx).Create(record); err != nil {
		tx.RollbackTo(savepoint)
		r.logFailure(ctx, err, action, entity, recordID)
	}
}

func (r *Recorder) build(ctx context.Context, actorUserID *uint, action domain.Action, entity string, recordID uint, before, after interface{}) (*domain.Record, bool) {
	record := &domain.Record{
		UserID:   actorUserID,
		Action:   action,
		Entity:   entity,
		RecordID: recordID,
	}

	var ok bool
	if record.OldValues, ok = r.snapshot(ctx, before); !ok {
		return nil, false
	}
	if record.NewValues, ok = r.snapshot(ctx, after); !ok {
		return nil, false
	}
	return record, true
}

func (r *Recorder) snapshot(ctx context.Context, v interface{}) (*string, bool) {
	if v == nil {
		return nil, true
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to marshal audit snapshot")
		return nil, false
	}
	s := string(data)
	return &s, true
}

func (r *Recorder) logFailure(ctx context.Context, err error, action domain.Action, entity string, recordID uint) {
	logger.Error(ctx).
		Err(err).
		Str("action", string(action)).
		Str("entity", entity).
		Uint("record_id", recordID).
		Msg("Failed to persist audit record")
}
