package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
)

type syncRunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSyncRunRepository creates a new sync run repository
func NewSyncRunRepository(db *sql.DB, logger *zap.Logger) *syncRunRepository {
	return &syncRunRepository{db: db, logger: logger}
}

func (r *syncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO catalog_sync_runs (id, shop_name, bulk_operation_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = domain.SyncRunRunning
	}

	_, err := r.db.ExecContext(ctx, query, run.ID, run.ShopName, run.BulkOperationID, string(run.Status), run.StartedAt)
	if err != nil {
		r.logger.Error("Failed to create sync run", zap.Error(err))
		return err
	}
	return nil
}

// Finish stores the final status and counters of a run
func (r *syncRunRepository) Finish(ctx context.Context, run *domain.SyncRun) error {
	query := `
		UPDATE catalog_sync_runs
		SET shop_name = $2, bulk_operation_id = $3, status = $4, records_seen = $5,
			entries_upserted = $6, lines_skipped = $7, error = $8, finished_at = $9
		WHERE id = $1
	`
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.ShopName, run.BulkOperationID, string(run.Status), run.RecordsSeen,
		run.EntriesUpserted, run.LinesSkipped, run.Error, *run.FinishedAt,
	)
	if err != nil {
		r.logger.Error("Failed to finish sync run", zap.Error(err), zap.String("sync_run_id", run.ID.String()))
		return err
	}
	return nil
}

func (r *syncRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	query := `
		SELECT id, shop_name, bulk_operation_id, status, records_seen, entries_upserted,
			lines_skipped, error, started_at, finished_at
		FROM catalog_sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list sync runs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.SyncRun
	for rows.Next() {
		var run domain.SyncRun
		var shopName, bulkOpID, errMsg sql.NullString
		var finishedAt sql.NullTime
		var status string
		if err := rows.Scan(
			&run.ID, &shopName, &bulkOpID, &status, &run.RecordsSeen, &run.EntriesUpserted,
			&run.LinesSkipped, &errMsg, &run.StartedAt, &finishedAt,
		); err != nil {
			return nil, err
		}
		run.Status = domain.SyncRunStatus(status)
		if shopName.Valid {
			run.ShopName = &shopName.String
		}
		if bulkOpID.Valid {
			run.BulkOperationID = &bulkOpID.String
		}
		if errMsg.Valid {
			run.Error = &errMsg.String
		}
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
