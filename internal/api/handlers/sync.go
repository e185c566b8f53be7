package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
)

// Syncer starts catalog syncs and lists their history
type Syncer interface {
	StartSync(ctx context.Context) error
	ListRuns(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

// HandleTriggerSync handles POST /v1/catalog/sync
func HandleTriggerSync(syncer Syncer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := syncer.StartSync(c.Request.Context()); err != nil {
			respondError(c, err, logger)
			return
		}
		logger.Info("Catalog sync triggered over HTTP")
		c.JSON(http.StatusAccepted, gin.H{"status": "sync started"})
	}
}

// HandleListSyncRuns handles GET /v1/catalog/sync/runs
func HandleListSyncRuns(syncer Syncer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		runs, err := syncer.ListRuns(c.Request.Context(), queryLimit(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		data := make([]gin.H, 0, len(runs))
		for _, r := range runs {
			data = append(data, gin.H{
				"id":                r.ID.String(),
				"shop_name":         r.ShopName,
				"bulk_operation_id": r.BulkOperationID,
				"status":            r.Status,
				"records_seen":      r.RecordsSeen,
				"entries_upserted":  r.EntriesUpserted,
				"lines_skipped":     r.LinesSkipped,
				"error":             r.Error,
				"started_at":        r.StartedAt,
				"finished_at":       r.FinishedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"data": data, "meta": gin.H{"count": len(data)}})
	}
}
