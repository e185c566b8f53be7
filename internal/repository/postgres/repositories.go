package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Catalog:    NewCatalogRepository(db, logger),
		SyncRun:    NewSyncRunRepository(db, logger),
		Submission: NewSubmissionRepository(db, logger),
	}
}
