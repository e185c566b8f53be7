package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
)

// CatalogRepository is the shop-scoped variant cache. The sync pipeline is its only writer.
type CatalogRepository interface {
	FindBySKU(ctx context.Context, sku, shopName string) (*domain.CatalogEntry, error)
	Upsert(ctx context.Context, entry *domain.CatalogEntry) error
	CountByShop(ctx context.Context, shopName string) (int, error)
}

// SyncRunRepository records catalog sync runs
type SyncRunRepository interface {
	Create(ctx context.Context, run *domain.SyncRun) error
	Finish(ctx context.Context, run *domain.SyncRun) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

// SubmissionRepository records purchase-order submissions
type SubmissionRepository interface {
	Create(ctx context.Context, s *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListRecent(ctx context.Context, shopName string, limit int) ([]*domain.Submission, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Catalog    CatalogRepository
	SyncRun    SyncRunRepository
	Submission SubmissionRepository
}
