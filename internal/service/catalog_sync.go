package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

const catalogSyncLockKey = "pdforders:catalog-sync:lock"

// maxBulkLineSize bounds one JSONL record in the bulk result
const maxBulkLineSize = 4 * 1024 * 1024

// CatalogGateway is the part of the Shopify gateway the sync needs
type CatalogGateway interface {
	ShopName(ctx context.Context) (string, error)
	StartBulkProductExport(ctx context.Context) (*domain.BulkOperation, error)
	BulkOperation(ctx context.Context, id string) (*domain.BulkOperation, error)
}

// BulkResultFetcher downloads the JSONL file of a completed bulk operation
type BulkResultFetcher interface {
	FetchBulkResult(ctx context.Context, url string) (io.ReadCloser, error)
}

// SyncLocker hands out a lease so only one sync runs at a time
type SyncLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// PollOutcomeKind tags how polling a bulk operation ended
type PollOutcomeKind int

const (
	PollCompleted PollOutcomeKind = iota
	PollFailed
	PollTimedOut
)

func (k PollOutcomeKind) String() string {
	switch k {
	case PollCompleted:
		return "completed"
	case PollFailed:
		return "failed"
	default:
		return "timed_out"
	}
}

// PollOutcome is the result of polling. URL is only meaningful for PollCompleted and
// may be nil when the export produced no objects. Reason is set for PollFailed.
type PollOutcome struct {
	Kind   PollOutcomeKind
	URL    *string
	Reason string
}

// SyncReport summarizes one catalog sync run
type SyncReport struct {
	RunID           uuid.UUID `json:"run_id"`
	ShopName        string    `json:"shop_name"`
	BulkOperationID string    `json:"bulk_operation_id"`
	RecordsSeen     int       `json:"records_seen"`
	EntriesUpserted int       `json:"entries_upserted"`
	LinesSkipped    int       `json:"lines_skipped"`
	Duration        string    `json:"duration"`
}

type SyncService struct {
	gateway CatalogGateway
	fetcher BulkResultFetcher
	repos   *repository.Repositories
	locker  SyncLocker
	cfg     config.SyncConfig
	logger  *zap.Logger
}

// NewSyncService creates a new catalog sync service
func NewSyncService(gateway CatalogGateway, fetcher BulkResultFetcher, repos *repository.Repositories, locker SyncLocker, cfg config.SyncConfig, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		gateway: gateway,
		fetcher: fetcher,
		repos:   repos,
		locker:  locker,
		cfg:     cfg,
		logger:  logger,
	}
}

// RunSync exports every product variant from Shopify and upserts it into the catalog
// cache under the current shop name. A sync already in progress yields *errors.ErrConflict.
func (s *SyncService) RunSync(ctx context.Context) (*SyncReport, error) {
	token, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, token)
	return s.runLocked(ctx)
}

// StartSync takes the sync lock on the caller's goroutine and runs the sync in the
// background, detached from ctx cancellation but still bounded by the sync timeout.
func (s *SyncService) StartSync(ctx context.Context) error {
	token, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		defer s.release(bg, token)
		s.runLocked(bg)
	}()
	return nil
}

func (s *SyncService) acquire(ctx context.Context) (string, error) {
	lockTTL := s.cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = s.cfg.Timeout + time.Minute
	}
	token, ok, err := s.locker.TryLock(ctx, catalogSyncLockKey, lockTTL)
	if err != nil {
		return "", &errors.SyncError{Stage: "lock", Reason: "failed to acquire sync lock", Err: err}
	}
	if !ok {
		return "", &errors.ErrConflict{Message: "catalog sync already in progress"}
	}
	return token, nil
}

func (s *SyncService) release(ctx context.Context, token string) {
	if err := s.locker.Unlock(context.WithoutCancel(ctx), catalogSyncLockKey, token); err != nil {
		s.logger.Warn("Failed to release sync lock", zap.Error(err))
	}
}

func (s *SyncService) runLocked(ctx context.Context) (*SyncReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	run := &domain.SyncRun{}
	if err := s.repos.SyncRun.Create(ctx, run); err != nil {
		s.logger.Error("Failed to record sync run", zap.Error(err))
		return nil, &errors.SyncError{Stage: "record", Reason: "failed to record sync run", Err: err}
	}

	start := time.Now()
	report := &SyncReport{RunID: run.ID}
	syncErr := s.runSync(ctx, run, report)
	report.Duration = time.Since(start).Round(time.Millisecond).String()

	run.RecordsSeen = report.RecordsSeen
	run.EntriesUpserted = report.EntriesUpserted
	run.LinesSkipped = report.LinesSkipped
	if syncErr != nil {
		msg := syncErr.Error()
		run.Error = &msg
		run.Status = domain.SyncRunFailed
		if se, ok := syncErr.(*errors.SyncError); ok && se.Reason == "timeout" {
			run.Status = domain.SyncRunTimedOut
		}
	} else {
		run.Status = domain.SyncRunCompleted
	}
	if err := s.repos.SyncRun.Finish(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("Failed to record sync run result", zap.String("sync_run_id", run.ID.String()), zap.Error(err))
	}

	if syncErr != nil {
		s.logger.Error("Catalog sync failed", zap.String("sync_run_id", run.ID.String()), zap.Error(syncErr))
		return nil, syncErr
	}
	s.logger.Info("Catalog sync completed",
		zap.String("sync_run_id", run.ID.String()),
		zap.String("shop_name", report.ShopName),
		zap.Int("records_seen", report.RecordsSeen),
		zap.Int("entries_upserted", report.EntriesUpserted),
		zap.Int("lines_skipped", report.LinesSkipped),
		zap.String("duration", report.Duration),
	)
	return report, nil
}

func (s *SyncService) runSync(ctx context.Context, run *domain.SyncRun, report *SyncReport) error {
	shopName, err := s.gateway.ShopName(ctx)
	if err != nil {
		return &errors.SyncError{Stage: "shop", Reason: "failed to get shop name", Err: err}
	}
	report.ShopName = shopName
	run.ShopName = &shopName

	op, err := s.gateway.StartBulkProductExport(ctx)
	if err != nil {
		return &errors.SyncError{Stage: "submit", Reason: "failed to start bulk operation", Err: err}
	}
	report.BulkOperationID = op.ID
	run.BulkOperationID = &op.ID
	s.logger.Info("Bulk operation started", zap.String("bulk_operation_id", op.ID), zap.String("shop_name", shopName))

	outcome := s.pollBulkOperation(ctx, op.ID)
	switch outcome.Kind {
	case PollFailed:
		return &errors.SyncError{Stage: "poll", Reason: "bulk operation failed: " + outcome.Reason}
	case PollTimedOut:
		return &errors.SyncError{Stage: "poll", Reason: "timeout"}
	}

	if outcome.URL == nil || *outcome.URL == "" {
		s.logger.Info("Bulk operation completed without a result file", zap.String("bulk_operation_id", op.ID))
		return nil
	}

	body, err := s.fetcher.FetchBulkResult(ctx, *outcome.URL)
	if err != nil {
		return &errors.SyncError{Stage: "download", Reason: "failed to download bulk result", Err: err}
	}
	defer body.Close()

	return s.ingest(ctx, body, shopName, report)
}

// pollBulkOperation checks the operation right away, then every PollInterval until it
// is terminal, MaxPolls checks have been made, or ctx expires. Status check errors
// count as a poll.
func (s *SyncService) pollBulkOperation(ctx context.Context, id string) PollOutcome {
	timer := time.NewTimer(s.cfg.PollInterval)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return PollOutcome{Kind: PollTimedOut}
		}

		op, err := s.gateway.BulkOperation(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return PollOutcome{Kind: PollTimedOut}
			}
			s.logger.Warn("Bulk operation status check failed", zap.String("bulk_operation_id", id), zap.Int("attempt", attempt), zap.Error(err))
		} else {
			s.logger.Debug("Bulk operation status",
				zap.String("bulk_operation_id", id),
				zap.String("status", string(op.Status)),
				zap.String("object_count", op.ObjectCount),
				zap.Int("attempt", attempt),
			)
			switch op.Status {
			case domain.BulkOperationCompleted:
				return PollOutcome{Kind: PollCompleted, URL: op.URL}
			case domain.BulkOperationFailed, domain.BulkOperationCanceled, domain.BulkOperationExpired:
				reason := string(op.Status)
				if op.ErrorCode != nil && *op.ErrorCode != "" {
					reason += " (" + *op.ErrorCode + ")"
				}
				return PollOutcome{Kind: PollFailed, Reason: reason}
			}
		}

		if attempt >= s.cfg.MaxPolls {
			return PollOutcome{Kind: PollTimedOut}
		}
		timer.Reset(s.cfg.PollInterval)
		select {
		case <-ctx.Done():
			return PollOutcome{Kind: PollTimedOut}
		case <-timer.C:
		}
	}
}

// bulkRecord is one JSONL line of the export. Product lines have no price.
type bulkRecord struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Price               *string  `json:"price"`
	SKU                 *string  `json:"sku"`
	InventoryQuantity   *int     `json:"inventoryQuantity"`
	InventoryPolicy     string   `json:"inventoryPolicy"`
	InventoryManagement *string  `json:"inventoryManagement"`
	Weight              *float64 `json:"weight"`
	WeightUnit          *string  `json:"weightUnit"`
	AvailableForSale    bool     `json:"availableForSale"`
	Barcode             *string  `json:"barcode"`
	ParentID            string   `json:"__parentId"`
}

// ingest reads the whole file first, then upserts variants grouped by parent product
func (s *SyncService) ingest(ctx context.Context, r io.Reader, shopName string, report *SyncReport) error {
	productTitles := make(map[string]string)
	groups := make(map[string][]bulkRecord)
	var parentOrder []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxBulkLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec bulkRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			report.LinesSkipped++
			s.logger.Warn("Skipping malformed bulk result line", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		report.RecordsSeen++

		if rec.Price == nil {
			productTitles[rec.ID] = rec.Title
			continue
		}
		if _, ok := groups[rec.ParentID]; !ok {
			parentOrder = append(parentOrder, rec.ParentID)
		}
		groups[rec.ParentID] = append(groups[rec.ParentID], rec)
	}
	if err := scanner.Err(); err != nil {
		return &errors.SyncError{Stage: "download", Reason: "failed to read bulk result", Err: err}
	}

	syncedAt := time.Now()
	for _, parentID := range parentOrder {
		for _, rec := range groups[parentID] {
			entry, err := catalogEntryFromRecord(rec, shopName, productTitles, syncedAt)
			if err != nil {
				report.LinesSkipped++
				s.logger.Warn("Skipping bulk result variant", zap.String("variant_id", rec.ID), zap.Error(err))
				continue
			}
			if err := s.repos.Catalog.Upsert(ctx, entry); err != nil {
				return &errors.SyncError{Stage: "ingest", Reason: "failed to upsert catalog entry " + rec.ID, Err: err}
			}
			report.EntriesUpserted++
		}
	}
	return nil
}

func catalogEntryFromRecord(rec bulkRecord, shopName string, productTitles map[string]string, syncedAt time.Time) (*domain.CatalogEntry, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("variant has no id")
	}
	price, err := decimal.NewFromString(*rec.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", *rec.Price, err)
	}

	entry := &domain.CatalogEntry{
		VariantID:           rec.ID,
		ShopName:            shopName,
		Title:               rec.Title,
		Price:               price,
		InventoryPolicy:     domain.InventoryPolicy(strings.ToUpper(rec.InventoryPolicy)),
		InventoryManagement: rec.InventoryManagement,
		Weight:              rec.Weight,
		WeightUnit:          rec.WeightUnit,
		AvailableForSale:    rec.AvailableForSale,
		Barcode:             rec.Barcode,
		SyncedAt:            syncedAt,
	}
	if rec.SKU != nil {
		entry.SKU = strings.TrimSpace(*rec.SKU)
	}
	if rec.InventoryQuantity != nil {
		entry.InventoryQuantity = *rec.InventoryQuantity
	}
	if !entry.InventoryPolicy.IsValid() {
		entry.InventoryPolicy = domain.InventoryPolicyDeny
	}
	if rec.ParentID != "" {
		parentID := rec.ParentID
		entry.ProductID = &parentID
		if title, ok := productTitles[rec.ParentID]; ok {
			entry.ProductTitle = &title
		}
	}
	return entry, nil
}

// ListRuns returns the most recent sync runs, newest first
func (s *SyncService) ListRuns(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	return s.repos.SyncRun.ListRecent(ctx, limit)
}

// RunCatalogSyncLoop runs sync once, then every interval. Call from a goroutine.
func (s *SyncService) RunCatalogSyncLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Debug("Catalog sync loop disabled")
		return
	}
	s.runScheduled(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *SyncService) runScheduled(ctx context.Context) {
	if _, err := s.RunSync(ctx); err != nil {
		if _, ok := err.(*errors.ErrConflict); ok {
			s.logger.Info("Scheduled catalog sync skipped: another sync is running")
			return
		}
		s.logger.Warn("Scheduled catalog sync failed", zap.Error(err))
	}
}
