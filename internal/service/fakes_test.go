package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

type fakeCatalog struct {
	mu      sync.Mutex
	entries map[string]*domain.CatalogEntry // shop|variant
	findErr error
	upserts int
}

func newFakeCatalog(entries ...*domain.CatalogEntry) *fakeCatalog {
	c := &fakeCatalog{entries: make(map[string]*domain.CatalogEntry)}
	for _, e := range entries {
		c.entries[e.ShopName+"|"+e.VariantID] = e
	}
	return c
}

func (c *fakeCatalog) FindBySKU(_ context.Context, sku, shopName string) (*domain.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	for _, e := range c.entries {
		if e.SKU == sku && e.ShopName == shopName {
			return e, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "catalog_entry", ID: sku}
}

func (c *fakeCatalog) Upsert(_ context.Context, e *domain.CatalogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upserts++
	cp := *e
	c.entries[e.ShopName+"|"+e.VariantID] = &cp
	return nil
}

func (c *fakeCatalog) CountByShop(_ context.Context, shopName string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.ShopName == shopName {
			n++
		}
	}
	return n, nil
}

func (c *fakeCatalog) get(shop, variantID string) *domain.CatalogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[shop+"|"+variantID]
}

type fakeSyncRuns struct {
	mu       sync.Mutex
	runs     []*domain.SyncRun
	finished []domain.SyncRunStatus
}

func (r *fakeSyncRuns) Create(_ context.Context, run *domain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = domain.SyncRunRunning
	}
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeSyncRuns) Finish(_ context.Context, run *domain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, run.Status)
	return nil
}

func (r *fakeSyncRuns) finishedStatuses() []domain.SyncRunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SyncRunStatus(nil), r.finished...)
}

func (r *fakeSyncRuns) ListRecent(_ context.Context, limit int) ([]*domain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	return r.runs[:limit], nil
}

func (r *fakeSyncRuns) last() *domain.SyncRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs) == 0 {
		return nil
	}
	return r.runs[len(r.runs)-1]
}

type fakeSubmissions struct {
	mu        sync.Mutex
	created   []*domain.Submission
	createErr error
}

func (r *fakeSubmissions) Create(_ context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, s)
	return nil
}

func (r *fakeSubmissions) GetByID(_ context.Context, id uuid.UUID) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.created {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "submission", ID: id.String()}
}

func (r *fakeSubmissions) ListRecent(_ context.Context, shopName string, limit int) ([]*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Submission
	for _, s := range r.created {
		if s.ShopName == shopName && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func newFakeRepos(catalog *fakeCatalog) (*repository.Repositories, *fakeSyncRuns, *fakeSubmissions) {
	runs := &fakeSyncRuns{}
	subs := &fakeSubmissions{}
	return &repository.Repositories{Catalog: catalog, SyncRun: runs, Submission: subs}, runs, subs
}

// fakeGateway implements every gateway interface the services consume
type fakeGateway struct {
	mu sync.Mutex

	shopName string
	shopErr  error

	bulkStartErr error
	bulkStatuses []domain.BulkOperation // returned in order; the last one repeats
	polls        int

	customers   map[string]string
	customerErr error

	variants   map[string]*LiveVariant
	variantErr error

	draftErr    error
	draftOrders []domain.DraftOrderRequest
}

func (g *fakeGateway) ShopName(context.Context) (string, error) {
	return g.shopName, g.shopErr
}

func (g *fakeGateway) StartBulkProductExport(context.Context) (*domain.BulkOperation, error) {
	if g.bulkStartErr != nil {
		return nil, g.bulkStartErr
	}
	return &domain.BulkOperation{ID: "gid://shopify/BulkOperation/1", Status: domain.BulkOperationCreated}, nil
}

func (g *fakeGateway) BulkOperation(_ context.Context, id string) (*domain.BulkOperation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.polls
	if idx >= len(g.bulkStatuses) {
		idx = len(g.bulkStatuses) - 1
	}
	g.polls++
	op := g.bulkStatuses[idx]
	op.ID = id
	return &op, nil
}

func (g *fakeGateway) FindCustomerIDByName(_ context.Context, name string) (string, bool, error) {
	if g.customerErr != nil {
		return "", false, g.customerErr
	}
	id, ok := g.customers[name]
	return id, ok, nil
}

func (g *fakeGateway) ProductVariant(_ context.Context, id string) (*LiveVariant, error) {
	if g.variantErr != nil {
		return nil, g.variantErr
	}
	return g.variants[id], nil
}

func (g *fakeGateway) CreateDraftOrder(_ context.Context, req domain.DraftOrderRequest) (*DraftOrderRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.draftOrders = append(g.draftOrders, req)
	if g.draftErr != nil {
		return nil, g.draftErr
	}
	return &DraftOrderRef{ID: "gid://shopify/DraftOrder/900", Name: "#D900"}, nil
}

type fakeFetcher struct {
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchBulkResult(context.Context, string) (io.ReadCloser, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
