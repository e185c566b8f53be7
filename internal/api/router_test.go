package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/api/middleware"
	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/redis"
	"github.com/saadsaiyed/pdf-to-shopify/internal/service"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSubmitter struct {
	pdf       *service.PDFSubmission
	pdfBytes  []byte
	itemList  *service.ItemListSubmission
	err       error
	submitted []*domain.Submission
}

func (s *stubSubmitter) SubmitPDF(_ context.Context, sub service.PDFSubmission) (*service.SubmissionResult, error) {
	s.pdf = &sub
	if sub.Content != nil {
		s.pdfBytes, _ = io.ReadAll(io.NewSectionReader(sub.Content, 0, sub.Size))
	}
	if s.err != nil {
		return nil, s.err
	}
	if sub.Content == nil {
		return nil, &errors.ErrValidation{Message: "invalid PDF submission", Fields: map[string]string{"pdfFile": "is required"}}
	}
	return &service.SubmissionResult{PONumber: sub.PONumber, Order: &service.OrderResult{}}, nil
}

func (s *stubSubmitter) SubmitItemList(_ context.Context, sub service.ItemListSubmission) (*service.SubmissionResult, error) {
	s.itemList = &sub
	if s.err != nil {
		return nil, s.err
	}
	return &service.SubmissionResult{
		PONumber: sub.PONumber,
		Order: &service.OrderResult{
			DraftOrderID: "gid://shopify/DraftOrder/900",
			LineItems:    []domain.DraftOrderLine{{VariantID: "V1", Quantity: 3}},
			Unresolved:   []string{"A.B-222"},
		},
	}, nil
}

func (s *stubSubmitter) ListSubmissions(context.Context, int) ([]*domain.Submission, error) {
	return s.submitted, s.err
}

func (s *stubSubmitter) GetSubmission(_ context.Context, id uuid.UUID) (*domain.Submission, error) {
	for _, sub := range s.submitted {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "submission", ID: id.String()}
}

type stubCatalog struct {
	entries map[string]*domain.CatalogEntry
}

func (s *stubCatalog) LookupSKU(_ context.Context, sku string) (*domain.CatalogEntry, error) {
	if sku == "" {
		return nil, &errors.ErrValidation{Message: "sku is required"}
	}
	if e, ok := s.entries[sku]; ok {
		return e, nil
	}
	return nil, &errors.ErrNotFound{Resource: "catalog_entry", ID: sku}
}

func (s *stubCatalog) CatalogSize(context.Context) (string, int, error) {
	return "Acme", len(s.entries), nil
}

type stubSyncer struct {
	startErr error
	started  int
}

func (s *stubSyncer) StartSync(context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started++
	return nil
}

func (s *stubSyncer) ListRuns(context.Context, int) ([]*domain.SyncRun, error) {
	shop := "Acme"
	return []*domain.SyncRun{{ID: uuid.New(), ShopName: &shop, Status: domain.SyncRunCompleted, EntriesUpserted: 3}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		API:         config.APIConfig{MaxUploadBytes: 1 << 20},
	}
}

func newTestRouter(cfg *config.Config, sub *stubSubmitter, cat *stubCatalog, syncer *stubSyncer) *gin.Engine {
	return NewRouter(cfg, Services{
		Submissions: sub,
		Catalog:     cat,
		Sync:        syncer,
		Idempotency: redis.NewLocalLocker(),
	}, zap.NewNop())
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	router := newTestRouter(testConfig(), &stubSubmitter{}, &stubCatalog{}, &stubSyncer{})
	w := doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestSubmitItemList(t *testing.T) {
	sub := &stubSubmitter{}
	router := newTestRouter(testConfig(), sub, &stubCatalog{}, &stubSyncer{})

	w := doJSON(router, http.MethodPost, "/v1/submissions/items",
		`{"customer_name":"Jane Buyer","po_number":"4500123","line_items":["A.B-111","A.B-222"],"quantity":["3","5"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NotNil(t, sub.itemList)
	assert.Equal(t, []string{"A.B-111", "A.B-222"}, sub.itemList.LineItems)
	assert.Equal(t, []string{"3", "5"}, sub.itemList.Quantities)

	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "gid://shopify/DraftOrder/900", order["draft_order_id"])
	assert.Equal(t, []interface{}{"A.B-222"}, order["unresolved"])
}

func TestSubmitItemList_MissingFields(t *testing.T) {
	sub := &stubSubmitter{}
	router := newTestRouter(testConfig(), sub, &stubCatalog{}, &stubSyncer{})

	w := doJSON(router, http.MethodPost, "/v1/submissions/items", `{"customer_name":"Jane Buyer"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Nil(t, sub.itemList, "service is not called")
}

func TestSubmitItemList_ErrorMapping(t *testing.T) {
	body := `{"customer_name":"x","po_number":"1","line_items":["A.B-1"],"quantity":["1"]}`

	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{
			name: "validation",
			err:  &errors.ErrValidation{Message: "unknown customer", Fields: map[string]string{"customer_name": "no match"}},
			want: http.StatusUnprocessableEntity, message: "unknown customer",
		},
		{
			name: "gateway",
			err:  &errors.GatewayError{Op: "draftOrderCreate", Message: "status 500, body: secret internals"},
			want: http.StatusBadGateway, message: "error processing request",
		},
		{
			name: "internal",
			err:  io.ErrUnexpectedEOF,
			want: http.StatusInternalServerError, message: "error processing request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(testConfig(), &stubSubmitter{err: tt.err}, &stubCatalog{}, &stubSyncer{})
			w := doJSON(router, http.MethodPost, "/v1/submissions/items", body)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.message, decode(t, w)["error"])
			assert.NotContains(t, w.Body.String(), "secret internals")
		})
	}
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("pdfFile", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/submissions/pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmitPDF(t *testing.T) {
	sub := &stubSubmitter{}
	router := newTestRouter(testConfig(), sub, &stubCatalog{}, &stubSyncer{})

	content := []byte("%PDF-1.4 fake")
	req := multipartRequest(t, map[string]string{"customerName": "Jane Buyer", "poNumber": "4500123"}, "Purchase Order 4500123.pdf", content)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, sub.pdf)
	assert.Equal(t, "Jane Buyer", sub.pdf.CustomerName)
	assert.Equal(t, "4500123", sub.pdf.PONumber)
	assert.Equal(t, "Purchase Order 4500123.pdf", sub.pdf.Filename)
	assert.Equal(t, int64(len(content)), sub.pdf.Size)
	assert.Equal(t, content, sub.pdfBytes)
}

func TestSubmitPDF_MissingFile(t *testing.T) {
	sub := &stubSubmitter{}
	router := newTestRouter(testConfig(), sub, &stubCatalog{}, &stubSyncer{})

	req := multipartRequest(t, map[string]string{"customerName": "Jane Buyer"}, "", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "pdfFile")
}

func TestCatalogRoutes(t *testing.T) {
	cat := &stubCatalog{entries: map[string]*domain.CatalogEntry{
		"A.B-111": {VariantID: "V1", ShopName: "Acme", SKU: "A.B-111", Price: decimal.RequireFromString("1.5")},
	}}
	router := newTestRouter(testConfig(), &stubSubmitter{}, cat, &stubSyncer{})

	w := doJSON(router, http.MethodGet, "/v1/catalog/variants?sku=A.B-111", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "V1", body["variant_id"])
	assert.Equal(t, "1.50", body["price"])

	w = doJSON(router, http.MethodGet, "/v1/catalog/variants?sku=A.B-999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/v1/catalog/variants", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodGet, "/v1/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["variants"])
}

func TestSyncRoutes(t *testing.T) {
	syncer := &stubSyncer{}
	router := newTestRouter(testConfig(), &stubSubmitter{}, &stubCatalog{}, syncer)

	w := doJSON(router, http.MethodPost, "/v1/catalog/sync", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, syncer.started)

	syncer.startErr = &errors.ErrConflict{Message: "catalog sync already in progress"}
	w = doJSON(router, http.MethodPost, "/v1/catalog/sync", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodGet, "/v1/catalog/sync/runs", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "completed", data[0].(map[string]interface{})["status"])
}

func TestSubmissionRoutes(t *testing.T) {
	id := uuid.New()
	sub := &stubSubmitter{submitted: []*domain.Submission{{ID: id, ShopName: "Acme", PONumber: "1", Source: domain.SubmissionSourcePDF}}}
	router := newTestRouter(testConfig(), sub, &stubCatalog{}, &stubSyncer{})

	w := doJSON(router, http.MethodGet, "/v1/submissions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = doJSON(router, http.MethodGet, "/v1/submissions/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf", decode(t, w)["source"])

	w = doJSON(router, http.MethodGet, "/v1/submissions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/v1/submissions/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestV1RequiresAPIKeyWhenConfigured(t *testing.T) {
	hash, err := middleware.HashAPIKey("s3cret-key")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.API.AdminKeyHash = hash
	router := newTestRouter(cfg, &stubSubmitter{}, &stubCatalog{}, &stubSyncer{})

	w := doJSON(router, http.MethodGet, "/v1/catalog", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
	req.Header.Set("Authorization", "Bearer s3cret-key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}
