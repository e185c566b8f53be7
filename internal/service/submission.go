package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/extract"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

// SubmissionGateway is the part of the Shopify gateway submissions need
type SubmissionGateway interface {
	ShopName(ctx context.Context) (string, error)
	FindCustomerIDByName(ctx context.Context, name string) (string, bool, error)
}

// OrderPlacer resolves pairs and places the draft order
type OrderPlacer interface {
	ResolveAndOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
}

// PDFSubmission is an uploaded purchase-order PDF
type PDFSubmission struct {
	CustomerName string
	PONumber     string // may be empty when Filename carries it
	Filename     string
	Content      io.ReaderAt
	Size         int64
}

// ItemListSubmission is a typed list of codes with parallel quantities
type ItemListSubmission struct {
	CustomerName string
	PONumber     string
	LineItems    []string
	Quantities   []string
}

// SubmissionResult is returned to the submitter
type SubmissionResult struct {
	SubmissionID *uuid.UUID                 `json:"submission_id,omitempty"` // nil when the audit row could not be written
	ShopName     string                     `json:"shop_name"`
	CustomerID   string                     `json:"customer_id"`
	PONumber     string                     `json:"po_number"`
	Order        *OrderResult               `json:"order"`
	Anomalies    []domain.ExtractionAnomaly `json:"anomalies"`
}

type SubmissionService struct {
	gateway   SubmissionGateway
	orders    OrderPlacer
	extractor *extract.Extractor
	repos     *repository.Repositories
	cfg       config.OrderConfig
	logger    *zap.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(gateway SubmissionGateway, orders OrderPlacer, extractor *extract.Extractor, repos *repository.Repositories, cfg config.OrderConfig, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		gateway:   gateway,
		orders:    orders,
		extractor: extractor,
		repos:     repos,
		cfg:       cfg,
		logger:    logger,
	}
}

// SubmitPDF extracts line items from the PDF text layer and orders them
func (s *SubmissionService) SubmitPDF(ctx context.Context, sub PDFSubmission) (*SubmissionResult, error) {
	fields := map[string]string{}
	customerName := strings.TrimSpace(sub.CustomerName)
	if customerName == "" {
		fields["customerName"] = "is required"
	}
	poNumber := strings.TrimSpace(sub.PONumber)
	if poNumber == "" {
		if derived, ok := extract.PONumberFromFilename(sub.Filename); ok {
			poNumber = derived
		} else {
			fields["poNumber"] = "is required"
		}
	}
	if sub.Content == nil || sub.Size <= 0 {
		fields["pdfFile"] = "is required"
	}
	if len(fields) > 0 {
		return nil, &errors.ErrValidation{Message: "invalid PDF submission", Fields: fields}
	}

	text, err := extract.TextFromPDF(sub.Content, sub.Size)
	if err != nil {
		s.logger.Warn("Failed to read PDF", zap.String("filename", sub.Filename), zap.Error(err))
		return nil, &errors.ErrValidation{
			Message: "could not read PDF",
			Fields:  map[string]string{"pdfFile": "is not a readable PDF"},
		}
	}

	extracted := s.extractor.Extract(text)
	s.logger.Info("Extracted line items from PDF",
		zap.String("filename", sub.Filename),
		zap.String("po_number", poNumber),
		zap.Int("pairs", len(extracted.Pairs)),
		zap.Int("anomalies", len(extracted.Anomalies)),
	)
	return s.submit(ctx, domain.SubmissionSourcePDF, customerName, poNumber, extracted.Pairs, extracted.Anomalies)
}

// SubmitItemList orders a typed list of codes and quantities
func (s *SubmissionService) SubmitItemList(ctx context.Context, sub ItemListSubmission) (*SubmissionResult, error) {
	fields := map[string]string{}
	customerName := strings.TrimSpace(sub.CustomerName)
	if customerName == "" {
		fields["customer_name"] = "is required"
	}
	poNumber := strings.TrimSpace(sub.PONumber)
	if poNumber == "" {
		fields["po_number"] = "is required"
	}
	if len(sub.LineItems) == 0 {
		fields["line_items"] = "at least one item is required"
	} else if len(sub.LineItems) != len(sub.Quantities) {
		fields["quantity"] = fmt.Sprintf("expected %d quantities, got %d", len(sub.LineItems), len(sub.Quantities))
	}
	if len(fields) > 0 {
		return nil, &errors.ErrValidation{Message: "invalid item list submission", Fields: fields}
	}

	pairs := make([]domain.LineItemPair, len(sub.LineItems))
	for i, raw := range sub.LineItems {
		code := strings.TrimSpace(raw)
		if code == "" {
			fields[fmt.Sprintf("line_items[%d]", i)] = "is empty"
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(sub.Quantities[i]))
		if err != nil || qty < 1 {
			fields[fmt.Sprintf("quantity[%d]", i)] = "must be a positive integer"
			continue
		}
		pairs[i] = domain.LineItemPair{Code: &code, Quantity: &qty}
	}
	if len(fields) > 0 {
		return nil, &errors.ErrValidation{Message: "invalid item list submission", Fields: fields}
	}

	return s.submit(ctx, domain.SubmissionSourceItemList, customerName, poNumber, pairs, nil)
}

func (s *SubmissionService) submit(ctx context.Context, source domain.SubmissionSource, customerName, poNumber string, pairs []domain.LineItemPair, anomalies []domain.ExtractionAnomaly) (*SubmissionResult, error) {
	shopName, err := s.gateway.ShopName(ctx)
	if err != nil {
		return nil, err
	}
	customerID, err := s.resolveCustomer(ctx, customerName)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.ResolveAndOrder(ctx, OrderRequest{
		Pairs:      pairs,
		ShopName:   shopName,
		CustomerID: customerID,
		PONumber:   poNumber,
	})
	if err != nil {
		s.logger.Error("Failed to place order for submission", zap.String("po_number", poNumber), zap.Error(err))
		return nil, err
	}

	record := &domain.Submission{
		ShopName:        shopName,
		CustomerName:    customerName,
		CustomerID:      customerID,
		PONumber:        poNumber,
		Source:          source,
		LineItemCount:   len(order.LineItems),
		UnresolvedCodes: order.Unresolved,
	}
	if order.DraftOrderID != "" {
		id := order.DraftOrderID
		record.DraftOrderID = &id
	}
	var submissionID *uuid.UUID
	if err := s.repos.Submission.Create(ctx, record); err != nil {
		// the draft order exists in Shopify already; losing the audit row is not fatal
		s.logger.Warn("Failed to record submission", zap.String("po_number", poNumber), zap.Error(err))
	} else {
		submissionID = &record.ID
	}

	if anomalies == nil {
		anomalies = []domain.ExtractionAnomaly{}
	}
	return &SubmissionResult{
		SubmissionID: submissionID,
		ShopName:     shopName,
		CustomerID:   customerID,
		PONumber:     poNumber,
		Order:        order,
		Anomalies:    anomalies,
	}, nil
}

// resolveCustomer finds the Shopify customer by name, then falls back to the configured default
func (s *SubmissionService) resolveCustomer(ctx context.Context, name string) (string, error) {
	id, ok, err := s.gateway.FindCustomerIDByName(ctx, name)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}
	if s.cfg.DefaultCustomerID != "" {
		s.logger.Info("No Shopify customer matches name; using default customer", zap.String("customer_name", name))
		return s.cfg.DefaultCustomerID, nil
	}
	return "", &errors.ErrValidation{
		Message: "unknown customer",
		Fields:  map[string]string{"customer_name": "no Shopify customer matches " + strconv.Quote(name)},
	}
}

// ListSubmissions returns the current shop's most recent submissions
func (s *SubmissionService) ListSubmissions(ctx context.Context, limit int) ([]*domain.Submission, error) {
	shopName, err := s.gateway.ShopName(ctx)
	if err != nil {
		return nil, err
	}
	return s.repos.Submission.ListRecent(ctx, shopName, limit)
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	return s.repos.Submission.GetByID(ctx, id)
}
