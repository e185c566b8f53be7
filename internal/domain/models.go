package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogEntry is a cached Shopify product variant, scoped to one shop
type CatalogEntry struct {
	VariantID           string // Shopify GID, e.g. gid://shopify/ProductVariant/123
	ShopName            string
	SKU                 string
	ProductID           *string
	ProductTitle        *string
	Title               string
	Price               decimal.Decimal
	InventoryQuantity   int
	InventoryPolicy     InventoryPolicy
	InventoryManagement *string
	Weight              *float64
	WeightUnit          *string
	AvailableForSale    bool
	Barcode             *string
	SyncedAt            time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// LineItemPair is one extracted (code, quantity) position.
// Code is nil for a quantity that had no preceding item code;
// Quantity is nil for an item code that was never followed by a quantity.
type LineItemPair struct {
	Code     *string `json:"code"`
	Quantity *int    `json:"quantity"`
}

// ExtractionAnomaly records a token sequence the extractor could not pair cleanly
type ExtractionAnomaly struct {
	Kind      AnomalyKind `json:"kind"`
	Position  int         `json:"position"`
	Token     string      `json:"token"`
	PriorCode *string     `json:"prior_code,omitempty"`
}

// DraftOrderLine is one variant line of a draft order
type DraftOrderLine struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// ShippingLine is the flat shipping charge attached to draft orders
type ShippingLine struct {
	Title string
	Price decimal.Decimal
}

// DraftOrderRequest is built once per submission and not modified after it is sent
type DraftOrderRequest struct {
	CustomerID   string
	PONumber     string
	LineItems    []DraftOrderLine
	ShippingLine *ShippingLine
	Note         string
}

// BulkOperation is the status snapshot of a Shopify bulk export
type BulkOperation struct {
	ID             string              `json:"id"`
	Status         BulkOperationStatus `json:"status"`
	ErrorCode      *string             `json:"errorCode"`
	ObjectCount    string              `json:"objectCount"`
	URL            *string             `json:"url"`
	PartialDataURL *string             `json:"partialDataUrl"`
}

// SyncRun is the audit row for one catalog sync
type SyncRun struct {
	ID              uuid.UUID
	ShopName        *string
	BulkOperationID *string
	Status          SyncRunStatus
	RecordsSeen     int
	EntriesUpserted int
	LinesSkipped    int
	Error           *string
	StartedAt       time.Time
	FinishedAt      *time.Time
}

// Submission is the audit row for one purchase-order submission
type Submission struct {
	ID              uuid.UUID
	ShopName        string
	CustomerName    string
	CustomerID      string
	PONumber        string
	Source          SubmissionSource
	DraftOrderID    *string
	LineItemCount   int
	UnresolvedCodes []string
	CreatedAt       time.Time
}
