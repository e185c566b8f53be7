package service

import (
	"context"
	stderrors "errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

// OrderGateway is the part of the Shopify gateway the composer needs
type OrderGateway interface {
	ProductVariant(ctx context.Context, id string) (*LiveVariant, error)
	CreateDraftOrder(ctx context.Context, req domain.DraftOrderRequest) (*DraftOrderRef, error)
}

// OrderRequest is one extracted purchase order to resolve against a shop's catalog
type OrderRequest struct {
	Pairs      []domain.LineItemPair
	ShopName   string
	CustomerID string
	PONumber   string
}

// OrderedProduct describes a resolved line for the caller
type OrderedProduct struct {
	SKU               string          `json:"sku"`
	VariantID         string          `json:"variant_id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	InventoryQuantity int             `json:"inventory_quantity"`
	Live              bool            `json:"live"` // false when the cached entry was used
}

// OrderResult is the outcome of ResolveAndOrder. DraftOrderID is empty when nothing resolved.
type OrderResult struct {
	DraftOrderID   string                  `json:"draft_order_id,omitempty"`
	DraftOrderName string                  `json:"draft_order_name,omitempty"`
	LineItems      []domain.DraftOrderLine `json:"line_items"`
	Products       []OrderedProduct        `json:"products"`
	Unresolved     []string                `json:"unresolved"`
	Placeholders   int                     `json:"placeholders"`
}

type OrderComposer struct {
	catalog repository.CatalogRepository
	gateway OrderGateway
	cfg     config.OrderConfig
	logger  *zap.Logger
}

// NewOrderComposer creates a new order composer
func NewOrderComposer(catalog repository.CatalogRepository, gateway OrderGateway, cfg config.OrderConfig, logger *zap.Logger) *OrderComposer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderComposer{catalog: catalog, gateway: gateway, cfg: cfg, logger: logger}
}

// ResolveAndOrder looks every code up in the shop's catalog and places one draft order
// for the hits. Lookups and gateway calls run one at a time.
func (c *OrderComposer) ResolveAndOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	result := &OrderResult{
		LineItems:  []domain.DraftOrderLine{},
		Products:   []OrderedProduct{},
		Unresolved: []string{},
	}

	for i, pair := range req.Pairs {
		if pair.Code == nil {
			result.Placeholders++
			continue
		}
		code := *pair.Code

		entry, err := c.catalog.FindBySKU(ctx, code, req.ShopName)
		if err != nil {
			var notFound *errors.ErrNotFound
			if stderrors.As(err, &notFound) {
				c.logger.Info("Item code not in catalog", zap.String("sku", code), zap.String("shop_name", req.ShopName), zap.Int("position", i))
				result.Unresolved = append(result.Unresolved, code)
				continue
			}
			return nil, err
		}
		if pair.Quantity == nil {
			c.logger.Warn("Item code has no quantity", zap.String("sku", code), zap.Int("position", i))
			result.Unresolved = append(result.Unresolved, code)
			continue
		}
		qty := *pair.Quantity

		result.LineItems = append(result.LineItems, domain.DraftOrderLine{VariantID: entry.VariantID, Quantity: qty})
		result.Products = append(result.Products, c.describe(ctx, entry, qty))
	}

	if len(result.LineItems) == 0 {
		c.logger.Info("No line items resolved; draft order not created",
			zap.String("po_number", req.PONumber),
			zap.Int("unresolved", len(result.Unresolved)),
			zap.Int("placeholders", result.Placeholders),
		)
		return result, nil
	}

	draft := domain.DraftOrderRequest{
		CustomerID: req.CustomerID,
		PONumber:   req.PONumber,
		LineItems:  result.LineItems,
		Note:       "PO Number: " + req.PONumber,
	}
	if c.cfg.ShippingTitle != "" {
		draft.ShippingLine = &domain.ShippingLine{Title: c.cfg.ShippingTitle, Price: c.cfg.ShippingPrice}
	}

	ref, err := c.gateway.CreateDraftOrder(ctx, draft)
	if err != nil {
		return nil, err
	}
	result.DraftOrderID = ref.ID
	result.DraftOrderName = ref.Name
	return result, nil
}

// describe prefers live variant data and falls back to the cached entry
func (c *OrderComposer) describe(ctx context.Context, entry *domain.CatalogEntry, qty int) OrderedProduct {
	p := OrderedProduct{
		SKU:               entry.SKU,
		VariantID:         entry.VariantID,
		Title:             entry.Title,
		Price:             entry.Price,
		Quantity:          qty,
		InventoryQuantity: entry.InventoryQuantity,
	}
	if entry.ProductTitle != nil && *entry.ProductTitle != "" {
		p.Title = *entry.ProductTitle + " - " + entry.Title
	}

	live, err := c.gateway.ProductVariant(ctx, entry.VariantID)
	if err != nil {
		c.logger.Warn("Live variant lookup failed; using cached entry", zap.String("variant_id", entry.VariantID), zap.Error(err))
		return p
	}
	if live == nil {
		c.logger.Warn("Variant no longer exists in Shopify; using cached entry", zap.String("variant_id", entry.VariantID))
		return p
	}
	p.Price = live.Price
	p.InventoryQuantity = live.InventoryQuantity
	if entry.ProductTitle == nil || *entry.ProductTitle == "" {
		p.Title = live.Title
	}
	p.Live = true
	return p
}
