package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/shopify"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

// GraphQLExecutor is the transport half of the Shopify client
type GraphQLExecutor interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error)
}

// ShopifyGateway wraps the Admin API calls this service makes. Every failure,
// transport or userErrors, comes back as *errors.GatewayError.
type ShopifyGateway struct {
	client GraphQLExecutor
	logger *zap.Logger
}

// NewShopifyGateway creates a new Shopify gateway
func NewShopifyGateway(client GraphQLExecutor, logger *zap.Logger) *ShopifyGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopifyGateway{client: client, logger: logger}
}

// LiveVariant is the current Shopify view of a variant
type LiveVariant struct {
	ID                string
	SKU               string
	Title             string
	Price             decimal.Decimal
	InventoryQuantity int
	AvailableForSale  bool
}

// DraftOrderRef identifies a created draft order
type DraftOrderRef struct {
	ID   string
	Name string
}

func (g *ShopifyGateway) execute(ctx context.Context, op, query string, variables map[string]interface{}, out interface{}) error {
	resp, err := g.client.Execute(ctx, query, variables)
	if err != nil {
		return &errors.GatewayError{Op: op, Err: err}
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return &errors.GatewayError{Op: op, Message: "failed to parse response", Err: err}
	}
	return nil
}

// ShopName returns the shop name used to partition the catalog
func (g *ShopifyGateway) ShopName(ctx context.Context) (string, error) {
	var result struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := g.execute(ctx, "shop", shopify.ShopNameQuery, nil, &result); err != nil {
		return "", err
	}
	if result.Shop.Name == "" {
		return "", &errors.GatewayError{Op: "shop", Message: "shop has no name"}
	}
	return result.Shop.Name, nil
}

// FindCustomerIDByName returns the GID of the first customer matching name.
// ok is false when Shopify has no match.
func (g *ShopifyGateway) FindCustomerIDByName(ctx context.Context, name string) (string, bool, error) {
	var result struct {
		Customers struct {
			Edges []struct {
				Node struct {
					ID          string `json:"id"`
					DisplayName string `json:"displayName"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"customers"`
	}
	vars := map[string]interface{}{"query": strings.TrimSpace(name)}
	if err := g.execute(ctx, "customers", shopify.CustomersByNameQuery, vars, &result); err != nil {
		return "", false, err
	}
	if len(result.Customers.Edges) == 0 {
		return "", false, nil
	}
	return result.Customers.Edges[0].Node.ID, true, nil
}

// ProductVariant fetches one variant by GID. A nil result with nil error means Shopify
// returned null for the id.
func (g *ShopifyGateway) ProductVariant(ctx context.Context, id string) (*LiveVariant, error) {
	var result struct {
		ProductVariant *struct {
			ID                string `json:"id"`
			Title             string `json:"title"`
			Price             string `json:"price"`
			SKU               string `json:"sku"`
			InventoryQuantity int    `json:"inventoryQuantity"`
			AvailableForSale  bool   `json:"availableForSale"`
		} `json:"productVariant"`
	}
	if err := g.execute(ctx, "productVariant", shopify.ProductVariantByIDQuery, map[string]interface{}{"id": id}, &result); err != nil {
		return nil, err
	}
	pv := result.ProductVariant
	if pv == nil {
		return nil, nil
	}
	price, err := decimal.NewFromString(pv.Price)
	if err != nil {
		return nil, &errors.GatewayError{Op: "productVariant", Message: fmt.Sprintf("invalid price %q", pv.Price), Err: err}
	}
	return &LiveVariant{
		ID:                pv.ID,
		SKU:               pv.SKU,
		Title:             pv.Title,
		Price:             price,
		InventoryQuantity: pv.InventoryQuantity,
		AvailableForSale:  pv.AvailableForSale,
	}, nil
}

// CreateDraftOrder sends one draftOrderCreate for req
func (g *ShopifyGateway) CreateDraftOrder(ctx context.Context, req domain.DraftOrderRequest) (*DraftOrderRef, error) {
	input := shopify.DraftOrderInput{
		LineItems: make([]shopify.DraftOrderLineItemInput, len(req.LineItems)),
	}
	for i, li := range req.LineItems {
		input.LineItems[i] = shopify.DraftOrderLineItemInput{VariantID: li.VariantID, Quantity: li.Quantity}
	}
	if req.CustomerID != "" {
		input.PurchasingEntity = &shopify.PurchasingEntityInput{CustomerID: req.CustomerID}
	}
	if req.Note != "" {
		note := req.Note
		input.Note = &note
	}
	if req.PONumber != "" {
		po := req.PONumber
		input.PoNumber = &po
	}
	if req.ShippingLine != nil {
		input.ShippingLine = &shopify.ShippingLineInput{
			Title: req.ShippingLine.Title,
			Price: req.ShippingLine.Price.StringFixed(2),
		}
	}

	var result struct {
		DraftOrderCreate struct {
			DraftOrder *struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"draftOrder"`
			UserErrors []errors.UserError `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}
	vars := map[string]interface{}{"input": input}
	if err := g.execute(ctx, "draftOrderCreate", shopify.DraftOrderCreateMutation, vars, &result); err != nil {
		return nil, err
	}
	if len(result.DraftOrderCreate.UserErrors) > 0 {
		return nil, &errors.GatewayError{Op: "draftOrderCreate", UserErrors: result.DraftOrderCreate.UserErrors}
	}
	if result.DraftOrderCreate.DraftOrder == nil {
		return nil, &errors.GatewayError{Op: "draftOrderCreate", Message: "no draft order returned"}
	}

	g.logger.Info("Draft order created",
		zap.String("draft_order_id", result.DraftOrderCreate.DraftOrder.ID),
		zap.String("po_number", req.PONumber),
		zap.Int("line_items", len(req.LineItems)),
	)
	return &DraftOrderRef{
		ID:   result.DraftOrderCreate.DraftOrder.ID,
		Name: result.DraftOrderCreate.DraftOrder.Name,
	}, nil
}

// StartBulkProductExport submits the product/variant export as a bulk operation
func (g *ShopifyGateway) StartBulkProductExport(ctx context.Context) (*domain.BulkOperation, error) {
	var result struct {
		BulkOperationRunQuery struct {
			BulkOperation *domain.BulkOperation `json:"bulkOperation"`
			UserErrors    []errors.UserError    `json:"userErrors"`
		} `json:"bulkOperationRunQuery"`
	}
	vars := map[string]interface{}{"query": shopify.BulkProductsQuery}
	if err := g.execute(ctx, "bulkOperationRunQuery", shopify.BulkOperationRunQueryMutation, vars, &result); err != nil {
		return nil, err
	}
	if len(result.BulkOperationRunQuery.UserErrors) > 0 {
		return nil, &errors.GatewayError{Op: "bulkOperationRunQuery", UserErrors: result.BulkOperationRunQuery.UserErrors}
	}
	if result.BulkOperationRunQuery.BulkOperation == nil || result.BulkOperationRunQuery.BulkOperation.ID == "" {
		return nil, &errors.GatewayError{Op: "bulkOperationRunQuery", Message: "no bulk operation returned"}
	}
	return result.BulkOperationRunQuery.BulkOperation, nil
}

// BulkOperation fetches the current status of a bulk operation
func (g *ShopifyGateway) BulkOperation(ctx context.Context, id string) (*domain.BulkOperation, error) {
	var result struct {
		Node *domain.BulkOperation `json:"node"`
	}
	if err := g.execute(ctx, "bulkOperation", shopify.BulkOperationStatusQuery, map[string]interface{}{"id": id}, &result); err != nil {
		return nil, err
	}
	if result.Node == nil {
		return nil, &errors.GatewayError{Op: "bulkOperation", Message: "bulk operation not found: " + id}
	}
	return result.Node, nil
}
