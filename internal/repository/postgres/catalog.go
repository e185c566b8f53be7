package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

type catalogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new catalog entry repository
func NewCatalogRepository(db *sql.DB, logger *zap.Logger) *catalogRepository {
	return &catalogRepository{db: db, logger: logger}
}

const catalogColumns = `variant_id, shop_name, sku, product_id, product_title, title, price,
		inventory_quantity, inventory_policy, inventory_management, weight, weight_unit,
		available_for_sale, barcode, synced_at, created_at, updated_at`

// FindBySKU returns the most recently synced variant with this SKU in the shop
func (r *catalogRepository) FindBySKU(ctx context.Context, sku, shopName string) (*domain.CatalogEntry, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_entries
		WHERE sku = $1 AND shop_name = $2
		ORDER BY synced_at DESC
		LIMIT 1
	`
	var e domain.CatalogEntry
	var productID, productTitle, management, weightUnit, barcode sql.NullString
	var weight sql.NullFloat64
	var policy string
	err := r.db.QueryRowContext(ctx, query, sku, shopName).Scan(
		&e.VariantID, &e.ShopName, &e.SKU, &productID, &productTitle, &e.Title, &e.Price,
		&e.InventoryQuantity, &policy, &management, &weight, &weightUnit,
		&e.AvailableForSale, &barcode, &e.SyncedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "catalog_entry", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get catalog entry by SKU", zap.Error(err), zap.String("sku", sku), zap.String("shop_name", shopName))
		return nil, err
	}
	e.InventoryPolicy = domain.InventoryPolicy(policy)
	if productID.Valid {
		e.ProductID = &productID.String
	}
	if productTitle.Valid {
		e.ProductTitle = &productTitle.String
	}
	if management.Valid {
		e.InventoryManagement = &management.String
	}
	if weight.Valid {
		e.Weight = &weight.Float64
	}
	if weightUnit.Valid {
		e.WeightUnit = &weightUnit.String
	}
	if barcode.Valid {
		e.Barcode = &barcode.String
	}
	return &e, nil
}

// Upsert inserts or refreshes one variant keyed by (shop_name, variant_id)
func (r *catalogRepository) Upsert(ctx context.Context, e *domain.CatalogEntry) error {
	query := `
		INSERT INTO catalog_entries (` + catalogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (shop_name, variant_id) DO UPDATE SET
			sku = EXCLUDED.sku,
			product_id = EXCLUDED.product_id,
			product_title = EXCLUDED.product_title,
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			inventory_quantity = EXCLUDED.inventory_quantity,
			inventory_policy = EXCLUDED.inventory_policy,
			inventory_management = EXCLUDED.inventory_management,
			weight = EXCLUDED.weight,
			weight_unit = EXCLUDED.weight_unit,
			available_for_sale = EXCLUDED.available_for_sale,
			barcode = EXCLUDED.barcode,
			synced_at = EXCLUDED.synced_at,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.SyncedAt.IsZero() {
		e.SyncedAt = now
	}
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		e.VariantID, e.ShopName, e.SKU, e.ProductID, e.ProductTitle, e.Title, e.Price,
		e.InventoryQuantity, string(e.InventoryPolicy), e.InventoryManagement, e.Weight, e.WeightUnit,
		e.AvailableForSale, e.Barcode, e.SyncedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert catalog entry", zap.Error(err), zap.String("variant_id", e.VariantID), zap.String("shop_name", e.ShopName))
		return err
	}
	return nil
}

func (r *catalogRepository) CountByShop(ctx context.Context, shopName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_entries WHERE shop_name = $1`, shopName).Scan(&n)
	if err != nil {
		r.logger.Error("Failed to count catalog entries", zap.Error(err), zap.String("shop_name", shopName))
		return 0, err
	}
	return n, nil
}
