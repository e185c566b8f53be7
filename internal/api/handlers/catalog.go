package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
)

// CatalogReader is the read side of the catalog cache
type CatalogReader interface {
	LookupSKU(ctx context.Context, sku string) (*domain.CatalogEntry, error)
	CatalogSize(ctx context.Context) (string, int, error)
}

// HandleGetVariantBySKU handles GET /v1/catalog/variants?sku= (current shop only)
func HandleGetVariantBySKU(catalog CatalogReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := catalog.LookupSKU(c.Request.Context(), c.Query("sku"))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"variant_id":           entry.VariantID,
			"shop_name":            entry.ShopName,
			"sku":                  entry.SKU,
			"product_id":           entry.ProductID,
			"product_title":        entry.ProductTitle,
			"title":                entry.Title,
			"price":                entry.Price.StringFixed(2),
			"inventory_quantity":   entry.InventoryQuantity,
			"inventory_policy":     entry.InventoryPolicy,
			"inventory_management": entry.InventoryManagement,
			"weight":               entry.Weight,
			"weight_unit":          entry.WeightUnit,
			"available_for_sale":   entry.AvailableForSale,
			"barcode":              entry.Barcode,
			"synced_at":            entry.SyncedAt,
		})
	}
}

// HandleGetCatalogStats handles GET /v1/catalog
func HandleGetCatalogStats(catalog CatalogReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopName, n, err := catalog.CatalogSize(c.Request.Context())
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shop_name": shopName, "variants": n})
	}
}
