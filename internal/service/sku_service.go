package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository"
	"github.com/saadsaiyed/pdf-to-shopify/pkg/errors"
)

// ShopNamer reports the current shop name
type ShopNamer interface {
	ShopName(ctx context.Context) (string, error)
}

type SKUService struct {
	shop   ShopNamer
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewSKUService creates a new SKU service
func NewSKUService(shop ShopNamer, repos *repository.Repositories, logger *zap.Logger) *SKUService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SKUService{
		shop:   shop,
		repos:  repos,
		logger: logger,
	}
}

// LookupSKU returns the cached variant for sku in the current shop
func (s *SKUService) LookupSKU(ctx context.Context, sku string) (*domain.CatalogEntry, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, &errors.ErrValidation{Message: "sku is required", Fields: map[string]string{"sku": "is required"}}
	}
	shopName, err := s.shop.ShopName(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.repos.Catalog.FindBySKU(ctx, sku, shopName)
	if err != nil {
		if _, isNotFound := err.(*errors.ErrNotFound); !isNotFound {
			s.logger.Warn("Error looking up SKU", zap.String("sku", sku), zap.String("shop_name", shopName), zap.Error(err))
		}
		return nil, err
	}
	return entry, nil
}

// CatalogSize returns how many variants are cached for the current shop
func (s *SKUService) CatalogSize(ctx context.Context) (string, int, error) {
	shopName, err := s.shop.ShopName(ctx)
	if err != nil {
		return "", 0, err
	}
	n, err := s.repos.Catalog.CountByShop(ctx, shopName)
	if err != nil {
		return "", 0, err
	}
	return shopName, n, nil
}
