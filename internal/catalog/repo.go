package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

// Repository defines read access over the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category enums.ProductCategory) ([]models.Product, error)
	ListSizeTiers(ctx context.Context) ([]models.SizeTier, error)
	ListSizeTiersForProduct(ctx context.Context, productType string, productID uuid.UUID) ([]models.SizeTier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("SizeTiers").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("SizeTiers").
		Order("category ASC").
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListByCategory(ctx context.Context, category enums.ProductCategory) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListSizeTiers(ctx context.Context) ([]models.SizeTier, error) {
	var tiers []models.SizeTier
	err := r.db.WithContext(ctx).
		Order("size_label ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repository) ListSizeTiersForProduct(ctx context.Context, productType string, productID uuid.UUID) ([]models.SizeTier, error) {
	var tiers []models.SizeTier
	err := r.db.WithContext(ctx).
		Where("product_type = ? OR product_id = ?", productType, productID).
		Order("size_label ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
