package asset

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/pkg/apperr"
)

var ErrAssetNotFound = apperr.New(apperr.KindNotFound, "ASSET_NOT_FOUND", "Asset not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *Asset) error {
	if a.Images == nil {
		a.Images = []string{}
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Asset, error) {
	var a Asset
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("get asset %d: %w", id, err)
	}
	return &a, nil
}

func (r *Repository) Summaries(ctx context.Context, ids []int64) (map[int64]domain.AssetSummary, error) {
	out := make(map[int64]domain.AssetSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var assets []Asset
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("load asset summaries: %w", err)
	}
	for i := range assets {
		out[assets[i].ID] = assets[i].Summary()
	}
	return out, nil
}
