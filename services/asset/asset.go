package asset

import (
	"context"
	"errors"
	"fmt"

	assetModel "asset-booking/models/asset"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("asset not found")

// Service is the availability store the booking engine reads and
// cascades writes into. Only booking transitions may flip an asset's
// status to reflect booking-driven holds.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

func (s *Service) Create(ctx context.Context, a *assetModel.Asset) error {
	if a.Status == "" {
		a.Status = assetModel.StatusAvailable
	}
	return s.DB.WithContext(ctx).Create(a).Error
}

func (s *Service) CreateKit(ctx context.Context, k *assetModel.Kit) error {
	if k.Status == "" {
		k.Status = assetModel.StatusAvailable
	}
	return s.DB.WithContext(ctx).Create(k).Error
}

func (s *Service) Get(ctx context.Context, orgID uint, id string) (*assetModel.Asset, error) {
	var a assetModel.Asset
	err := s.DB.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load asset %s: %w", id, err)
	}
	return &a, nil
}

func (s *Service) List(ctx context.Context, orgID uint) ([]assetModel.Asset, error) {
	var list []assetModel.Asset
	err := s.DB.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (s *Service) ByIDs(ctx context.Context, orgID uint, ids []string) ([]assetModel.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []assetModel.Asset
	err := s.DB.WithContext(ctx).
		Where("organization_id = ? AND id IN ?", orgID, ids).
		Find(&list).Error
	return list, err
}

func (s *Service) UpdateStatuses(ctx context.Context, ids []string, status assetModel.Status) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).
		Model(&assetModel.Asset{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (s *Service) UpdateKitStatuses(ctx context.Context, kitIDs []string, status assetModel.Status) error {
	if len(kitIDs) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).
		Model(&assetModel.Kit{}).
		Where("id IN ?", kitIDs).
		Update("status", status).Error
}
