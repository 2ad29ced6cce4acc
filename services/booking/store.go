package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingModel "asset-booking/models/booking"

	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Create(ctx context.Context, b *bookingModel.Booking) error {
	// The asset rows already exist; only the join rows are written.
	return s.DB.WithContext(ctx).Omit("Assets.*").Create(b).Error
}

func (s *GormStore) Get(ctx context.Context, orgID, id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := s.DB.WithContext(ctx).
		Preload("Assets").
		Preload("Creator").
		Preload("CustodianUser").
		Preload("CustodianTeamMember").
		Preload("PartialCheckins").
		Where("organization_id = ?", orgID).
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load booking %d: %w", id, err)
	}
	return &b, nil
}

func (s *GormStore) List(ctx context.Context, orgID uint, q ListQuery) ([]bookingModel.Booking, error) {
	tx := s.DB.WithContext(ctx).
		Preload("Assets").
		Preload("CustodianUser").
		Preload("CustodianTeamMember").
		Where("organization_id = ?", orgID)

	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}
	if q.VisibleTo != 0 {
		tx = tx.Where("creator_id = ? OR custodian_user_id = ?", q.VisibleTo, q.VisibleTo)
	}
	if q.WindowFrom != nil && q.WindowTo != nil {
		tx = tx.Where("booked_from <= ? AND booked_to >= ?", *q.WindowTo, *q.WindowFrom)
	}

	var list []bookingModel.Booking
	if err := tx.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return list, nil
}

// UpdateStatusIf is the conditional write every transition rides on: the
// row is only touched while it still carries the expected status.
func (s *GormStore) UpdateStatusIf(ctx context.Context, id uint, from, to bookingModel.BookingStatus, set map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range set {
		values[k] = v
	}
	res := s.DB.WithContext(ctx).
		Model(&bookingModel.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Updates(ctx context.Context, id uint, set map[string]interface{}) error {
	return s.DB.WithContext(ctx).
		Model(&bookingModel.Booking{}).
		Where("id = ?", id).
		Updates(set).Error
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM booking_assets WHERE booking_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", id).Delete(&bookingModel.PartialCheckin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", id).Delete(&bookingModel.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&bookingModel.Booking{}, id).Error
	})
}

func (s *GormStore) AddAssets(ctx context.Context, id uint, assetIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, assetID := range assetIDs {
			err := tx.Exec(
				"INSERT INTO booking_assets (booking_id, asset_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				id, assetID,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) RemoveAssets(ctx context.Context, id uint, assetIDs []string) error {
	return s.DB.WithContext(ctx).
		Exec("DELETE FROM booking_assets WHERE booking_id = ? AND asset_id IN ?", id, assetIDs).Error
}

func (s *GormStore) AppendPartialCheckin(ctx context.Context, rec *bookingModel.PartialCheckin) error {
	return s.DB.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) PartialCheckins(ctx context.Context, bookingID uint) ([]bookingModel.PartialCheckin, error) {
	var records []bookingModel.PartialCheckin
	err := s.DB.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// Overlapping implements the inclusive overlap test
// (other.from <= to AND other.to >= from) against the active statuses,
// excluding the booking itself.
func (s *GormStore) Overlapping(ctx context.Context, orgID uint, assetIDs []string, from, to time.Time, excludeID uint) ([]bookingModel.Booking, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	var list []bookingModel.Booking
	err := s.DB.WithContext(ctx).
		Preload("Assets").
		Distinct("bookings.*").
		Joins("JOIN booking_assets ba ON ba.booking_id = bookings.id").
		Where("bookings.organization_id = ?", orgID).
		Where("bookings.status IN ?", bookingModel.ActiveBookingStatuses()).
		Where("bookings.id <> ?", excludeID).
		Where("ba.asset_id IN ?", assetIDs).
		Where("bookings.booked_from <= ? AND bookings.booked_to >= ?", to, from).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ActiveHolders resolves which of assetIDs are held by another active
// booking right now. An asset already returned to that other booking's
// ledger does not count as held there.
func (s *GormStore) ActiveHolders(ctx context.Context, assetIDs []string, excludeID uint) (map[string]uint, error) {
	out := make(map[string]uint)
	if len(assetIDs) == 0 {
		return out, nil
	}

	var holders []bookingModel.Booking
	err := s.DB.WithContext(ctx).
		Preload("Assets").
		Preload("PartialCheckins").
		Distinct("bookings.*").
		Joins("JOIN booking_assets ba ON ba.booking_id = bookings.id").
		Where("bookings.status IN ?", bookingModel.ActiveBookingStatuses()).
		Where("bookings.id <> ?", excludeID).
		Where("ba.asset_id IN ?", assetIDs).
		Find(&holders).Error
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		wanted[id] = struct{}{}
	}
	for i := range holders {
		returned := returnedSet(holders[i].PartialCheckins)
		for _, a := range holders[i].Assets {
			if _, ok := wanted[a.ID]; !ok {
				continue
			}
			if _, ok := returned[a.ID]; ok {
				continue
			}
			out[a.ID] = holders[i].ID
		}
	}
	return out, nil
}
