package note

import (
	"context"
	"encoding/json"

	bookingModel "asset-booking/models/booking"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service appends audit notes to bookings. Notes are never updated or
// deleted; they are the booking's human-readable history.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// RecordNote appends one audit line. actorID is zero for system-triggered
// transitions; assetIDs, when present, are kept as JSON metadata so the
// line can be rendered without a second lookup.
func (s *Service) RecordNote(ctx context.Context, bookingID uint, content string, actorID uint, assetIDs []string) error {
	n := bookingModel.Note{
		BookingID:   bookingID,
		Content:     content,
		CreatedByID: actorID,
	}
	if len(assetIDs) > 0 {
		raw, err := json.Marshal(map[string]interface{}{"asset_ids": assetIDs})
		if err != nil {
			return err
		}
		n.Metadata = datatypes.JSON(raw)
	}
	return s.DB.WithContext(ctx).Create(&n).Error
}

// ByBooking returns a booking's audit trail, newest first.
func (s *Service) ByBooking(ctx context.Context, bookingID uint) ([]bookingModel.Note, error) {
	var notes []bookingModel.Note
	err := s.DB.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
