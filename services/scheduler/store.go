package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	bookingModel "asset-booking/models/booking"
)

// GormStore persists reminder jobs in Postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Create(ctx context.Context, r *bookingModel.Reminder) error {
	return s.DB.WithContext(ctx).Create(r).Error
}

func (s *GormStore) Get(ctx context.Context, id uint) (*bookingModel.Reminder, error) {
	var r bookingModel.Reminder
	if err := s.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) MarkFired(ctx context.Context, id uint, at time.Time) error {
	return s.DB.WithContext(ctx).
		Model(&bookingModel.Reminder{}).
		Where("id = ? AND fired_at IS NULL AND cancelled_at IS NULL", id).
		Update("fired_at", at).Error
}

func (s *GormStore) CancelForBooking(ctx context.Context, bookingID uint, at time.Time) error {
	return s.DB.WithContext(ctx).
		Model(&bookingModel.Reminder{}).
		Where("booking_id = ? AND fired_at IS NULL AND cancelled_at IS NULL", bookingID).
		Update("cancelled_at", at).Error
}

func (s *GormStore) Pending(ctx context.Context) ([]bookingModel.Reminder, error) {
	var out []bookingModel.Reminder
	err := s.DB.WithContext(ctx).
		Where("fired_at IS NULL AND cancelled_at IS NULL").
		Order("fire_at ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) SetActiveReminder(ctx context.Context, bookingID uint, reminderID *uint) error {
	return s.DB.WithContext(ctx).
		Model(&bookingModel.Booking{}).
		Where("id = ?", bookingID).
		Update("active_reminder_id", reminderID).Error
}

func (s *GormStore) LoadBooking(ctx context.Context, id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := s.DB.WithContext(ctx).
		Preload("CustodianUser").
		Preload("CustodianTeamMember").
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}
