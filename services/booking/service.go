package booking

import (
	"context"
	"fmt"
	"time"

	assetModel "asset-booking/models/asset"
	bookingModel "asset-booking/models/booking"
	"asset-booking/services/notify"
)

// reminderLead is how far before a window boundary the corresponding
// reminder fires.
const reminderLead = time.Hour

// Store is the booking persistence surface. The single write primitive
// that matters is UpdateStatusIf: a conditional write keyed on the
// expected current status, so two racing transitions on one booking end
// in exactly one success and one rejection.
type Store interface {
	Create(ctx context.Context, b *bookingModel.Booking) error
	Get(ctx context.Context, orgID, id uint) (*bookingModel.Booking, error)
	List(ctx context.Context, orgID uint, q ListQuery) ([]bookingModel.Booking, error)
	UpdateStatusIf(ctx context.Context, id uint, from, to bookingModel.BookingStatus, set map[string]interface{}) (bool, error)
	Updates(ctx context.Context, id uint, set map[string]interface{}) error
	Delete(ctx context.Context, id uint) error

	AddAssets(ctx context.Context, id uint, assetIDs []string) error
	RemoveAssets(ctx context.Context, id uint, assetIDs []string) error

	AppendPartialCheckin(ctx context.Context, rec *bookingModel.PartialCheckin) error
	PartialCheckins(ctx context.Context, bookingID uint) ([]bookingModel.PartialCheckin, error)

	// Overlapping returns other active bookings whose window overlaps
	// [from,to] (inclusive) and which share at least one of assetIDs.
	Overlapping(ctx context.Context, orgID uint, assetIDs []string, from, to time.Time, excludeID uint) ([]bookingModel.Booking, error)

	// ActiveHolders maps each of assetIDs still held by another active
	// booking (not returned there via its ledger) to that booking's ID.
	ActiveHolders(ctx context.Context, assetIDs []string, excludeID uint) (map[string]uint, error)
}

// AssetStore is the availability cache the engine cascades into.
type AssetStore interface {
	ByIDs(ctx context.Context, orgID uint, ids []string) ([]assetModel.Asset, error)
	UpdateStatuses(ctx context.Context, ids []string, status assetModel.Status) error
	UpdateKitStatuses(ctx context.Context, kitIDs []string, status assetModel.Status) error
}

// UserDirectory resolves organization admins for escalation notifications.
type UserDirectory interface {
	AdminEmails(ctx context.Context, orgID uint) ([]string, error)
}

// ReminderScheduler owns at most one armed job per booking.
type ReminderScheduler interface {
	Arm(ctx context.Context, bookingID uint, kind bookingModel.ReminderKind, at time.Time) error
	Cancel(ctx context.Context, bookingID uint) error
}

// NoteRecorder appends audit lines to bookings.
type NoteRecorder interface {
	RecordNote(ctx context.Context, bookingID uint, content string, actorID uint, assetIDs []string) error
}

// Actor is the identity a route handler resolved for the request.
type Actor struct {
	UserID    uint
	Email     string
	IsManager bool
}

// ListQuery filters the booking list.
type ListQuery struct {
	Statuses []bookingModel.BookingStatus
	// VisibleTo restricts results to bookings created by or held in
	// custody by this user. Zero means no restriction.
	VisibleTo uint
	// Window, when both set, keeps bookings overlapping it.
	WindowFrom *time.Time
	WindowTo   *time.Time
}

// Service is the booking state machine. All lifecycle operations go
// through it; nothing else writes booking status or cascades asset
// availability.
type Service struct {
	Store     Store
	Assets    AssetStore
	Users     UserDirectory
	Scheduler ReminderScheduler
	Notes     NoteRecorder
	Notifier  notify.Notifier
	Now       func() time.Time
}

func NewService(store Store, assets AssetStore, users UserDirectory, notes NoteRecorder, notifier notify.Notifier) *Service {
	return &Service{
		Store:    store,
		Assets:   assets,
		Users:    users,
		Notes:    notes,
		Notifier: notifier,
		Now:      time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// transitionCopy maps lifecycle edges to their audit line. The wildcard
// fallback in TransitionCopy is deliberate: system-triggered transitions
// without dedicated copy still get a line, never an error.
var transitionCopy = map[[2]bookingModel.BookingStatus]string{
	{bookingModel.BookingStatusDraft, bookingModel.BookingStatusReserved}:      "reserved the booking",
	{bookingModel.BookingStatusReserved, bookingModel.BookingStatusOngoing}:    "checked-out the booking",
	{bookingModel.BookingStatusReserved, bookingModel.BookingStatusOverdue}:    "checked-out the booking",
	{bookingModel.BookingStatusOngoing, bookingModel.BookingStatusComplete}:    "checked-in the booking",
	{bookingModel.BookingStatusOverdue, bookingModel.BookingStatusComplete}:    "checked-in the booking",
	{bookingModel.BookingStatusReserved, bookingModel.BookingStatusDraft}:      "reverted booking to draft",
	{bookingModel.BookingStatusComplete, bookingModel.BookingStatusArchived}:   "archived the booking",
	{bookingModel.BookingStatusDraft, bookingModel.BookingStatusCancelled}:     "cancelled the booking",
	{bookingModel.BookingStatusReserved, bookingModel.BookingStatusCancelled}:  "cancelled the booking",
	{bookingModel.BookingStatusOngoing, bookingModel.BookingStatusCancelled}:   "cancelled the booking",
	{bookingModel.BookingStatusOverdue, bookingModel.BookingStatusCancelled}:   "cancelled the booking",
}

// TransitionCopy returns the audit line for a status edge.
func TransitionCopy(from, to bookingModel.BookingStatus) string {
	if c, ok := transitionCopy[[2]bookingModel.BookingStatus{from, to}]; ok {
		return c
	}
	return "changed the booking status"
}

// CreateInput is the creation payload for a new DRAFT booking.
type CreateInput struct {
	Name                  string
	Description           *string
	From                  *time.Time
	To                    *time.Time
	AssetIDs              []string
	CustodianUserID       *uint
	CustodianTeamMemberID *uint
}

// Create makes a new DRAFT booking. Assets and time window stay mutable
// until reserve.
func (s *Service) Create(ctx context.Context, actor Actor, orgID uint, in CreateInput) (*bookingModel.Booking, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: booking name is required", ErrValidation)
	}
	if err := validateWindow(in.From, in.To); err != nil {
		return nil, err
	}
	if (in.CustodianUserID == nil) == (in.CustodianTeamMemberID == nil) {
		return nil, fmt.Errorf("%w: custodian must be exactly one of a user or a team member", ErrValidation)
	}

	assets, err := s.resolveAssets(ctx, orgID, in.AssetIDs)
	if err != nil {
		return nil, err
	}

	b := &bookingModel.Booking{
		Name:                  in.Name,
		Description:           in.Description,
		Status:                bookingModel.BookingStatusDraft,
		From:                  in.From,
		To:                    in.To,
		CreatorID:             actor.UserID,
		CustodianUserID:       in.CustodianUserID,
		CustodianTeamMemberID: in.CustodianTeamMemberID,
		OrganizationID:        orgID,
		Assets:                assets,
	}
	if err := s.Store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return s.Store.Get(ctx, orgID, b.ID)
}

// UpdateInput edits a DRAFT booking's header fields. Nil means leave
// unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	From        *time.Time
	To          *time.Time
}

// Update edits name, description and the time window. Only DRAFT
// bookings are mutable; everything later in the lifecycle goes through
// its own transition. This is how a draft opened without a window gets
// one before reserve.
func (s *Service) Update(ctx context.Context, actor Actor, orgID, id uint, in UpdateInput) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusDraft {
		return nil, fmt.Errorf("%w: booking %d can only be edited while in draft", ErrIllegalTransition, id)
	}

	from, to := b.From, b.To
	if in.From != nil {
		from = in.From
	}
	if in.To != nil {
		to = in.To
	}
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}

	set := map[string]interface{}{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: booking name is required", ErrValidation)
		}
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.From != nil {
		set["booked_from"] = *in.From
	}
	if in.To != nil {
		set["booked_to"] = *in.To
	}
	if len(set) == 0 {
		return b, nil
	}
	if err := s.Store.Updates(ctx, id, set); err != nil {
		return nil, fmt.Errorf("update booking %d: %w", id, err)
	}
	return s.Store.Get(ctx, orgID, id)
}

// Get returns a booking projection; self-service actors only see their own.
func (s *Service) Get(ctx context.Context, actor Actor, orgID, id uint) (*bookingModel.Booking, error) {
	b, err := s.Store.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(actor, b) {
		return nil, ErrNotFound
	}
	return b, nil
}

// List returns booking projections, restricted for self-service actors.
func (s *Service) List(ctx context.Context, actor Actor, orgID uint, q ListQuery) ([]bookingModel.Booking, error) {
	if !actor.IsManager {
		q.VisibleTo = actor.UserID
	}
	return s.Store.List(ctx, orgID, q)
}

// AddAssets grows a DRAFT booking's asset set.
func (s *Service) AddAssets(ctx context.Context, actor Actor, orgID, id uint, assetIDs []string) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusDraft {
		return nil, fmt.Errorf("%w: booking %d: assets can only be added while in draft", ErrIllegalTransition, id)
	}
	if _, err := s.resolveAssets(ctx, orgID, assetIDs); err != nil {
		return nil, err
	}
	if err := s.Store.AddAssets(ctx, id, assetIDs); err != nil {
		return nil, fmt.Errorf("add assets to booking %d: %w", id, err)
	}
	return s.Store.Get(ctx, orgID, id)
}

// RemoveAssets shrinks a DRAFT booking's asset set.
func (s *Service) RemoveAssets(ctx context.Context, actor Actor, orgID, id uint, assetIDs []string) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusDraft {
		return nil, fmt.Errorf("%w: booking %d: assets can only be removed while in draft", ErrIllegalTransition, id)
	}
	for _, id := range assetIDs {
		if !b.HasAsset(id) {
			return nil, fmt.Errorf("%w: asset %s is not part of the booking", ErrValidation, id)
		}
	}
	if err := s.Store.RemoveAssets(ctx, id, assetIDs); err != nil {
		return nil, fmt.Errorf("remove assets from booking %d: %w", id, err)
	}
	return s.Store.Get(ctx, orgID, id)
}

// getForUpdate loads a booking and enforces the operation permission:
// full managers may touch any booking in the org, a constrained
// self-service actor only those they created or hold custody of.
func (s *Service) getForUpdate(ctx context.Context, actor Actor, orgID, id uint) (*bookingModel.Booking, error) {
	b, err := s.Store.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(actor, b) {
		return nil, fmt.Errorf("%w: booking %d is not yours to change", ErrPermission, id)
	}
	return b, nil
}

func (s *Service) canSee(actor Actor, b *bookingModel.Booking) bool {
	if actor.IsManager {
		return true
	}
	if b.CreatorID == actor.UserID {
		return true
	}
	return b.CustodianUserID != nil && *b.CustodianUserID == actor.UserID
}

func (s *Service) resolveAssets(ctx context.Context, orgID uint, assetIDs []string) ([]assetModel.Asset, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	assets, err := s.Assets.ByIDs(ctx, orgID, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve assets: %w", err)
	}
	if len(assets) != len(assetIDs) {
		return nil, fmt.Errorf("%w: one or more asset IDs do not exist in this organization", ErrValidation)
	}
	return assets, nil
}

func validateWindow(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return fmt.Errorf("%w: booking start must not be after its end", ErrValidation)
	}
	return nil
}
