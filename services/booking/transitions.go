package booking

import (
	"context"
	"fmt"
	"time"

	assetModel "asset-booking/models/asset"
	bookingModel "asset-booking/models/booking"
	"asset-booking/logger"
	"asset-booking/services/notify"
)

// Reserve commits a DRAFT booking to its time window after running the
// conflict detector over its full asset set.
func (s *Service) Reserve(ctx context.Context, actor Actor, orgID, id uint) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusDraft {
		return nil, fmt.Errorf("%w: booking %d cannot be reserved from %s", ErrIllegalTransition, id, b.Status)
	}
	if b.From == nil || b.To == nil {
		return nil, fmt.Errorf("%w: booking %d needs a start and end date before reserving", ErrValidation, id)
	}
	if err := validateWindow(b.From, b.To); err != nil {
		return nil, err
	}
	if len(b.Assets) == 0 {
		return nil, fmt.Errorf("%w: booking %d has no assets to reserve", ErrValidation, id)
	}

	if err := s.checkConflicts(ctx, b, b.AssetIDs(), *b.From, *b.To); err != nil {
		return nil, err
	}

	set := map[string]interface{}{}
	if b.OriginalFrom == nil {
		// Preserve the window as first reserved for audit across extensions.
		set["original_from"] = *b.From
		set["original_to"] = *b.To
	}
	if err := s.commit(ctx, b, bookingModel.BookingStatusReserved, set); err != nil {
		return nil, err
	}

	s.arm(ctx, b.ID, bookingModel.ReminderCheckoutDue, b.From.Add(-reminderLead))
	s.note(ctx, b, actor.UserID, TransitionCopy(b.Status, bookingModel.BookingStatusReserved), nil)
	s.notifyReserved(ctx, b, actor)

	return s.Store.Get(ctx, orgID, id)
}

// Checkout moves a RESERVED booking into ONGOING (or straight to OVERDUE
// when the window already ended) and cascades its assets to CHECKED_OUT.
func (s *Service) Checkout(ctx context.Context, actor Actor, orgID, id uint) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusReserved {
		return nil, fmt.Errorf("%w: booking %d cannot be checked out from %s", ErrIllegalTransition, id, b.Status)
	}

	// State may have changed since reservation; run the detector again.
	if err := s.checkConflicts(ctx, b, b.AssetIDs(), *b.From, *b.To); err != nil {
		return nil, err
	}

	now := s.now()
	target := bookingModel.BookingStatusOngoing
	if b.To.Before(now) {
		target = bookingModel.BookingStatusOverdue
	}
	if err := s.commit(ctx, b, target, nil); err != nil {
		return nil, err
	}

	s.cascadeAssets(ctx, b.Assets, assetModel.StatusCheckedOut)
	// A checkin reminder armed in the past fires immediately.
	s.arm(ctx, b.ID, bookingModel.ReminderCheckinDue, b.To.Add(-reminderLead))
	s.note(ctx, b, actor.UserID, TransitionCopy(b.Status, target), nil)

	return s.Store.Get(ctx, orgID, id)
}

// PartialCheckIn returns a subset of the booking's assets early. The
// booking stays active unless the returned set now covers the whole asset
// set, in which case it completes.
func (s *Service) PartialCheckIn(ctx context.Context, actor Actor, orgID, id uint, assetIDs []string) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusOngoing && b.Status != bookingModel.BookingStatusOverdue {
		return nil, fmt.Errorf("%w: booking %d is not checked out", ErrIllegalTransition, id)
	}
	if len(assetIDs) == 0 {
		return nil, fmt.Errorf("%w: no assets given to check in", ErrValidation)
	}
	// A repeated ID in one payload must not inflate the ledger.
	assetIDs = dedupeIDs(assetIDs)

	records, err := s.Store.PartialCheckins(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load check-in ledger for booking %d: %w", id, err)
	}
	returned := returnedSet(records)
	for _, assetID := range assetIDs {
		if !b.HasAsset(assetID) {
			return nil, fmt.Errorf("%w: asset %s is not part of booking %d", ErrValidation, assetID, id)
		}
		if _, ok := returned[assetID]; ok {
			return nil, fmt.Errorf("%w: asset %s was already checked in", ErrValidation, assetID)
		}
	}

	rec := &bookingModel.PartialCheckin{
		BookingID:     id,
		AssetIDs:      assetIDs,
		AssetCount:    len(assetIDs),
		CheckedInByID: actor.UserID,
	}
	if err := s.Store.AppendPartialCheckin(ctx, rec); err != nil {
		return nil, fmt.Errorf("append check-in record for booking %d: %w", id, err)
	}
	for _, assetID := range assetIDs {
		returned[assetID] = struct{}{}
	}

	if err := s.Assets.UpdateStatuses(ctx, assetIDs, assetModel.StatusAvailable); err != nil {
		logger.Error(fmt.Sprintf("cascade asset availability for booking %d", id), err)
	}
	if kits := fullyReturnedKits(b.Assets, returned); len(kits) > 0 {
		if err := s.Assets.UpdateKitStatuses(ctx, kits, assetModel.StatusAvailable); err != nil {
			logger.Error(fmt.Sprintf("cascade kit availability for booking %d", id), err)
		}
	}
	s.note(ctx, b, actor.UserID, fmt.Sprintf("checked in %d asset(s) early", len(assetIDs)), assetIDs)

	if checkinComplete(b, returned) {
		if err := s.complete(ctx, actor, b, returned); err != nil {
			return nil, err
		}
	}

	return s.Store.Get(ctx, orgID, id)
}

// CheckIn completes the booking, cascading every still-held asset back to
// AVAILABLE. Assets already returned through the ledger are untouched.
func (s *Service) CheckIn(ctx context.Context, actor Actor, orgID, id uint) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusOngoing && b.Status != bookingModel.BookingStatusOverdue {
		return nil, fmt.Errorf("%w: booking %d is not checked out", ErrIllegalTransition, id)
	}

	records, err := s.Store.PartialCheckins(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load check-in ledger for booking %d: %w", id, err)
	}
	if err := s.complete(ctx, actor, b, returnedSet(records)); err != nil {
		return nil, err
	}

	return s.Store.Get(ctx, orgID, id)
}

// complete commits the COMPLETE transition and cascades still-held assets.
func (s *Service) complete(ctx context.Context, actor Actor, b *bookingModel.Booking, returned map[string]struct{}) error {
	heldElsewhere, err := s.Store.ActiveHolders(ctx, unreturnedAssetIDs(b, returned), b.ID)
	if err != nil {
		return fmt.Errorf("resolve cross-booking holds for booking %d: %w", b.ID, err)
	}
	still := stillHeldAssets(b, returned, heldElsewhere)

	if err := s.commit(ctx, b, bookingModel.BookingStatusComplete, nil); err != nil {
		return err
	}

	s.cascadeAssets(ctx, still, assetModel.StatusAvailable)
	s.note(ctx, b, actor.UserID, TransitionCopy(b.Status, bookingModel.BookingStatusComplete), nil)
	s.cancelReminder(ctx, b.ID)
	s.send(b.CustodianEmail(), "Booking completed",
		fmt.Sprintf("Booking %q has been completed. All assets are accounted for.", b.Name))
	return nil
}

// Extend pushes the booking's end date out. The conflict detector runs
// over the still-held assets only; returned assets never block.
func (s *Service) Extend(ctx context.Context, actor Actor, orgID, id uint, newTo time.Time) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusOngoing && b.Status != bookingModel.BookingStatusOverdue {
		return nil, fmt.Errorf("%w: booking %d cannot be extended from %s", ErrIllegalTransition, id, b.Status)
	}
	if newTo.Before(*b.From) {
		return nil, fmt.Errorf("%w: new end date is before the booking start", ErrValidation)
	}

	records, err := s.Store.PartialCheckins(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load check-in ledger for booking %d: %w", id, err)
	}
	held := unreturnedAssetIDs(b, returnedSet(records))
	if len(held) == 0 {
		return nil, fmt.Errorf("%w: all assets have been returned, nothing left to extend", ErrValidation)
	}

	if err := s.checkConflicts(ctx, b, held, *b.From, newTo); err != nil {
		return nil, err
	}

	target := b.Status
	if b.Status == bookingModel.BookingStatusOverdue && newTo.After(s.now()) {
		target = bookingModel.BookingStatusOngoing
	}
	if err := s.commit(ctx, b, target, map[string]interface{}{"booked_to": newTo}); err != nil {
		return nil, err
	}

	s.arm(ctx, b.ID, bookingModel.ReminderCheckinDue, newTo.Add(-reminderLead))
	s.note(ctx, b, actor.UserID, fmt.Sprintf("extended the booking until %s", newTo.UTC().Format(time.RFC3339)), nil)

	return s.Store.Get(ctx, orgID, id)
}

// Cancel aborts any non-terminal booking.
func (s *Service) Cancel(ctx context.Context, actor Actor, orgID, id uint, reason string) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: booking %d is already %s", ErrIllegalTransition, id, b.Status)
	}

	if err := s.commit(ctx, b, bookingModel.BookingStatusCancelled, nil); err != nil {
		return nil, err
	}

	s.cancelReminder(ctx, b.ID)
	s.note(ctx, b, actor.UserID, TransitionCopy(b.Status, bookingModel.BookingStatusCancelled), nil)
	body := fmt.Sprintf("Booking %q has been cancelled.", b.Name)
	if reason != "" {
		body += " Reason: " + reason
	}
	s.send(b.CustodianEmail(), "Booking cancelled", body)

	return s.Store.Get(ctx, orgID, id)
}

// Archive is only legal from COMPLETE.
func (s *Service) Archive(ctx context.Context, actor Actor, orgID, id uint) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusComplete {
		return nil, fmt.Errorf("%w: booking %d cannot be archived from %s", ErrIllegalTransition, id, b.Status)
	}
	if err := s.commit(ctx, b, bookingModel.BookingStatusArchived, nil); err != nil {
		return nil, err
	}
	s.note(ctx, b, actor.UserID, TransitionCopy(b.Status, bookingModel.BookingStatusArchived), nil)
	return s.Store.Get(ctx, orgID, id)
}

// RevertToDraft is only legal from RESERVED; the window and asset set
// become mutable again.
func (s *Service) RevertToDraft(ctx context.Context, actor Actor, orgID, id uint) (*bookingModel.Booking, error) {
	b, err := s.getForUpdate(ctx, actor, orgID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != bookingModel.BookingStatusReserved {
		return nil, fmt.Errorf("%w: booking %d cannot be reverted from %s", ErrIllegalTransition, id, b.Status)
	}
	if err := s.commit(ctx, b, bookingModel.BookingStatusDraft, nil); err != nil {
		return nil, err
	}
	s.cancelReminder(ctx, b.ID)
	s.note(ctx, b, actor.UserID, TransitionCopy(b.Status, bookingModel.BookingStatusDraft), nil)
	return s.Store.Get(ctx, orgID, id)
}

// Delete removes the booking entirely, releasing any assets it still holds.
func (s *Service) Delete(ctx context.Context, actor Actor, orgID, id uint) error {
	b, err := s.Store.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !actor.IsManager && b.CreatorID != actor.UserID {
		return fmt.Errorf("%w: only the creator or an admin may delete booking %d", ErrPermission, id)
	}

	if b.Status == bookingModel.BookingStatusOngoing || b.Status == bookingModel.BookingStatusOverdue {
		records, err := s.Store.PartialCheckins(ctx, id)
		if err != nil {
			return fmt.Errorf("load check-in ledger for booking %d: %w", id, err)
		}
		returned := returnedSet(records)
		heldElsewhere, err := s.Store.ActiveHolders(ctx, unreturnedAssetIDs(b, returned), b.ID)
		if err != nil {
			return fmt.Errorf("resolve cross-booking holds for booking %d: %w", id, err)
		}
		s.cascadeAssets(ctx, stillHeldAssets(b, returned, heldElsewhere), assetModel.StatusAvailable)
	}

	s.cancelReminder(ctx, id)
	if err := s.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	s.send(b.CustodianEmail(), "Booking deleted", fmt.Sprintf("Booking %q has been deleted.", b.Name))
	return nil
}

// PromoteOverdue is the scheduler's re-entry point: flip ONGOING to
// OVERDUE once the window has passed. Racing a completion is fine; the
// conditional write just turns into a no-op.
func (s *Service) PromoteOverdue(ctx context.Context, orgID, id uint) error {
	b, err := s.Store.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if b.Status != bookingModel.BookingStatusOngoing {
		return nil
	}
	ok, err := s.Store.UpdateStatusIf(ctx, id, bookingModel.BookingStatusOngoing, bookingModel.BookingStatusOverdue, nil)
	if err != nil {
		return fmt.Errorf("promote booking %d to overdue: %w", id, err)
	}
	if !ok {
		return nil
	}
	// System transition without dedicated copy; the wildcard applies.
	s.note(ctx, b, 0, TransitionCopy(bookingModel.BookingStatusOngoing, bookingModel.BookingStatusOverdue), nil)
	return nil
}

// commit performs the conditional status write for b.Status -> to and
// enforces the lifecycle graph. A lost race surfaces as ErrStateChanged.
func (s *Service) commit(ctx context.Context, b *bookingModel.Booking, to bookingModel.BookingStatus, set map[string]interface{}) error {
	if !b.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, b.Status, to)
	}
	ok, err := s.Store.UpdateStatusIf(ctx, b.ID, b.Status, to, set)
	if err != nil {
		return fmt.Errorf("commit booking %d status %s: %w", b.ID, to, err)
	}
	if !ok {
		return fmt.Errorf("%w: booking %d", ErrStateChanged, b.ID)
	}
	return nil
}

// cascadeAssets performs the best-effort availability cascade. The
// booking's own status is already durable; a failure here is surfaced as
// an operational error, never rolled back.
func (s *Service) cascadeAssets(ctx context.Context, assets []assetModel.Asset, status assetModel.Status) {
	if len(assets) == 0 {
		return
	}
	if err := s.Assets.UpdateStatuses(ctx, assetIDsOf(assets), status); err != nil {
		logger.Error(fmt.Sprintf("cascade %d asset(s) to %s", len(assets), status), err)
	}
	if kits := kitIDsOf(assets); len(kits) > 0 {
		if err := s.Assets.UpdateKitStatuses(ctx, kits, status); err != nil {
			logger.Error(fmt.Sprintf("cascade %d kit(s) to %s", len(kits), status), err)
		}
	}
}

func (s *Service) arm(ctx context.Context, bookingID uint, kind bookingModel.ReminderKind, at time.Time) {
	if s.Scheduler == nil {
		return
	}
	if err := s.Scheduler.Arm(ctx, bookingID, kind, at); err != nil {
		logger.Error(fmt.Sprintf("arm %s reminder for booking %d", kind, bookingID), err)
	}
}

func (s *Service) cancelReminder(ctx context.Context, bookingID uint) {
	if s.Scheduler == nil {
		return
	}
	if err := s.Scheduler.Cancel(ctx, bookingID); err != nil {
		logger.Error(fmt.Sprintf("cancel reminder for booking %d", bookingID), err)
	}
}

func (s *Service) note(ctx context.Context, b *bookingModel.Booking, actorID uint, content string, assetIDs []string) {
	if s.Notes == nil {
		return
	}
	if err := s.Notes.RecordNote(ctx, b.ID, content, actorID, assetIDs); err != nil {
		logger.Error(fmt.Sprintf("record note on booking %d", b.ID), err)
	}
}

func (s *Service) send(to, subject, body string) {
	if s.Notifier == nil || to == "" {
		return
	}
	if err := s.Notifier.Send(to, subject, body, ""); err != nil {
		logger.Error("send notification: "+subject, err)
	}
}

func (s *Service) notifyReserved(ctx context.Context, b *bookingModel.Booking, actor Actor) {
	body := fmt.Sprintf("Booking %q for %s has been reserved for %s.",
		b.Name, b.CustodianName(), notify.HumanTimeRange(*b.From, *b.To))
	s.send(b.CustodianEmail(), "Booking reserved", body)

	// Admins are copied in whenever custody sits with a constrained role,
	// regardless of who performed the reservation. A constrained actor
	// reserving on their own also escalates.
	constrainedCustody := b.CustodianUser != nil && !b.CustodianUser.Role.IsManager()
	if (!constrainedCustody && actor.IsManager) || s.Users == nil {
		return
	}
	admins, err := s.Users.AdminEmails(ctx, b.OrganizationID)
	if err != nil {
		logger.Error(fmt.Sprintf("resolve admin emails for org %d", b.OrganizationID), err)
		return
	}
	for _, email := range admins {
		s.send(email, "Booking reserved", body)
	}
}
