package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"asset-booking/logger"
	bookingModel "asset-booking/models/booking"
	"asset-booking/services/notify"
)

// reminderLead mirrors the booking engine's one-hour notice window.
const reminderLead = time.Hour

// Store persists reminder jobs so armed reminders survive restarts.
type Store interface {
	Create(ctx context.Context, r *bookingModel.Reminder) error
	Get(ctx context.Context, id uint) (*bookingModel.Reminder, error)
	MarkFired(ctx context.Context, id uint, at time.Time) error
	CancelForBooking(ctx context.Context, bookingID uint, at time.Time) error
	Pending(ctx context.Context) ([]bookingModel.Reminder, error)
	SetActiveReminder(ctx context.Context, bookingID uint, reminderID *uint) error
	LoadBooking(ctx context.Context, id uint) (*bookingModel.Booking, error)
}

// Scheduler owns at most one armed reminder job per booking. Re-arming
// cancels the previous job; cancelling a job that already fired or never
// existed is a no-op. When a job fires the booking is looked up fresh so
// a reminder for a booking that completed early is silently skipped.
type Scheduler struct {
	Store    Store
	Notifier notify.Notifier

	// Promote re-enters the booking state machine to flip ONGOING to
	// OVERDUE once the window has passed.
	Promote func(ctx context.Context, orgID, id uint) error

	Now func() time.Time

	mu     sync.Mutex
	timers map[uint]*time.Timer
}

func New(store Store, notifier notify.Notifier) *Scheduler {
	return &Scheduler{
		Store:    store,
		Notifier: notifier,
		Now:      time.Now,
		timers:   make(map[uint]*time.Timer),
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Arm schedules kind to fire at the given instant, superseding any job
// already armed for the booking. An instant in the past fires immediately.
func (s *Scheduler) Arm(ctx context.Context, bookingID uint, kind bookingModel.ReminderKind, at time.Time) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown reminder kind %q", kind)
	}

	s.stopTimer(bookingID)
	if err := s.Store.CancelForBooking(ctx, bookingID, s.now()); err != nil {
		return fmt.Errorf("supersede reminder for booking %d: %w", bookingID, err)
	}

	r := &bookingModel.Reminder{
		BookingID: bookingID,
		Kind:      kind,
		FireAt:    at.UTC(),
	}
	if err := s.Store.Create(ctx, r); err != nil {
		return fmt.Errorf("persist reminder for booking %d: %w", bookingID, err)
	}
	if err := s.Store.SetActiveReminder(ctx, bookingID, &r.ID); err != nil {
		logger.Error(fmt.Sprintf("record reminder handle on booking %d", bookingID), err)
	}

	s.schedule(r)
	return nil
}

// Cancel disarms the booking's reminder, if any.
func (s *Scheduler) Cancel(ctx context.Context, bookingID uint) error {
	s.stopTimer(bookingID)
	if err := s.Store.CancelForBooking(ctx, bookingID, s.now()); err != nil {
		return fmt.Errorf("cancel reminder for booking %d: %w", bookingID, err)
	}
	if err := s.Store.SetActiveReminder(ctx, bookingID, nil); err != nil {
		logger.Error(fmt.Sprintf("clear reminder handle on booking %d", bookingID), err)
	}
	return nil
}

// RestorePending re-arms timers for jobs persisted before a restart.
func (s *Scheduler) RestorePending(ctx context.Context) error {
	pending, err := s.Store.Pending(ctx)
	if err != nil {
		return fmt.Errorf("load pending reminders: %w", err)
	}
	for i := range pending {
		s.schedule(&pending[i])
	}
	if len(pending) > 0 {
		logger.Info(fmt.Sprintf("Restored %d pending reminder(s)", len(pending)))
	}
	return nil
}

// Stop disarms all in-process timers; persisted jobs stay pending.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) schedule(r *bookingModel.Reminder) {
	delay := r.FireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	reminderID, bookingID := r.ID, r.BookingID

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
	}
	s.timers[bookingID] = time.AfterFunc(delay, func() {
		s.fire(reminderID, bookingID)
	})
}

func (s *Scheduler) stopTimer(bookingID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
		delete(s.timers, bookingID)
	}
}

// fire processes one job to completion. Each step is best-effort; a
// reminder must never wedge the booking itself.
func (s *Scheduler) fire(reminderID, bookingID uint) {
	ctx := context.Background()

	r, err := s.Store.Get(ctx, reminderID)
	if err != nil {
		logger.Error(fmt.Sprintf("load reminder %d", reminderID), err)
		return
	}
	if !r.Pending() {
		// Cancelled between timer fire and processing.
		return
	}

	if err := s.Store.MarkFired(ctx, reminderID, s.now()); err != nil {
		logger.Error(fmt.Sprintf("mark reminder %d fired", reminderID), err)
		return
	}
	if err := s.Store.SetActiveReminder(ctx, bookingID, nil); err != nil {
		logger.Error(fmt.Sprintf("clear reminder handle on booking %d", bookingID), err)
	}
	s.stopTimer(bookingID)

	// Look the booking up fresh; the armed-time snapshot may be stale.
	b, err := s.Store.LoadBooking(ctx, bookingID)
	if err != nil {
		logger.Error(fmt.Sprintf("load booking %d for reminder", bookingID), err)
		return
	}

	switch r.Kind {
	case bookingModel.ReminderCheckoutDue:
		if b.Status != bookingModel.BookingStatusReserved {
			return
		}
		s.send(b, "Booking checkout due",
			fmt.Sprintf("Booking %q starts at %s. Time to check out the assets.", b.Name, b.From.UTC().Format("2006-01-02 15:04")))
		if b.To != nil {
			s.armNext(ctx, b, bookingModel.ReminderCheckinDue, b.To.Add(-reminderLead))
		}

	case bookingModel.ReminderCheckinDue:
		if b.Status != bookingModel.BookingStatusOngoing && b.Status != bookingModel.BookingStatusOverdue {
			// Completed or cancelled early; nothing to remind about.
			return
		}
		s.send(b, "Booking checkin due",
			fmt.Sprintf("Booking %q ends at %s. Time to check the assets back in.", b.Name, b.To.UTC().Format("2006-01-02 15:04")))
		if b.Status == bookingModel.BookingStatusOngoing {
			s.armNext(ctx, b, bookingModel.ReminderOverdue, *b.To)
		}

	case bookingModel.ReminderOverdue:
		if b.Status != bookingModel.BookingStatusOngoing {
			return
		}
		if s.Promote != nil {
			if err := s.Promote(ctx, b.OrganizationID, b.ID); err != nil {
				logger.Error(fmt.Sprintf("promote booking %d to overdue", b.ID), err)
			}
		}
		s.send(b, "Booking overdue",
			fmt.Sprintf("Booking %q was due back at %s and is now overdue.", b.Name, b.To.UTC().Format("2006-01-02 15:04")))
	}
}

func (s *Scheduler) armNext(ctx context.Context, b *bookingModel.Booking, kind bookingModel.ReminderKind, at time.Time) {
	if err := s.Arm(ctx, b.ID, kind, at); err != nil {
		logger.Error(fmt.Sprintf("arm %s reminder for booking %d", kind, b.ID), err)
	}
}

func (s *Scheduler) send(b *bookingModel.Booking, subject, body string) {
	to := b.CustodianEmail()
	if s.Notifier == nil || to == "" {
		return
	}
	if err := s.Notifier.Send(to, subject, body, ""); err != nil {
		logger.Error("send reminder notification: "+subject, err)
	}
}
