package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingModel "asset-booking/models/booking"
	userModel "asset-booking/models/user"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	reminders map[uint]*bookingModel.Reminder
	bookings  map[uint]*bookingModel.Booking
	nextID    uint

	activeHandles map[uint]*uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reminders:     make(map[uint]*bookingModel.Reminder),
		bookings:      make(map[uint]*bookingModel.Booking),
		activeHandles: make(map[uint]*uint),
	}
}

func (f *fakeStore) Create(_ context.Context, r *bookingModel.Reminder) error {
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.reminders[r.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id uint) (*bookingModel.Reminder, error) {
	r, ok := f.reminders[id]
	if !ok {
		return nil, errors.New("reminder not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) MarkFired(_ context.Context, id uint, at time.Time) error {
	if r, ok := f.reminders[id]; ok && r.FiredAt == nil && r.CancelledAt == nil {
		r.FiredAt = &at
	}
	return nil
}

func (f *fakeStore) CancelForBooking(_ context.Context, bookingID uint, at time.Time) error {
	for _, r := range f.reminders {
		if r.BookingID == bookingID && r.FiredAt == nil && r.CancelledAt == nil {
			t := at
			r.CancelledAt = &t
		}
	}
	return nil
}

func (f *fakeStore) Pending(_ context.Context) ([]bookingModel.Reminder, error) {
	var out []bookingModel.Reminder
	for _, r := range f.reminders {
		if r.Pending() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) SetActiveReminder(_ context.Context, bookingID uint, reminderID *uint) error {
	f.activeHandles[bookingID] = reminderID
	return nil
}

func (f *fakeStore) LoadBooking(_ context.Context, id uint) (*bookingModel.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, errors.New("booking not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) pendingFor(bookingID uint) []*bookingModel.Reminder {
	var out []*bookingModel.Reminder
	for _, r := range f.reminders {
		if r.BookingID == bookingID && r.Pending() {
			out = append(out, r)
		}
	}
	return out
}

type sentMail struct {
	to, subject string
}

type fakeNotifier struct {
	sent []sentMail
}

func (f *fakeNotifier) Send(to, subject, _, _ string) error {
	f.sent = append(f.sent, sentMail{to, subject})
	return nil
}

func newTestScheduler() (*Scheduler, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	s := New(store, notifier)
	// Far-future base keeps real timers from firing during the test.
	s.Now = func() time.Time { return testNow }
	return s, store, notifier
}

func seedBooking(store *fakeStore, id uint, status bookingModel.BookingStatus) *bookingModel.Booking {
	email := "casey@example.com"
	custodian := uint(2)
	from := testNow.Add(time.Hour)
	to := testNow.Add(25 * time.Hour)
	b := &bookingModel.Booking{
		ID:              id,
		Name:            "Field Shoot",
		Status:          status,
		From:            &from,
		To:              &to,
		OrganizationID:  1,
		CustodianUserID: &custodian,
		CustodianUser: &userModel.User{
			ID:        custodian,
			Username:  "casey",
			LegalName: "Casey Field",
			Email:     &email,
		},
	}
	store.bookings[id] = b
	return b
}

func TestArmPersistsOneJobPerBooking(t *testing.T) {
	s, store, _ := newTestScheduler()
	defer s.Stop()

	at := testNow.Add(time.Hour)
	if err := s.Arm(context.Background(), 1, bookingModel.ReminderCheckoutDue, at); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if pending := store.pendingFor(1); len(pending) != 1 {
		t.Fatalf("pending jobs = %d, want 1", len(pending))
	}
	if store.activeHandles[1] == nil {
		t.Errorf("active reminder handle not recorded on booking")
	}

	// Re-arming supersedes, never stacks.
	if err := s.Arm(context.Background(), 1, bookingModel.ReminderCheckinDue, at.Add(time.Hour)); err != nil {
		t.Fatalf("re-Arm: %v", err)
	}
	pending := store.pendingFor(1)
	if len(pending) != 1 {
		t.Fatalf("pending jobs after re-arm = %d, want 1", len(pending))
	}
	if pending[0].Kind != bookingModel.ReminderCheckinDue {
		t.Errorf("surviving job kind = %s, want checkin_due", pending[0].Kind)
	}
}

func TestArmRejectsUnknownKind(t *testing.T) {
	s, _, _ := newTestScheduler()
	defer s.Stop()

	if err := s.Arm(context.Background(), 1, bookingModel.ReminderKind("nonsense"), testNow); err == nil {
		t.Error("Arm accepted an unknown reminder kind")
	}
}

func TestCancelDisarmsAndUnknownIsNoop(t *testing.T) {
	s, store, _ := newTestScheduler()
	defer s.Stop()

	if err := s.Arm(context.Background(), 1, bookingModel.ReminderCheckoutDue, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if err := s.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if pending := store.pendingFor(1); len(pending) != 0 {
		t.Errorf("pending jobs after cancel = %d, want 0", len(pending))
	}
	if store.activeHandles[1] != nil {
		t.Errorf("active reminder handle not cleared")
	}

	// Cancelling a booking with no job must not fail.
	if err := s.Cancel(context.Background(), 42); err != nil {
		t.Errorf("Cancel of unknown booking: %v", err)
	}
}

func TestFireCheckoutDueNotifiesAndChainsCheckin(t *testing.T) {
	s, store, notifier := newTestScheduler()
	defer s.Stop()

	b := seedBooking(store, 1, bookingModel.BookingStatusReserved)
	if err := s.Arm(context.Background(), 1, bookingModel.ReminderCheckoutDue, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	job := store.pendingFor(1)[0]

	s.fire(job.ID, 1)

	if len(notifier.sent) != 1 || notifier.sent[0].subject != "Booking checkout due" {
		t.Fatalf("sent = %+v, want one checkout-due mail", notifier.sent)
	}
	pending := store.pendingFor(1)
	if len(pending) != 1 || pending[0].Kind != bookingModel.ReminderCheckinDue {
		t.Fatalf("chained job = %+v, want checkin_due", pending)
	}
	if want := b.To.Add(-time.Hour); !pending[0].FireAt.Equal(want) {
		t.Errorf("chained fire_at = %v, want %v", pending[0].FireAt, want)
	}
}

func TestFireSkipsStaleBookingState(t *testing.T) {
	s, store, notifier := newTestScheduler()
	defer s.Stop()

	// Booking got cancelled after the reminder was armed.
	seedBooking(store, 1, bookingModel.BookingStatusCancelled)
	if err := s.Arm(context.Background(), 1, bookingModel.ReminderCheckoutDue, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	job := store.pendingFor(1)[0]

	s.fire(job.ID, 1)

	if len(notifier.sent) != 0 {
		t.Errorf("sent = %+v, want nothing for a cancelled booking", notifier.sent)
	}
	if len(store.pendingFor(1)) != 0 {
		t.Errorf("stale fire chained a new job")
	}
}

func TestFireCancelledJobIsNoop(t *testing.T) {
	s, store, notifier := newTestScheduler()
	defer s.Stop()

	seedBooking(store, 1, bookingModel.BookingStatusReserved)
	if err := s.Arm(context.Background(), 1, bookingModel.ReminderCheckoutDue, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	job := store.pendingFor(1)[0]
	if err := s.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	s.fire(job.ID, 1)

	if len(notifier.sent) != 0 {
		t.Errorf("cancelled job still notified: %+v", notifier.sent)
	}
}

func TestFireCheckinDueChainsOverdueAtWindowEnd(t *testing.T) {
	s, store, notifier := newTestScheduler()
	defer s.Stop()

	b := seedBooking(store, 1, bookingModel.BookingStatusOngoing)
	if err := s.Arm(context.Background(), 1, bookingModel.ReminderCheckinDue, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	job := store.pendingFor(1)[0]

	s.fire(job.ID, 1)

	if len(notifier.sent) != 1 || notifier.sent[0].subject != "Booking checkin due" {
		t.Fatalf("sent = %+v, want one checkin-due mail", notifier.sent)
	}
	pending := store.pendingFor(1)
	if len(pending) != 1 || pending[0].Kind != bookingModel.ReminderOverdue {
		t.Fatalf("chained job = %+v, want overdue", pending)
	}
	if !pending[0].FireAt.Equal(*b.To) {
		t.Errorf("overdue fire_at = %v, want window end %v", pending[0].FireAt, *b.To)
	}
}

func TestFireOverduePromotesBooking(t *testing.T) {
	s, store, notifier := newTestScheduler()
	defer s.Stop()

	seedBooking(store, 1, bookingModel.BookingStatusOngoing)

	var promoted []uint
	s.Promote = func(_ context.Context, orgID, id uint) error {
		promoted = append(promoted, id)
		return nil
	}

	if err := s.Arm(context.Background(), 1, bookingModel.ReminderOverdue, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	job := store.pendingFor(1)[0]

	s.fire(job.ID, 1)

	if len(promoted) != 1 || promoted[0] != 1 {
		t.Errorf("promoted = %v, want booking 1", promoted)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].subject != "Booking overdue" {
		t.Errorf("sent = %+v, want one overdue mail", notifier.sent)
	}
}

func TestRestorePendingReArmsTimers(t *testing.T) {
	s, store, _ := newTestScheduler()
	defer s.Stop()

	seedBooking(store, 1, bookingModel.BookingStatusReserved)
	seedBooking(store, 2, bookingModel.BookingStatusOngoing)
	r1 := &bookingModel.Reminder{BookingID: 1, Kind: bookingModel.ReminderCheckoutDue, FireAt: testNow.Add(time.Hour)}
	r2 := &bookingModel.Reminder{BookingID: 2, Kind: bookingModel.ReminderCheckinDue, FireAt: testNow.Add(2 * time.Hour)}
	if err := store.Create(context.Background(), r1); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(context.Background(), r2); err != nil {
		t.Fatal(err)
	}

	if err := s.RestorePending(context.Background()); err != nil {
		t.Fatalf("RestorePending: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) != 2 {
		t.Errorf("restored %d timers, want 2", len(s.timers))
	}
}
