package booking

import (
	"testing"
	"time"
)

func TestBookingCreateRequestAllowsMissingWindow(t *testing.T) {
	custodian := uint(7)
	req := BookingCreateRequest{
		Name:            "Draft without window",
		CustodianUserID: &custodian,
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v, want window-less drafts accepted", err)
	}
}

func TestBookingCreateRequestRejectsDualCustodian(t *testing.T) {
	u, tm := uint(1), uint(2)
	req := BookingCreateRequest{
		Name:                  "Shoot",
		CustodianUserID:       &u,
		CustodianTeamMemberID: &tm,
	}
	if err := req.Validate(); err == nil {
		t.Fatal("Validate accepted both custodian kinds")
	}
}

func TestExtendRequestRequiresNewTo(t *testing.T) {
	var req ExtendRequest
	if err := req.Validate(); err == nil {
		t.Fatal("Validate accepted a zero new_to")
	}
	req.NewTo = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
