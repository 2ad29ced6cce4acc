package booking

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// BookingCreateRequest opens a DRAFT booking. The time window is optional
// here; it only becomes mandatory at reserve time.
type BookingCreateRequest struct {
	Name                  string     `json:"name" validate:"required,min=1,max=255"`
	Description           string     `json:"description" validate:"omitempty,max=2000"`
	From                  *time.Time `json:"from"`
	To                    *time.Time `json:"to"`
	CustodianUserID       *uint      `json:"custodian_user_id" validate:"omitempty,gt=0"`
	CustodianTeamMemberID *uint      `json:"custodian_team_member_id" validate:"omitempty,gt=0"`
	AssetIDs              []string   `json:"asset_ids" validate:"omitempty,dive,uuid4"`
}

func (req *BookingCreateRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return err
	}
	// Tag language cannot express the either-or rule.
	if req.CustodianUserID != nil && req.CustodianTeamMemberID != nil {
		return fmt.Errorf("custodian must be either a user or a team member, not both")
	}
	return nil
}

// BookingUpdateRequest edits a DRAFT booking's header fields. Nil fields
// are left unchanged, so a draft opened without a window can pick one up
// later.
type BookingUpdateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
}

func (req *BookingUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

type AssetListRequest struct {
	AssetIDs []string `json:"asset_ids" validate:"required,min=1,dive,uuid4"`
}

func (req *AssetListRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

type ExtendRequest struct {
	NewTo time.Time `json:"new_to" validate:"required"`
}

func (req *ExtendRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

func (req *CancelRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}
