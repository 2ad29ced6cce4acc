package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"asset-booking/logger"
	bookingModel "asset-booking/models/booking"
	userModel "asset-booking/models/user"
	bookingService "asset-booking/services/booking"
	noteService "asset-booking/services/note"
	"asset-booking/types"
	bookingTypes "asset-booking/types/booking"
	"asset-booking/utils"

	"github.com/gofiber/fiber/v2"
)

// BookingController handles booking lifecycle HTTP requests
type BookingController struct {
	Service *bookingService.Service
	Notes   *noteService.Service
	Logger  *logger.AsyncLogger
}

// NewBookingController creates a new booking controller
func NewBookingController(svc *bookingService.Service, notes *noteService.Service, asyncLogger *logger.AsyncLogger) *BookingController {
	return &BookingController{
		Service: svc,
		Notes:   notes,
		Logger:  asyncLogger,
	}
}

// actor resolves the authenticated user into the identity the state
// machine checks permissions against.
func (bc *BookingController) actor(c *fiber.Ctx) (*userModel.User, bookingService.Actor, error) {
	u, err := utils.RequestUser(c)
	if err != nil {
		return nil, bookingService.Actor{}, err
	}
	email := ""
	if u.Email != nil {
		email = *u.Email
	}
	return u, bookingService.Actor{
		UserID:    u.ID,
		Email:     email,
		IsManager: u.Role.IsManager(),
	}, nil
}

func bookingID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid booking id")
	}
	return uint(id), nil
}

// respondError maps business errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, bookingService.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, bookingService.ErrPermission):
		status = fiber.StatusForbidden
	case errors.Is(err, bookingService.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, bookingService.ErrIllegalTransition),
		errors.Is(err, bookingService.ErrStateChanged),
		bookingService.IsConflict(err):
		status = fiber.StatusConflict
	default:
		logger.Error("Booking operation failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
			Data:    nil,
		})
	}
	return c.Status(status).JSON(types.ApiResponse{
		Status:  status,
		Message: err.Error(),
		Data:    nil,
	})
}

func unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: err.Error(),
		Data:    nil,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
		Data:    nil,
	})
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Store creates a new DRAFT booking
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}

	in := bookingService.CreateInput{
		Name:                  req.Name,
		From:                  req.From,
		To:                    req.To,
		AssetIDs:              req.AssetIDs,
		CustodianUserID:       req.CustodianUserID,
		CustodianTeamMemberID: req.CustodianTeamMemberID,
	}
	if req.Description != "" {
		in.Description = &req.Description
	}

	b, err := bc.Service.Create(c.Context(), actor, u.OrganizationID, in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking created successfully",
		Data:    b,
	})
}

// Index lists bookings visible to the caller. Supports ?status=RESERVED
// (repeatable, comma separated), ?window=today, and ?from/?to RFC3339
// bounds.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}

	var q bookingService.ListQuery
	for _, raw := range splitCSV(c.Query("status")) {
		st := bookingModel.BookingStatus(raw)
		if !st.IsValid() {
			return badRequest(c, "unknown status "+raw)
		}
		q.Statuses = append(q.Statuses, st)
	}

	if c.Query("window") == "today" {
		from, to := utils.DayBounds(bc.Service.Now())
		q.WindowFrom, q.WindowTo = &from, &to
	} else {
		if q.WindowFrom, err = utils.ParseTimeParam(c.Query("from")); err != nil {
			return badRequest(c, err.Error())
		}
		if q.WindowTo, err = utils.ParseTimeParam(c.Query("to")); err != nil {
			return badRequest(c, err.Error())
		}
	}

	bookings, err := bc.Service.List(c.Context(), actor, u.OrganizationID, q)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Bookings retrieved successfully", bookings)
}

// Update edits a DRAFT booking's name, description or time window
func (bc *BookingController) Update(c *fiber.Ctx) error {
	var req bookingTypes.BookingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, err := bc.Service.Update(c.Context(), actor, u.OrganizationID, id, bookingService.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		From:        req.From,
		To:          req.To,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Booking updated successfully", b)
}

// Show returns one booking with its assets, custodian and ledger
func (bc *BookingController) Show(c *fiber.Ctx) error {
	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, err := bc.Service.Get(c.Context(), actor, u.OrganizationID, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Booking retrieved successfully", b)
}

// ListNotes returns a booking's audit trail, newest first
func (bc *BookingController) ListNotes(c *fiber.Ctx) error {
	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	// Visibility runs through the booking lookup first.
	if _, err := bc.Service.Get(c.Context(), actor, u.OrganizationID, id); err != nil {
		return respondError(c, err)
	}
	notes, err := bc.Notes.ByBooking(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Booking notes retrieved successfully", notes)
}

// AddAssets attaches assets to a DRAFT booking
func (bc *BookingController) AddAssets(c *fiber.Ctx) error {
	return bc.assetMutation(c, bc.Service.AddAssets, "Assets added to booking")
}

// RemoveAssets detaches assets from a DRAFT booking
func (bc *BookingController) RemoveAssets(c *fiber.Ctx) error {
	return bc.assetMutation(c, bc.Service.RemoveAssets, "Assets removed from booking")
}

func (bc *BookingController) assetMutation(
	c *fiber.Ctx,
	op func(ctx context.Context, actor bookingService.Actor, orgID, id uint, assetIDs []string) (*bookingModel.Booking, error),
	message string,
) error {
	var req bookingTypes.AssetListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, err := op(c.Context(), actor, u.OrganizationID, id, req.AssetIDs)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, message, b)
}

// transition runs a body-less lifecycle operation.
func (bc *BookingController) transition(
	c *fiber.Ctx,
	op func(ctx context.Context, actor bookingService.Actor, orgID, id uint) (*bookingModel.Booking, error),
	message string,
) error {
	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, err := op(c.Context(), actor, u.OrganizationID, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, message, b)
}

// Reserve moves DRAFT to RESERVED after conflict checking
func (bc *BookingController) Reserve(c *fiber.Ctx) error {
	return bc.transition(c, bc.Service.Reserve, "Booking reserved successfully")
}

// Checkout moves RESERVED to ONGOING and flips assets to CHECKED_OUT
func (bc *BookingController) Checkout(c *fiber.Ctx) error {
	return bc.transition(c, bc.Service.Checkout, "Booking checked out successfully")
}

// CheckIn completes the booking and returns remaining assets
func (bc *BookingController) CheckIn(c *fiber.Ctx) error {
	return bc.transition(c, bc.Service.CheckIn, "Booking checked in successfully")
}

// Archive moves COMPLETE to ARCHIVED
func (bc *BookingController) Archive(c *fiber.Ctx) error {
	return bc.transition(c, bc.Service.Archive, "Booking archived successfully")
}

// Revert moves RESERVED back to DRAFT
func (bc *BookingController) Revert(c *fiber.Ctx) error {
	return bc.transition(c, bc.Service.RevertToDraft, "Booking reverted to draft")
}

// PartialCheckIn records an early return of a subset of the booking's assets
func (bc *BookingController) PartialCheckIn(c *fiber.Ctx) error {
	var req bookingTypes.AssetListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, err := bc.Service.PartialCheckIn(c.Context(), actor, u.OrganizationID, id, req.AssetIDs)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Assets checked in", b)
}

// Extend pushes the booking's end out to a new instant
func (bc *BookingController) Extend(c *fiber.Ctx) error {
	var req bookingTypes.ExtendRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, err := bc.Service.Extend(c.Context(), actor, u.OrganizationID, id, req.NewTo)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Booking extended successfully", b)
}

// Cancel aborts a booking from any non-terminal status
func (bc *BookingController) Cancel(c *fiber.Ctx) error {
	var req bookingTypes.CancelRequest
	// Body is optional for cancel
	_ = c.BodyParser(&req)
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, err := bc.Service.Cancel(c.Context(), actor, u.OrganizationID, id, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Booking cancelled successfully", b)
}

// Destroy permanently deletes a booking and its ledger
func (bc *BookingController) Destroy(c *fiber.Ctx) error {
	u, actor, err := bc.actor(c)
	if err != nil {
		return unauthorized(c, err)
	}
	id, err := bookingID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := bc.Service.Delete(c.Context(), actor, u.OrganizationID, id); err != nil {
		return respondError(c, err)
	}
	return ok(c, "Booking deleted successfully", nil)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
