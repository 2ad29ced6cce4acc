package routes

import (
	"context"
	"time"

	"asset-booking/constants"
	assetController "asset-booking/controllers/asset"
	bookingController "asset-booking/controllers/booking"
	"asset-booking/logger"
	"asset-booking/middleware"
	assetService "asset-booking/services/asset"
	bookingService "asset-booking/services/booking"
	noteService "asset-booking/services/note"
	"asset-booking/services/notify"
	"asset-booking/services/scheduler"
	userService "asset-booking/services/user"
	"asset-booking/types"
	"asset-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) *scheduler.Scheduler {
	asyncLogger := logger.NewAsyncLogger(db)

	notifier := notify.NewConsole()
	assets := assetService.NewService(db)
	users := userService.NewDirectory(db)
	notes := noteService.NewService(db)

	svc := bookingService.NewService(
		bookingService.NewGormStore(db),
		assets,
		users,
		notes,
		notifier,
	)

	// The scheduler re-enters the state machine on overdue promotion, and
	// the state machine arms reminders on every transition; wire the cycle
	// after both exist.
	sched := scheduler.New(scheduler.NewGormStore(db), notifier)
	sched.Promote = svc.PromoteOverdue
	svc.Scheduler = sched

	bookings := bookingController.NewBookingController(svc, notes, asyncLogger)
	inventory := assetController.NewAssetController(assets, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Persist a request log row for every API call
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		asyncLogger.Log(types.LogEntry{
			Method:          c.Method(),
			URL:             c.OriginalURL(),
			RequestBody:     string(c.Body()),
			ResponseBody:    string(c.Response().Body()),
			RequestHeaders:  string(c.Request().Header.Header()),
			ResponseHeaders: string(c.Response().Header.Header()),
			StatusCode:      c.Response().StatusCode(),
			CreatedAt:       time.Now(),
		})
		return err
	})

	// Re-arm reminder jobs persisted before the last shutdown
	if err := sched.RestorePending(context.Background()); err != nil {
		logger.Error("Failed to restore pending reminders", err)
	}

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "asset-booking",
			"status":  "ok",
		})
	})

	api := app.Group("/api")

	// Profile of the authenticated caller, with the permission set the
	// token carries.
	api.Get("/me", middleware.RequireAnyPermission(), func(c *fiber.Ctx) error {
		u, err := utils.RequestUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: err.Error(),
				Data:    nil,
			})
		}
		return c.JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Profile retrieved successfully",
			Data: fiber.Map{
				"user":        u,
				"permissions": middleware.GetUserPermissions(c),
			},
		})
	})

	/*=============================================================================
	| Booking Routes
	===============================================================================*/
	bookingGroup := api.Group("/bookings").Use(middleware.RequirePermissions(
		constants.BookingPermissions...,
	))

	bookingGroup.Post("/", bookings.Store)
	bookingGroup.Get("/", bookings.Index)
	bookingGroup.Get("/:id", bookings.Show)
	bookingGroup.Patch("/:id", bookings.Update)
	bookingGroup.Delete("/:id", bookings.Destroy)
	bookingGroup.Get("/:id/notes", bookings.ListNotes)

	bookingGroup.Post("/:id/assets", bookings.AddAssets)
	bookingGroup.Delete("/:id/assets", bookings.RemoveAssets)

	bookingGroup.Post("/:id/reserve", bookings.Reserve)
	bookingGroup.Post("/:id/checkout", bookings.Checkout)
	bookingGroup.Post("/:id/checkin", bookings.CheckIn)
	bookingGroup.Post("/:id/partial-checkin", bookings.PartialCheckIn)
	bookingGroup.Post("/:id/extend", bookings.Extend)
	bookingGroup.Post("/:id/cancel", bookings.Cancel)
	bookingGroup.Post("/:id/archive", bookings.Archive)
	bookingGroup.Post("/:id/revert", bookings.Revert)

	/*=============================================================================
	| Asset Routes
	===============================================================================*/
	// Browsing the inventory is open to any authenticated user; mutation
	// is gated on a management permission inside the controller.
	assetGroup := api.Group("/assets").Use(middleware.RequireAnyPermission())

	assetGroup.Get("/", inventory.Index)
	assetGroup.Get("/:id", inventory.Show)
	assetGroup.Post("/", inventory.Store)
	assetGroup.Post("/kits", inventory.StoreKit)

	return sched
}
