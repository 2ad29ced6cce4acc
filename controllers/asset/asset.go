package asset

import (
	"errors"

	"asset-booking/constants"
	"asset-booking/logger"
	"asset-booking/middleware"
	assetModel "asset-booking/models/asset"
	assetService "asset-booking/services/asset"
	"asset-booking/types"
	assetTypes "asset-booking/types/asset"
	"asset-booking/utils"

	"github.com/gofiber/fiber/v2"
)

// AssetController handles asset and kit inventory HTTP requests
type AssetController struct {
	Service *assetService.Service
	Logger  *logger.AsyncLogger
}

// NewAssetController creates a new asset controller
func NewAssetController(svc *assetService.Service, asyncLogger *logger.AsyncLogger) *AssetController {
	return &AssetController{
		Service: svc,
		Logger:  asyncLogger,
	}
}

// isInventoryAdmin gates inventory mutation on a management permission.
func isInventoryAdmin(c *fiber.Ctx) bool {
	for _, p := range constants.OrganizationAdminPermissions {
		if middleware.CheckPermissionInController(c, p) {
			return true
		}
	}
	return false
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
		Status:  fiber.StatusForbidden,
		Message: "Inventory changes require a management role",
		Data:    nil,
	})
}

// Store registers a new asset in the caller's organization
func (ac *AssetController) Store(c *fiber.Ctx) error {
	if !isInventoryAdmin(c) {
		return forbidden(c)
	}

	var req assetTypes.AssetCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	u, err := utils.RequestUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
			Data:    nil,
		})
	}

	a := assetModel.Asset{
		Title:          req.Title,
		OrganizationID: u.OrganizationID,
		KitID:          req.KitID,
		Status:         assetModel.StatusAvailable,
	}
	if req.Description != "" {
		a.Description = &req.Description
	}

	if err := ac.Service.Create(c.Context(), &a); err != nil {
		logger.Error("Failed to create asset", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create asset",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Asset created successfully",
		Data:    a,
	})
}

// StoreKit registers a new kit
func (ac *AssetController) StoreKit(c *fiber.Ctx) error {
	if !isInventoryAdmin(c) {
		return forbidden(c)
	}

	var req assetTypes.KitCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	u, err := utils.RequestUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
			Data:    nil,
		})
	}

	k := assetModel.Kit{
		Name:           req.Name,
		OrganizationID: u.OrganizationID,
		Status:         assetModel.StatusAvailable,
	}
	if err := ac.Service.CreateKit(c.Context(), &k); err != nil {
		logger.Error("Failed to create kit", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create kit",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Kit created successfully",
		Data:    k,
	})
}

// Index lists the organization's assets
func (ac *AssetController) Index(c *fiber.Ctx) error {
	u, err := utils.RequestUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
			Data:    nil,
		})
	}

	assets, err := ac.Service.List(c.Context(), u.OrganizationID)
	if err != nil {
		logger.Error("Failed to list assets", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list assets",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Assets retrieved successfully",
		Data:    assets,
	})
}

// Show returns one asset
func (ac *AssetController) Show(c *fiber.Ctx) error {
	u, err := utils.RequestUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: err.Error(),
			Data:    nil,
		})
	}

	a, err := ac.Service.Get(c.Context(), u.OrganizationID, c.Params("id"))
	if err != nil {
		if errors.Is(err, assetService.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Asset not found",
				Data:    nil,
			})
		}
		logger.Error("Failed to load asset", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to load asset",
			Data:    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Asset retrieved successfully",
		Data:    a,
	})
}
