// internal/handlers/license.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ipforge/ipforge-backend/internal/services"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /licenses
func (h *LicenseHandler) OfferLicense(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.OfferLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	offer, err := h.licenseService.OfferLicense(account, &req)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.ForbiddenResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"offer": offer,
	})
}

// POST /licenses/:id/accept
func (h *LicenseHandler) AcceptLicense(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	licenseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	var req services.AcceptLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	offer, err := h.licenseService.AcceptLicense(account, licenseID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOfferNotFound):
			utils.NotFoundResponse(c, "License offer not found")
		case errors.Is(err, services.ErrAlreadyAccepted):
			utils.ConflictResponse(c, err.Error())
		case errors.Is(err, services.ErrInsufficientPayment),
			errors.Is(err, services.ErrInsufficientDeposit):
			utils.PaymentRequiredResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"offer": offer,
	})
}

// GET /licenses/:id
func (h *LicenseHandler) GetOffer(c *gin.Context) {
	licenseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	offer, err := h.licenseService.GetOffer(licenseID)
	if err != nil {
		if errors.Is(err, services.ErrOfferNotFound) {
			utils.NotFoundResponse(c, "License offer not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"offer": offer,
	})
}

// GET /ip-assets/:id/licenses
func (h *LicenseHandler) GetAssetOffers(c *gin.Context) {
	assetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	offers, total, err := h.licenseService.ListAssetOffers(assetID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(offers, total, params)
	utils.PaginatedResponse(c, result)
}
