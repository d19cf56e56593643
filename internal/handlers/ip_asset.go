// internal/handlers/ip_asset.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/services"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

type IPAssetHandler struct {
	registryService *services.RegistryService
	storageService  *services.StorageService
}

func NewIPAssetHandler(registryService *services.RegistryService, storageService *services.StorageService) *IPAssetHandler {
	return &IPAssetHandler{
		registryService: registryService,
		storageService:  storageService,
	}
}

// POST /ip-assets
func (h *IPAssetHandler) RegisterAsset(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	asset, err := h.registryService.RegisterAsset(account, &req)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.ForbiddenResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"asset": asset,
	})
}

// GET /ip-assets/:id
func (h *IPAssetHandler) GetAsset(c *gin.Context) {
	assetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	asset, err := h.registryService.GetAsset(assetID)
	if err != nil {
		if errors.Is(err, services.ErrAssetNotFound) {
			utils.NotFoundResponse(c, "IP asset not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"asset": asset,
	})
}

// GET /ip-assets
func (h *IPAssetHandler) GetAssets(c *gin.Context) {
	params := services.AssetSearchParams{
		PaginationParams:  utils.GetPaginationParams(c),
		CollectionAddress: c.Query("collection"),
		OwnerAddress:      c.Query("owner"),
	}

	if ipType := c.Query("ip_type"); ipType != "" {
		t := models.IPType(ipType)
		if !t.Valid() {
			utils.BadRequestResponse(c, "Unknown ip_type filter", nil)
			return
		}
		params.IPType = &t
	}

	assets, total, err := h.registryService.SearchAssets(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(assets, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// POST /ip-assets/upload
func (h *IPAssetHandler) UploadContent(c *gin.Context) {
	if _, exists := utils.GetAccountFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file", err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadAssetContent(file, header)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"upload": result,
	})
}
