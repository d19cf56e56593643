// internal/handlers/collection.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ipforge/ipforge-backend/internal/services"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

type CollectionHandler struct {
	registryService *services.RegistryService
}

func NewCollectionHandler(registryService *services.RegistryService) *CollectionHandler {
	return &CollectionHandler{
		registryService: registryService,
	}
}

// POST /collections
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	record, err := h.registryService.CreateCollection(account, &req)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.ForbiddenResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"collection": record,
	})
}

// GET /collections/:address
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	address := c.Param("address")

	record, err := h.registryService.GetCollection(address)
	if err != nil {
		if errors.Is(err, services.ErrCollectionNotFound) {
			utils.NotFoundResponse(c, "Collection not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"collection": record,
	})
}
