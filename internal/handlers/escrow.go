// internal/handlers/escrow.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/services"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

type EscrowHandler struct {
	escrowService *services.EscrowService
	eventService  *services.EventService
}

func NewEscrowHandler(escrowService *services.EscrowService, eventService *services.EventService) *EscrowHandler {
	return &EscrowHandler{
		escrowService: escrowService,
		eventService:  eventService,
	}
}

// GET /escrow/balance
func (h *EscrowHandler) GetBalance(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	balance, err := h.escrowService.BalanceOf(account.Address)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address": account.Address,
		"balance": balance,
	})
}

// POST /escrow/withdraw
func (h *EscrowHandler) Withdraw(c *gin.Context) {
	account, exists := utils.GetAccountFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	amount, err := h.escrowService.Withdraw(account)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFunds):
			utils.BadRequestResponse(c, err.Error(), nil)
		case errors.Is(err, services.ErrTransferFailed):
			utils.ErrorResponse(c, 502, "TRANSFER_FAILED", err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"payee":  account.Address,
		"amount": amount,
	})
}

// GET /events
func (h *EscrowHandler) GetEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var eventType *models.EventType
	if t := c.Query("type"); t != "" {
		et := models.EventType(t)
		eventType = &et
	}

	events, total, err := h.eventService.List(params, eventType)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(events, total, params)
	utils.PaginatedResponse(c, result)
}
