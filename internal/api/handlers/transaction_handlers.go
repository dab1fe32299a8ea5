package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/services/session"
	"github.com/treviro/treviro_service/internal/domain/services/transaction"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
)

// TransactionHandler handles transaction endpoints
type TransactionHandler struct {
	registry *session.Registry
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(registry *session.Registry) *TransactionHandler {
	return &TransactionHandler{registry: registry}
}

type transactionRequest struct {
	InvestmentID *uuid.UUID       `json:"investment_id"`
	Type         string           `json:"type" binding:"required"`
	Amount       decimal.Decimal  `json:"amount"`
	Quantity     *decimal.Decimal `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
	Fees         decimal.Decimal  `json:"fees"`
	ProfitOrLoss *decimal.Decimal `json:"profit_or_loss"`
	Date         time.Time        `json:"date"`
}

func (r *transactionRequest) toInput() transaction.CreateInput {
	return transaction.CreateInput{
		InvestmentID: r.InvestmentID,
		Type:         entities.TransactionType(r.Type),
		Amount:       r.Amount,
		Quantity:     r.Quantity,
		PricePerUnit: r.PricePerUnit,
		Fees:         r.Fees,
		ProfitOrLoss: r.ProfitOrLoss,
		Date:         r.Date,
	}
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation), err.Error(), nil)
		return
	}

	tx, err := sess.Transactions.CreateTransaction(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tx, err := sess.Transactions.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// List handles GET /transactions, optionally filtered by investment_id.
func (h *TransactionHandler) List(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}

	if raw := c.Query("investment_id"); raw != "" {
		investmentID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation),
				"invalid investment_id parameter", nil)
			return
		}
		transactions, err := sess.Transactions.ListByInvestment(c.Request.Context(), investmentID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": transactions})
		return
	}

	page := bindPagination(c)
	transactions, err := sess.Transactions.ListTransactions(c.Request.Context(), page.GetLimit(), page.GetOffset())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"page":         page.Page,
		"page_size":    page.PageSize,
	})
}

// Update handles PUT /transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation), err.Error(), nil)
		return
	}

	tx, err := sess.Transactions.UpdateTransaction(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Delete handles DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sess.Transactions.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
