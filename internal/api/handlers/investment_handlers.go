package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/services/investment"
	"github.com/treviro/treviro_service/internal/domain/services/session"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/sanitize"
)

// InvestmentHandler handles investment endpoints
type InvestmentHandler struct {
	registry *session.Registry
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(registry *session.Registry) *InvestmentHandler {
	return &InvestmentHandler{registry: registry}
}

type createInvestmentRequest struct {
	Name           string          `json:"name" binding:"required"`
	Type           string          `json:"type" binding:"required"`
	AmountInvested decimal.Decimal `json:"amount_invested"`
	Currency       string          `json:"currency"`
	PurchaseDate   time.Time       `json:"purchase_date"`

	TickerSymbol          string          `json:"ticker_symbol"`
	NumberOfShares        decimal.Decimal `json:"number_of_shares"`
	PurchasePricePerShare decimal.Decimal `json:"purchase_price_per_share"`
	PurchaseFees          decimal.Decimal `json:"purchase_fees"`

	GoldType        string          `json:"gold_type"`
	QuantityInGrams decimal.Decimal `json:"quantity_in_grams"`

	CurrencyCode           string          `json:"currency_code"`
	ForeignCurrencyAmount  decimal.Decimal `json:"foreign_currency_amount"`
	ExchangeRateAtPurchase decimal.Decimal `json:"exchange_rate_at_purchase"`

	PropertyAddress string `json:"property_address"`
	PropertyType    string `json:"property_type"`

	DebtSubType  string          `json:"debt_sub_type"`
	Issuer       string          `json:"issuer"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	MaturityDate *time.Time      `json:"maturity_date"`
}

// Create handles POST /investments
func (h *InvestmentHandler) Create(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}

	var req createInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation), err.Error(), nil)
		return
	}

	inv, err := sess.AddInvestment(c.Request.Context(), investment.CreateInput{
		Name:                   sanitize.String(req.Name),
		Type:                   entities.InvestmentType(req.Type),
		AmountInvested:         req.AmountInvested,
		Currency:               req.Currency,
		PurchaseDate:           req.PurchaseDate,
		TickerSymbol:           req.TickerSymbol,
		NumberOfShares:         req.NumberOfShares,
		PurchasePricePerShare:  req.PurchasePricePerShare,
		PurchaseFees:           req.PurchaseFees,
		GoldType:               entities.GoldType(req.GoldType),
		QuantityInGrams:        req.QuantityInGrams,
		CurrencyCode:           req.CurrencyCode,
		ForeignCurrencyAmount:  req.ForeignCurrencyAmount,
		ExchangeRateAtPurchase: req.ExchangeRateAtPurchase,
		PropertyAddress:        sanitize.String(req.PropertyAddress),
		PropertyType:           entities.PropertyType(req.PropertyType),
		DebtSubType:            entities.DebtSubType(req.DebtSubType),
		Issuer:                 sanitize.String(req.Issuer),
		InterestRate:           req.InterestRate,
		MaturityDate:           req.MaturityDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// Get handles GET /investments/:id
func (h *InvestmentHandler) Get(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := sess.Investments.GetInvestment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// List handles GET /investments
func (h *InvestmentHandler) List(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	page := bindPagination(c)

	investments, err := sess.Investments.ListInvestments(c.Request.Context(), page.GetLimit(), page.GetOffset())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"investments": investments,
		"page":        page.Page,
		"page_size":   page.PageSize,
	})
}

// Delete handles DELETE /investments/:id
func (h *InvestmentHandler) Delete(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sess.RemoveInvestment(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type recordSaleRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Fees         decimal.Decimal `json:"fees"`
	Date         time.Time       `json:"date"`
}

// RecordSale handles POST /investments/:id/sales
func (h *InvestmentHandler) RecordSale(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation), err.Error(), nil)
		return
	}

	tx, err := sess.RecordSale(c.Request.Context(), id, investment.SaleInput{
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		Fees:         req.Fees,
		Date:         req.Date,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}
