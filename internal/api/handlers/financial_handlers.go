package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/services/financial"
	"github.com/treviro/treviro_service/internal/domain/services/session"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/sanitize"
)

// FinancialHandler handles income, expense and fixed-estimate endpoints.
// The three record kinds share request/response shapes and differ only in
// which service methods they dispatch to.
type FinancialHandler struct {
	registry *session.Registry
}

// NewFinancialHandler creates a new financial records handler
func NewFinancialHandler(registry *session.Registry) *FinancialHandler {
	return &FinancialHandler{registry: registry}
}

type financialRecordRequest struct {
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	IsExpense   bool            `json:"is_expense"`
}

func (r *financialRecordRequest) toInput() financial.RecordInput {
	return financial.RecordInput{
		Category:    r.Category,
		Amount:      r.Amount,
		Description: sanitize.String(r.Description),
		Date:        r.Date,
		IsExpense:   r.IsExpense,
	}
}

func (h *FinancialHandler) create(c *gin.Context, add func(sess *session.Session, input financial.RecordInput) (*entities.FinancialRecord, error)) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}

	var req financialRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation), err.Error(), nil)
		return
	}

	rec, err := add(sess, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *FinancialHandler) update(c *gin.Context, update func(sess *session.Session, id uuid.UUID, input financial.RecordInput) (*entities.FinancialRecord, error)) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req financialRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation), err.Error(), nil)
		return
	}

	rec, err := update(sess, id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *FinancialHandler) delete(c *gin.Context, del func(sess *session.Session, id uuid.UUID) error) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := del(sess, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinancialHandler) list(c *gin.Context, recordType entities.RecordType) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	page := bindPagination(c)

	records, err := sess.Records.ListRecords(c.Request.Context(), recordType, page.GetLimit(), page.GetOffset())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records":   records,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

// Income endpoints

func (h *FinancialHandler) CreateIncome(c *gin.Context) {
	h.create(c, func(sess *session.Session, input financial.RecordInput) (*entities.FinancialRecord, error) {
		return sess.Records.AddIncome(c.Request.Context(), input)
	})
}

func (h *FinancialHandler) UpdateIncome(c *gin.Context) {
	h.update(c, func(sess *session.Session, id uuid.UUID, input financial.RecordInput) (*entities.FinancialRecord, error) {
		return sess.Records.UpdateIncome(c.Request.Context(), id, input)
	})
}

func (h *FinancialHandler) DeleteIncome(c *gin.Context) {
	h.delete(c, func(sess *session.Session, id uuid.UUID) error {
		return sess.Records.DeleteIncome(c.Request.Context(), id)
	})
}

func (h *FinancialHandler) ListIncome(c *gin.Context) {
	h.list(c, entities.RecordTypeIncome)
}

// Expense endpoints

func (h *FinancialHandler) CreateExpense(c *gin.Context) {
	h.create(c, func(sess *session.Session, input financial.RecordInput) (*entities.FinancialRecord, error) {
		return sess.Records.AddExpense(c.Request.Context(), input)
	})
}

func (h *FinancialHandler) UpdateExpense(c *gin.Context) {
	h.update(c, func(sess *session.Session, id uuid.UUID, input financial.RecordInput) (*entities.FinancialRecord, error) {
		return sess.Records.UpdateExpense(c.Request.Context(), id, input)
	})
}

func (h *FinancialHandler) DeleteExpense(c *gin.Context) {
	h.delete(c, func(sess *session.Session, id uuid.UUID) error {
		return sess.Records.DeleteExpense(c.Request.Context(), id)
	})
}

func (h *FinancialHandler) ListExpenses(c *gin.Context) {
	h.list(c, entities.RecordTypeExpense)
}

// Fixed estimate endpoints

func (h *FinancialHandler) CreateFixedEstimate(c *gin.Context) {
	h.create(c, func(sess *session.Session, input financial.RecordInput) (*entities.FinancialRecord, error) {
		return sess.Records.AddFixedEstimate(c.Request.Context(), input)
	})
}

func (h *FinancialHandler) UpdateFixedEstimate(c *gin.Context) {
	h.update(c, func(sess *session.Session, id uuid.UUID, input financial.RecordInput) (*entities.FinancialRecord, error) {
		return sess.Records.UpdateFixedEstimate(c.Request.Context(), id, input)
	})
}

func (h *FinancialHandler) DeleteFixedEstimate(c *gin.Context) {
	h.delete(c, func(sess *session.Session, id uuid.UUID) error {
		return sess.Records.DeleteFixedEstimate(c.Request.Context(), id)
	})
}

func (h *FinancialHandler) ListFixedEstimates(c *gin.Context) {
	h.list(c, entities.RecordTypeFixedEstimate)
}

// ConfirmFixedEstimate handles POST /fixed-estimates/:id/confirm
func (h *FinancialHandler) ConfirmFixedEstimate(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rec, err := sess.Records.ConfirmFixedEstimate(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
