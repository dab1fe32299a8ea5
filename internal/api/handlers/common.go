package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/services/session"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/pagination"
)

// getUserID extracts and validates user ID from context
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	switch v := userIDVal.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("invalid user ID type in context")
	}
}

// userSession resolves the caller's service session, aborting with 401 when
// the auth middleware did not run.
func userSession(c *gin.Context, registry *session.Registry) (*session.Session, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return nil, false
	}
	return registry.ForUser(userID), true
}

// parseIDParam parses a uuid path parameter, aborting with 400 on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeValidation),
			"invalid "+name+" parameter", nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindPagination binds page/page_size query params with defaults.
func bindPagination(c *gin.Context) *pagination.Params {
	p := &pagination.Params{}
	c.ShouldBindQuery(p)
	p.Normalize()
	return p
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// respondServiceError maps a service error to its HTTP status and body.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		respondError(c, svcErr.StatusCode, string(svcErr.Code), svcErr.Message, svcErr.Details)
		return
	}
	respondError(c, http.StatusInternalServerError, string(apperrors.ErrCodeInternal),
		"internal server error", nil)
}
