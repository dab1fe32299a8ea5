package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treviro/treviro_service/internal/domain/repositories"
)

// MarketHandler serves the reference data maintained by the ingestion workers.
type MarketHandler struct {
	repo repositories.MarketDataRepository
}

// NewMarketHandler creates a new market data handler
func NewMarketHandler(repo repositories.MarketDataRepository) *MarketHandler {
	return &MarketHandler{repo: repo}
}

// ListSecurities handles GET /market/securities
func (h *MarketHandler) ListSecurities(c *gin.Context) {
	page := bindPagination(c)

	securities, err := h.repo.ListSecurities(c.Request.Context(), page.GetLimit(), page.GetOffset())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"securities": securities,
		"page":       page.Page,
		"page_size":  page.PageSize,
	})
}

// ListExchangeRates handles GET /market/exchange-rates
func (h *MarketHandler) ListExchangeRates(c *gin.Context) {
	rates, err := h.repo.ListExchangeRates(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

// GetGoldPrices handles GET /market/gold-prices
func (h *MarketHandler) GetGoldPrices(c *gin.Context) {
	prices, err := h.repo.GetGoldPrices(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if prices == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gold prices not available yet"})
		return
	}
	c.JSON(http.StatusOK, prices)
}
