package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/treviro/treviro_service/internal/domain/entities"
)

type exchangeRatesResponse struct {
	Rates       map[string]decimal.Decimal `json:"rates"`
	LastUpdated time.Time                  `json:"last_updated"`
}

// FetchExchangeRates returns the EGP rates published by the exchange rate
// source, keyed by pair (e.g. "USD_EGP").
func (c *Client) FetchExchangeRates(ctx context.Context) ([]*entities.ExchangeRate, time.Time, error) {
	var resp exchangeRatesResponse
	if err := c.fetchJSON(ctx, "exchange_rates", c.cfg.ExchangeRatesURL, &resp); err != nil {
		return nil, time.Time{}, err
	}

	asOf := resp.LastUpdated
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	rates := make([]*entities.ExchangeRate, 0, len(resp.Rates))
	for pair, rate := range resp.Rates {
		if rate.Sign() <= 0 {
			c.logger.Warnw("skipping non-positive exchange rate", "pair", pair, "rate", rate)
			continue
		}
		rates = append(rates, &entities.ExchangeRate{
			Pair:      pair,
			Rate:      rate,
			UpdatedAt: asOf,
		})
	}
	return rates, asOf, nil
}

type goldPricesResponse struct {
	PricePerGramK24   decimal.Decimal `json:"price_per_gram_k24"`
	PricePerGramK21   decimal.Decimal `json:"price_per_gram_k21"`
	PricePerGoldPound decimal.Decimal `json:"price_per_gold_pound"`
	PricePerOunce     decimal.Decimal `json:"price_per_ounce"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// gramsPerGoldPound is the weight of one Egyptian gold pound in 21K grams.
var gramsPerGoldPound = decimal.NewFromInt(8)

// FetchGoldPrices returns the latest gold prices per unit. The gold pound
// price is derived from the 21K gram price when the source omits it.
func (c *Client) FetchGoldPrices(ctx context.Context) (*entities.GoldMarketPrices, error) {
	var resp goldPricesResponse
	if err := c.fetchJSON(ctx, "gold_prices", c.cfg.GoldPricesURL, &resp); err != nil {
		return nil, err
	}

	pound := resp.PricePerGoldPound
	if pound.IsZero() && resp.PricePerGramK21.Sign() > 0 {
		pound = resp.PricePerGramK21.Mul(gramsPerGoldPound)
	}

	asOf := resp.LastUpdated
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	return &entities.GoldMarketPrices{
		PricePerGramK24:   resp.PricePerGramK24,
		PricePerGramK21:   resp.PricePerGramK21,
		PricePerGoldPound: pound,
		PricePerOunce:     resp.PricePerOunce,
		UpdatedAt:         asOf,
	}, nil
}

type stockQuotesResponse struct {
	Securities []struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Symbol        string          `json:"symbol"`
		LogoURL       string          `json:"logo_url"`
		Price         decimal.Decimal `json:"price"`
		Currency      string          `json:"currency"`
		ChangePercent decimal.Decimal `json:"change_percent"`
		Market        string          `json:"market"`
		SecurityType  string          `json:"security_type"`
		FundType      *string         `json:"fund_type"`
	} `json:"securities"`
	LastUpdated time.Time `json:"last_updated"`
}

// FetchStockQuotes returns the listed securities snapshot.
func (c *Client) FetchStockQuotes(ctx context.Context) ([]*entities.ListedSecurity, error) {
	var resp stockQuotesResponse
	if err := c.fetchJSON(ctx, "stock_quotes", c.cfg.StockQuotesURL, &resp); err != nil {
		return nil, err
	}

	asOf := resp.LastUpdated
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	securities := make([]*entities.ListedSecurity, 0, len(resp.Securities))
	for _, raw := range resp.Securities {
		if raw.Symbol == "" {
			continue
		}
		id := raw.ID
		if id == "" {
			id = raw.Symbol
		}
		secType := entities.SecurityType(raw.SecurityType)
		if secType != entities.SecurityTypeStock && secType != entities.SecurityTypeFund {
			secType = entities.SecurityTypeStock
		}
		securities = append(securities, &entities.ListedSecurity{
			ID:            id,
			Name:          raw.Name,
			Symbol:        raw.Symbol,
			LogoURL:       raw.LogoURL,
			Price:         raw.Price,
			Currency:      raw.Currency,
			ChangePercent: raw.ChangePercent,
			Market:        raw.Market,
			SecurityType:  secType,
			FundType:      raw.FundType,
			UpdatedAt:     asOf,
		})
	}
	return securities, nil
}
