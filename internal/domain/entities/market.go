package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// SecurityType distinguishes stocks from funds in the listed catalog.
type SecurityType string

const (
	SecurityTypeStock SecurityType = "Stock"
	SecurityTypeFund  SecurityType = "Fund"
)

// ListedSecurity is a market-listed stock or fund maintained by the
// ingestion workers. Read-only from the application's perspective.
type ListedSecurity struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Symbol        string          `json:"symbol" db:"symbol"`
	LogoURL       string          `json:"logo_url" db:"logo_url"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Currency      string          `json:"currency" db:"currency"`
	ChangePercent decimal.Decimal `json:"change_percent" db:"change_percent"`
	Market        string          `json:"market" db:"market"`
	SecurityType  SecurityType    `json:"security_type" db:"security_type"`
	FundType      *string         `json:"fund_type,omitempty" db:"fund_type"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ExchangeRate is a currency pair rate, e.g. USD->EGP.
type ExchangeRate struct {
	Pair      string          `json:"pair" db:"pair"` // e.g. "USD_EGP"
	Rate      decimal.Decimal `json:"rate" db:"rate"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// GoldMarketPrices holds the latest scraped gold prices per unit.
type GoldMarketPrices struct {
	PricePerGramK24   decimal.Decimal `json:"price_per_gram_k24" db:"price_per_gram_k24"`
	PricePerGramK21   decimal.Decimal `json:"price_per_gram_k21" db:"price_per_gram_k21"`
	PricePerGoldPound decimal.Decimal `json:"price_per_gold_pound" db:"price_per_gold_pound"`
	PricePerOunce     decimal.Decimal `json:"price_per_ounce" db:"price_per_ounce"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// ErrorResponse is the standard error body returned by the API.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
