package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentType discriminates the closed set of investment variants.
type InvestmentType string

const (
	InvestmentTypeRealEstate InvestmentType = "real_estate"
	InvestmentTypeGold       InvestmentType = "gold"
	InvestmentTypeStocks     InvestmentType = "stocks"
	InvestmentTypeCurrencies InvestmentType = "currencies"
	InvestmentTypeDebt       InvestmentType = "debt_instruments"
)

// AllInvestmentTypes lists every supported variant.
var AllInvestmentTypes = []InvestmentType{
	InvestmentTypeRealEstate,
	InvestmentTypeGold,
	InvestmentTypeStocks,
	InvestmentTypeCurrencies,
	InvestmentTypeDebt,
}

// Valid reports whether t is one of the five supported variants.
func (t InvestmentType) Valid() bool {
	switch t {
	case InvestmentTypeRealEstate, InvestmentTypeGold, InvestmentTypeStocks,
		InvestmentTypeCurrencies, InvestmentTypeDebt:
		return true
	}
	return false
}

// GoldType is the unit a gold holding is denominated in.
type GoldType string

const (
	GoldTypeK24   GoldType = "K24"
	GoldTypeK21   GoldType = "K21"
	GoldTypePound GoldType = "Pound"
	GoldTypeOunce GoldType = "Ounce"
)

// PropertyType classifies a real estate holding.
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "Residential"
	PropertyTypeCommercial  PropertyType = "Commercial"
	PropertyTypeLand        PropertyType = "Land"
)

// DebtSubType classifies a debt instrument.
type DebtSubType string

const (
	DebtSubTypeCertificate  DebtSubType = "Certificate"
	DebtSubTypeTreasuryBill DebtSubType = "Treasury Bill"
	DebtSubTypeBond         DebtSubType = "Bond"
	DebtSubTypeOther        DebtSubType = "Other"
)

// Investment is the persisted form of any of the five variants.
// Common fields are always set; variant fields are pointers and only the
// set belonging to Type is populated. Validation is variant-exhaustive.
type Investment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	Type           InvestmentType  `json:"type" db:"type"`
	AmountInvested decimal.Decimal `json:"amount_invested" db:"amount_invested"`
	Currency       string          `json:"currency" db:"currency"`
	PurchaseDate   time.Time       `json:"purchase_date" db:"purchase_date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	// Stocks
	TickerSymbol          *string          `json:"ticker_symbol,omitempty" db:"ticker_symbol"`
	NumberOfShares        *decimal.Decimal `json:"number_of_shares,omitempty" db:"number_of_shares"`
	PurchasePricePerShare *decimal.Decimal `json:"purchase_price_per_share,omitempty" db:"purchase_price_per_share"`
	PurchaseFees          *decimal.Decimal `json:"purchase_fees,omitempty" db:"purchase_fees"`

	// Gold
	GoldType        *GoldType        `json:"gold_type,omitempty" db:"gold_type"`
	QuantityInGrams *decimal.Decimal `json:"quantity_in_grams,omitempty" db:"quantity_in_grams"`

	// Currencies
	CurrencyCode           *string          `json:"currency_code,omitempty" db:"currency_code"`
	ForeignCurrencyAmount  *decimal.Decimal `json:"foreign_currency_amount,omitempty" db:"foreign_currency_amount"`
	ExchangeRateAtPurchase *decimal.Decimal `json:"exchange_rate_at_purchase,omitempty" db:"exchange_rate_at_purchase"`

	// Real Estate
	PropertyAddress *string       `json:"property_address,omitempty" db:"property_address"`
	PropertyType    *PropertyType `json:"property_type,omitempty" db:"property_type"`

	// Debt Instruments
	DebtSubType  *DebtSubType     `json:"debt_sub_type,omitempty" db:"debt_sub_type"`
	Issuer       *string          `json:"issuer,omitempty" db:"issuer"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty" db:"interest_rate"`
	MaturityDate *time.Time       `json:"maturity_date,omitempty" db:"maturity_date"`
	IsMatured    bool             `json:"is_matured" db:"is_matured"`
}

// IsMaturedDebt reports whether the investment is a matured debt instrument.
// Matured debt is excluded from the invested total and counted as cash.
func (i *Investment) IsMaturedDebt() bool {
	return i.Type == InvestmentTypeDebt && i.IsMatured
}
