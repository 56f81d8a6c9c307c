package domain

import "github.com/shopspring/decimal"

// Product is the catalog view the saga prices line items with.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}
