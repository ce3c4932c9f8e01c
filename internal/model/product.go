package model

import "github.com/shopspring/decimal"

// ProductType classifies concessions for display.
type ProductType string

const (
	ProductSnack ProductType = "snack"
	ProductDrink ProductType = "drink"
)

// Product is a concession sold alongside tickets.
type Product struct {
	ID    uint64          // products.id
	Name  string          // products.name
	Type  ProductType     // products.type
	Price decimal.Decimal // products.price_cents
}
