package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when looking up a non-existent product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidPrice is returned when a price is not strictly positive.
	ErrInvalidPrice = errors.New("price must be greater than zero")
)

// PriceDecimals is the number of decimal places prices are written with.
const PriceDecimals = 2

// Product is an item of the catalog.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string
}

// RecordID returns the product ID.
func (p Product) RecordID() string {
	return p.ID
}

// DisplayName returns the name used for keyword filtering.
func (p Product) DisplayName() string {
	return p.Name
}

// MarshalLine encodes the product as "id,name,price,category".
func (p Product) MarshalLine() (string, error) {
	return joinFields(p.ID, p.Name, p.Price.StringFixed(PriceDecimals), p.Category)
}

// ParseProductLine decodes a record line written by MarshalLine.
func ParseProductLine(line string) (Product, error) {
	fields := splitFields(line)
	if len(fields) != 4 {
		return Product{}, malformed("product: expected 4 fields, got %d", len(fields))
	}

	if fields[0] == "" || fields[1] == "" {
		return Product{}, malformed("product: empty id or name")
	}

	price, err := ParsePrice(fields[2])
	if err != nil {
		return Product{}, errors.Join(malformed("product %s: price %q", fields[0], fields[2]), err)
	}

	return Product{
		ID:       fields[0],
		Name:     fields[1],
		Price:    price,
		Category: fields[3],
	}, nil
}

// ParsePrice parses a decimal price and checks that it is strictly positive.
func ParsePrice(value string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, err //nolint:wrapcheck
	}

	if !price.IsPositive() {
		return decimal.Decimal{}, ErrInvalidPrice
	}

	return price, nil
}
