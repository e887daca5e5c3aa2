package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned when looking up a non-existent order.
var ErrOrderNotFound = errors.New("order not found")

// OrderTimeLayout is the layout of the createdAt field. The layout carries no zone,
// so timestamps are always written and read in UTC. Local wall-clock times would be
// ambiguous in the hour repeated when daylight saving time ends.
const OrderTimeLayout = "2006-01-02 15:04:05"

// Order records the purchase of one product. Price is captured when the order is placed
// and does not follow later product price changes.
type Order struct {
	ID         string
	CustomerID string
	ProductID  string
	Price      decimal.Decimal
	CreatedAt  time.Time
}

// RecordID returns the order ID.
func (o Order) RecordID() string {
	return o.ID
}

// OwnerID returns the ID of the customer who placed the order.
func (o Order) OwnerID() string {
	return o.CustomerID
}

// MarshalLine encodes the order as "id,customerId,productId,price,createdAt".
func (o Order) MarshalLine() (string, error) {
	return joinFields(
		o.ID,
		o.CustomerID,
		o.ProductID,
		o.Price.StringFixed(PriceDecimals),
		o.CreatedAt.UTC().Format(OrderTimeLayout),
	)
}

// ParseOrderLine decodes a record line written by MarshalLine. Lines in the older
// four-field layout without a price are rejected.
func ParseOrderLine(line string) (Order, error) {
	fields := splitFields(line)
	if len(fields) != 5 {
		return Order{}, malformed("order: expected 5 fields, got %d", len(fields))
	}

	if fields[0] == "" {
		return Order{}, malformed("order: empty id")
	}

	price, err := ParsePrice(fields[3])
	if err != nil {
		return Order{}, errors.Join(malformed("order %s: price %q", fields[0], fields[3]), err)
	}

	createdAt, err := time.ParseInLocation(OrderTimeLayout, fields[4], time.UTC)
	if err != nil {
		return Order{}, errors.Join(malformed("order %s: created at %q", fields[0], fields[4]), err)
	}

	return Order{
		ID:         fields[0],
		CustomerID: fields[1],
		ProductID:  fields[2],
		Price:      price,
		CreatedAt:  createdAt,
	}, nil
}
