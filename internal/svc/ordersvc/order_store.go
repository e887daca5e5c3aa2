package ordersvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/infra/metrics"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
)

// StoreName names the orders store.
const StoreName = "orders"

// Codec converts orders to and from record lines.
var Codec = record.LineCodec[domain.Order]{
	Encode: domain.Order.MarshalLine,
	Decode: domain.ParseOrderLine,
}

// NewStore opens the orders store.
func NewStore(
	ctx context.Context,
	backendFactory record.BackendFactory,
	m *metrics.StoreMetrics,
) (*record.Store[domain.Order], error) {
	backend, err := backendFactory(ctx, StoreName)
	if err != nil {
		return nil, fmt.Errorf("new backend: %w", err)
	}

	store, err := record.NewStore(ctx, StoreName, backend, Codec, record.WithMetrics[domain.Order](m))
	if err != nil {
		_ = backend.Close()

		return nil, fmt.Errorf("new store: %w", err)
	}

	return store, nil
}
