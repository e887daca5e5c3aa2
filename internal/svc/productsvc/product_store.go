package productsvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/infra/metrics"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
)

// StoreName names the products store.
const StoreName = "products"

// Codec converts products to and from record lines.
var Codec = record.LineCodec[domain.Product]{
	Encode: domain.Product.MarshalLine,
	Decode: domain.ParseProductLine,
}

// NewStore opens the products store. The default catalog is written on first use only;
// a catalog emptied later stays empty.
func NewStore(
	ctx context.Context,
	backendFactory record.BackendFactory,
	m *metrics.StoreMetrics,
) (*record.Store[domain.Product], error) {
	backend, err := backendFactory(ctx, StoreName)
	if err != nil {
		return nil, fmt.Errorf("new backend: %w", err)
	}

	store, err := record.NewStore(ctx, StoreName, backend, Codec,
		record.WithSeed(record.SeedWhenMissing, func() ([]domain.Product, error) {
			return domain.DefaultCatalog(), nil
		}),
		record.WithMetrics[domain.Product](m),
	)
	if err != nil {
		_ = backend.Close()

		return nil, fmt.Errorf("new store: %w", err)
	}

	return store, nil
}
