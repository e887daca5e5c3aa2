package usersvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/infra/metrics"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
	"github.com/mkrupp/homecase-shop/internal/util/idgen"
)

// StoreName names the users store. The file backend keeps it in users.txt.
const StoreName = "users"

// Codec converts users to and from record lines.
var Codec = record.LineCodec[domain.User]{
	Encode: domain.User.MarshalLine,
	Decode: domain.ParseUserLine,
}

// NewStore opens the users store. A store without any loadable user is seeded with
// the default administrator.
func NewStore(
	ctx context.Context,
	backendFactory record.BackendFactory,
	m *metrics.StoreMetrics,
) (*record.Store[domain.User], error) {
	backend, err := backendFactory(ctx, StoreName)
	if err != nil {
		return nil, fmt.Errorf("new backend: %w", err)
	}

	store, err := record.NewStore(ctx, StoreName, backend, Codec,
		record.WithSeed(record.SeedWhenEmpty, seedAdmin),
		record.WithMetrics[domain.User](m),
	)
	if err != nil {
		_ = backend.Close()

		return nil, fmt.Errorf("new store: %w", err)
	}

	return store, nil
}

func seedAdmin() ([]domain.User, error) {
	id, err := idgen.Users.Next(idgen.Set{})
	if err != nil {
		return nil, fmt.Errorf("next id: %w", err)
	}

	return []domain.User{
		domain.NewAdmin(id, domain.DefaultAdminName, domain.DefaultAdminPassword),
	}, nil
}
