package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/infra/logging"
	"github.com/mkrupp/homecase-shop/internal/paging"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
	"github.com/mkrupp/homecase-shop/internal/util/idgen"
)

// ProductCatalog looks up the products orders are placed for.
type ProductCatalog interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	All(ctx context.Context) []domain.Product
}

// OrderService places and manages orders.
type OrderService struct {
	Config   OrderConfig
	Orders   *record.Store[domain.Order]
	Products ProductCatalog
	Log      logging.Logger

	// Now returns the time new orders are placed at.
	Now func() time.Time
}

// NewOrderService creates an OrderService on top of the given orders store.
func NewOrderService(orders *record.Store[domain.Order], products ProductCatalog, cfg OrderConfig) *OrderService {
	return &OrderService{
		Config:   cfg,
		Orders:   orders,
		Products: products,
		Log:      logging.GetLogger("svc.ordersvc.order_service"),
		Now:      time.Now,
	}
}

// Place records an order of productID by customerID at the current product price.
// The customer is not looked up; the product must exist.
func (s *OrderService) Place(ctx context.Context, customerID, productID string) (order domain.Order, err error) {
	customerID = strings.TrimSpace(customerID)
	productID = strings.TrimSpace(productID)

	log := s.Log.With(logging.Group("order", "customer", customerID, "product", productID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "place order failed", "error", err)
		} else {
			log.InfoContext(ctx, "order placed", "id", order.ID, "price", order.Price.StringFixed(domain.PriceDecimals))
		}
	}()

	if customerID == "" || domain.ContainsDelimiter(customerID) {
		return domain.Order{}, fmt.Errorf("%w: customer id %q", domain.ErrInvalidInput, customerID)
	}

	product, err := s.Products.Get(ctx, productID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get product: %w", err)
	}

	id, err := s.Orders.NextID(idgen.Orders)
	if err != nil {
		return domain.Order{}, err
	}

	order = domain.Order{
		ID:         id,
		CustomerID: customerID,
		ProductID:  product.ID,
		Price:      product.Price,
		CreatedAt:  s.Now().Truncate(time.Second),
	}

	if err := s.Orders.Add(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("add order: %w", err)
	}

	return order, nil
}

// ForCustomer returns the orders of customerID, or every order if customerID is empty.
func (s *OrderService) ForCustomer(_ context.Context, customerID string) []domain.Order {
	return paging.FilterByOwner(s.Orders.All(), customerID, domain.Order.OwnerID)
}

// List returns one page of the orders of customerID, or of every order if customerID
// is empty.
func (s *OrderService) List(ctx context.Context, customerID string, page int) (paging.Page[domain.Order], error) {
	result, err := paging.Paginate(s.ForCustomer(ctx, customerID), page)
	if err != nil {
		return paging.Page[domain.Order]{}, fmt.Errorf("paginate: %w", err)
	}

	return result, nil
}

// Get returns the order with the given ID.
func (s *OrderService) Get(_ context.Context, id string) (domain.Order, error) {
	order, ok := s.Orders.Get(id)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}

	return order, nil
}

// Delete removes the order with the given ID.
func (s *OrderService) Delete(ctx context.Context, id string) (err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "delete order failed", "id", id, "error", err)
		} else {
			s.Log.InfoContext(ctx, "order deleted", "id", id)
		}
	}()

	err = s.Orders.RemoveByID(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return errors.Join(domain.ErrOrderNotFound, err)
	} else if err != nil {
		return fmt.Errorf("remove order: %w", err)
	}

	return nil
}

// DeleteAll removes the orders of customerID, or every order if customerID is empty.
// Returns the number of removed orders.
func (s *OrderService) DeleteAll(ctx context.Context, customerID string) (removed int, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "delete all orders failed", "customer", customerID, "error", err)
		} else {
			s.Log.InfoContext(ctx, "orders deleted", "customer", customerID, "removed", removed)
		}
	}()

	if customerID == "" {
		removed = s.Orders.Len()

		if err := s.Orders.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("delete all: %w", err)
		}

		return removed, nil
	}

	removed, err = s.Orders.Remove(ctx, func(o domain.Order) bool {
		return o.CustomerID == customerID
	})
	if err != nil {
		return 0, fmt.Errorf("remove orders: %w", err)
	}

	return removed, nil
}

// GenerateTestData places between TestdataMin and TestdataMax orders of random
// catalog products for every customer, at random times within TestdataYear.
// All orders are written at once. Returns the number of generated orders.
func (s *OrderService) GenerateTestData(ctx context.Context, customerIDs []string) (generated int, err error) {
	log := s.Log.With(logging.Group("testdata",
		"customers", len(customerIDs),
		"year", s.Config.TestdataYear,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "generate test data failed", "error", err)
		} else {
			log.InfoContext(ctx, "test data generated", "orders", generated)
		}
	}()

	products := s.Products.All(ctx)
	if len(products) == 0 {
		return 0, fmt.Errorf("%w: catalog is empty", domain.ErrProductNotFound)
	}

	lo, hi := s.Config.TestdataMin, s.Config.TestdataMax
	if lo < 0 || hi < lo {
		return 0, fmt.Errorf("%w: test data range %d..%d", domain.ErrInvalidInput, lo, hi)
	}

	start := time.Date(s.Config.TestdataYear, time.January, 1, 0, 0, 0, 0, time.Local)
	span := start.AddDate(1, 0, 0).Sub(start)

	var (
		orders  []domain.Order
		pending = idgen.Set{}
		taken   = idgen.TakenFunc(func(id string) bool {
			return pending.Has(id) || s.Orders.Has(id)
		})
	)

	for _, customerID := range customerIDs {
		for range lo + rand.IntN(hi-lo+1) {
			id, err := idgen.Orders.Next(taken)
			if err != nil {
				return 0, fmt.Errorf("next id: %w", err)
			}

			pending.Add(id)

			product := products[rand.IntN(len(products))]
			orders = append(orders, domain.Order{
				ID:         id,
				CustomerID: customerID,
				ProductID:  product.ID,
				Price:      product.Price,
				CreatedAt:  start.Add(rand.N(span)).Truncate(time.Second),
			})
		}
	}

	if err := s.Orders.AddAll(ctx, orders); err != nil {
		return 0, fmt.Errorf("add orders: %w", err)
	}

	return len(orders), nil
}

// Close releases the orders store.
func (s *OrderService) Close() error {
	if err := s.Orders.Close(); err != nil {
		return fmt.Errorf("close orders store: %w", err)
	}

	return nil
}
