package productsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/infra/logging"
	"github.com/mkrupp/homecase-shop/internal/paging"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
	"github.com/mkrupp/homecase-shop/internal/util/idgen"
	"github.com/mkrupp/homecase-shop/internal/util/validation"
)

// NewProduct holds the values of a product to create. ID is generated when empty.
type NewProduct struct {
	ID       string          `validate:"omitempty,nodelim"`
	Name     string          `validate:"required,nodelim"`
	Price    decimal.Decimal `validate:"-"`
	Category string          `validate:"required,nodelim"`
}

// ProductUpdate holds the attributes to change. Nil fields are left as they are.
type ProductUpdate struct {
	Name     *string
	Price    *decimal.Decimal
	Category *string
}

// ProductService manages the product catalog.
type ProductService struct {
	Products *record.Store[domain.Product]
	Log      logging.Logger
	Validate *validation.Validator
}

// NewProductService creates a ProductService on top of the given products store.
func NewProductService(products *record.Store[domain.Product]) *ProductService {
	return &ProductService{
		Products: products,
		Log:      logging.GetLogger("svc.productsvc.product_service"),
		Validate: validation.New(),
	}
}

// All returns every product in catalog order.
func (s *ProductService) All(_ context.Context) []domain.Product {
	return s.Products.All()
}

// List returns one page of the catalog.
func (s *ProductService) List(ctx context.Context, page int) (paging.Page[domain.Product], error) {
	result, err := paging.Paginate(s.All(ctx), page)
	if err != nil {
		return paging.Page[domain.Product]{}, fmt.Errorf("paginate: %w", err)
	}

	return result, nil
}

// Search returns the products whose name contains keyword, ignoring case.
func (s *ProductService) Search(ctx context.Context, keyword string) []domain.Product {
	return paging.FilterByKeyword(s.All(ctx), strings.TrimSpace(keyword), domain.Product.DisplayName)
}

// Get returns the product with the given ID.
func (s *ProductService) Get(_ context.Context, id string) (domain.Product, error) {
	product, ok := s.Products.Get(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}

	return product, nil
}

// Categories returns the distinct categories in the order they first appear.
func (s *ProductService) Categories(_ context.Context) []string {
	var (
		categories []string
		seen       = make(map[string]struct{})
	)

	for _, p := range s.Products.All() {
		if _, ok := seen[p.Category]; ok {
			continue
		}

		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}

	return categories
}

// Create adds a product to the catalog. Prices are rounded to two decimal places.
func (s *ProductService) Create(ctx context.Context, np NewProduct) (product domain.Product, err error) {
	np.ID = strings.TrimSpace(np.ID)
	np.Name = strings.TrimSpace(np.Name)
	np.Category = strings.TrimSpace(np.Category)

	log := s.Log.With(logging.Group("product", "name", np.Name))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create product failed", "error", err)
		} else {
			log.InfoContext(ctx, "product created", "id", product.ID)
		}
	}()

	if err := s.Validate.Struct(np); err != nil {
		return domain.Product{}, err
	}

	price, err := checkPrice(np.Price)
	if err != nil {
		return domain.Product{}, err
	}

	if np.ID == "" {
		if np.ID, err = s.Products.NextID(idgen.Products); err != nil {
			return domain.Product{}, err
		}
	}

	product = domain.Product{
		ID:       np.ID,
		Name:     np.Name,
		Price:    price,
		Category: np.Category,
	}

	if err := s.Products.Add(ctx, product); err != nil {
		return domain.Product{}, fmt.Errorf("add product: %w", err)
	}

	return product, nil
}

// Update changes the given attributes of a product.
func (s *ProductService) Update(ctx context.Context, id string, upd ProductUpdate) (product domain.Product, err error) {
	log := s.Log.With(logging.Group("product", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update product failed", "error", err)
		} else {
			log.InfoContext(ctx, "product updated")
		}
	}()

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := s.Validate.Var("name", name, "required,nodelim"); err != nil {
			return domain.Product{}, err
		}

		upd.Name = &name
	}

	if upd.Category != nil {
		category := strings.TrimSpace(*upd.Category)
		if err := s.Validate.Var("category", category, "required,nodelim"); err != nil {
			return domain.Product{}, err
		}

		upd.Category = &category
	}

	if upd.Price != nil {
		price, err := checkPrice(*upd.Price)
		if err != nil {
			return domain.Product{}, err
		}

		upd.Price = &price
	}

	err = s.Products.Update(ctx, id, func(p *domain.Product) error {
		if upd.Name != nil {
			p.Name = *upd.Name
		}

		if upd.Price != nil {
			p.Price = *upd.Price
		}

		if upd.Category != nil {
			p.Category = *upd.Category
		}

		product = *p

		return nil
	})
	if errors.Is(err, record.ErrNotFound) {
		return domain.Product{}, errors.Join(domain.ErrProductNotFound, err)
	} else if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// Delete removes the product with the given ID. Orders of the product are kept.
func (s *ProductService) Delete(ctx context.Context, id string) (err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "delete product failed", "id", id, "error", err)
		} else {
			s.Log.InfoContext(ctx, "product deleted", "id", id)
		}
	}()

	err = s.Products.RemoveByID(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return errors.Join(domain.ErrProductNotFound, err)
	} else if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}

	return nil
}

// DeleteAll empties the catalog and returns the number of removed products.
func (s *ProductService) DeleteAll(ctx context.Context) (removed int, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "delete all products failed", "error", err)
		} else {
			s.Log.InfoContext(ctx, "all products deleted", "removed", removed)
		}
	}()

	removed = s.Products.Len()

	if err := s.Products.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}

	return removed, nil
}

// Close releases the products store.
func (s *ProductService) Close() error {
	if err := s.Products.Close(); err != nil {
		return fmt.Errorf("close products store: %w", err)
	}

	return nil
}

func checkPrice(price decimal.Decimal) (decimal.Decimal, error) {
	price = price.Round(domain.PriceDecimals)
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %w: %s", domain.ErrInvalidInput, domain.ErrInvalidPrice, price)
	}

	return price, nil
}
