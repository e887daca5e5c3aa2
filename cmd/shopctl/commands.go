package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/svc/productsvc"
	"github.com/mkrupp/homecase-shop/internal/svc/usersvc"
)

// testdataCustomers is the number of placeholder customers test data is generated for
// when no customer is registered.
const testdataCustomers = 10

type command struct {
	usage string
	run   func(ctx context.Context, s *session, args []string) error
}

//nolint:gochecknoglobals
var commands = map[string]command{
	"register":             {"-name -password -email [-phone]: create a customer account", cmdRegister},
	"login":                {"check the credentials", cmdLogin},
	"customers list":       {"[-page n]: list customers (admin)", cmdCustomersList},
	"customers search":     {"<keyword>: find customers by name (admin)", cmdCustomersSearch},
	"customers delete":     {"<id>: delete a customer (admin)", cmdCustomersDelete},
	"customers delete-all": {"delete every customer (admin)", cmdCustomersDeleteAll},
	"profile show":         {"show your profile (customer)", cmdProfileShow},
	"profile update":       {"<attribute> <value>: change name, password, email or phone (customer)", cmdProfileUpdate},
	"products list":        {"[-page n]: list the catalog", cmdProductsList},
	"products search":      {"<keyword>: find products by name", cmdProductsSearch},
	"products show":        {"<id>: show one product", cmdProductsShow},
	"products add":         {"[-id] -name -price -category: add a product (admin)", cmdProductsAdd},
	"products update":      {"<id> [-name] [-price] [-category]: change a product (admin)", cmdProductsUpdate},
	"products delete":      {"<id>: delete a product (admin)", cmdProductsDelete},
	"products delete-all":  {"empty the catalog (admin)", cmdProductsDeleteAll},
	"products categories":  {"list the product categories", cmdProductsCategories},
	"orders list":          {"[-page n] [-customer id]: list orders", cmdOrdersList},
	"orders place":         {"<product id>: order a product (customer)", cmdOrdersPlace},
	"orders delete":        {"<id>: delete an order", cmdOrdersDelete},
	"orders delete-all":    {"[-customer id]: delete orders (admin)", cmdOrdersDeleteAll},
	"testdata":             {"generate random orders for every customer (admin)", cmdTestdata},
	"reports":              {"[-customer id]: render the report charts", cmdReports},
	"wipe":                 {"-yes: delete all orders, products and customers (admin)", cmdWipe},
}

func cmdRegister(ctx context.Context, s *session, args []string) error {
	var reg usersvc.Registration

	fs := newFlagSet(s, "register")
	fs.StringVar(&reg.Name, "name", "", "user name")
	fs.StringVar(&reg.Password, "password", "", "password")
	fs.StringVar(&reg.Email, "email", "", "email address")
	fs.StringVar(&reg.Phone, "phone", "", "mobile phone number")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	user, err := s.app.Users.Register(ctx, reg)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "registered %s (%s)\n", user.Name, user.ID)

	return nil
}

func cmdLogin(ctx context.Context, s *session, args []string) error {
	if err := expectArgs(newFlagSet(s, "login"), args, 0); err != nil {
		return err
	}

	_, user, err := s.login(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "logged in as %s (%s, %s)\n", user.Name, user.ID, user.Role)

	return nil
}

func cmdCustomersList(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet(s, "customers list")
	page := fs.Int("page", 1, "page number")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	ctx, _, err := s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	p, err := s.app.Users.ListCustomers(ctx, *page)
	if err != nil {
		return err
	}

	printUsers(s.out, p.Items)
	printPageFooter(s.out, p.Number, p.TotalPages, p.Total)

	return nil
}

func cmdCustomersSearch(ctx context.Context, s *session, args []string) error {
	pos, err := parseFlags(newFlagSet(s, "customers search"), args)
	if err != nil {
		return err
	}

	if len(pos) != 1 {
		return fmt.Errorf("%w: expected one keyword", errUsage)
	}

	ctx, _, err = s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	printUsers(s.out, s.app.Users.SearchCustomers(ctx, pos[0]))

	return nil
}

func cmdCustomersDelete(ctx context.Context, s *session, args []string) error {
	id, err := oneArg(newFlagSet(s, "customers delete"), args, "customer id")
	if err != nil {
		return err
	}

	ctx, _, err = s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.app.Users.DeleteCustomer(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "deleted customer %s\n", id)

	return nil
}

func cmdCustomersDeleteAll(ctx context.Context, s *session, args []string) error {
	if err := expectArgs(newFlagSet(s, "customers delete-all"), args, 0); err != nil {
		return err
	}

	ctx, _, err := s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	removed, err := s.app.Users.DeleteAllCustomers(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "deleted %s customers\n", humanize.Comma(int64(removed)))

	return nil
}

func cmdProfileShow(ctx context.Context, s *session, args []string) error {
	if err := expectArgs(newFlagSet(s, "profile show"), args, 0); err != nil {
		return err
	}

	_, user, err := s.loginAs(ctx, domain.RoleCustomer)
	if err != nil {
		return err
	}

	printProfile(s.out, user)

	return nil
}

func cmdProfileUpdate(ctx context.Context, s *session, args []string) error {
	pos, err := parseFlags(newFlagSet(s, "profile update"), args)
	if err != nil {
		return err
	}

	if len(pos) != 2 { //nolint:mnd
		return fmt.Errorf("%w: expected <attribute> <value>", errUsage)
	}

	ctx, user, err := s.loginAs(ctx, domain.RoleCustomer)
	if err != nil {
		return err
	}

	user, err = s.app.Users.UpdateProfile(ctx, user.ID, pos[0], pos[1])
	if err != nil {
		return err
	}

	printProfile(s.out, user)

	return nil
}

func cmdProductsList(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet(s, "products list")
	page := fs.Int("page", 1, "page number")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	ctx, _, err := s.login(ctx)
	if err != nil {
		return err
	}

	p, err := s.app.Products.List(ctx, *page)
	if err != nil {
		return err
	}

	printProducts(s.out, p.Items)
	printPageFooter(s.out, p.Number, p.TotalPages, p.Total)

	return nil
}

func cmdProductsSearch(ctx context.Context, s *session, args []string) error {
	keyword, err := oneArg(newFlagSet(s, "products search"), args, "keyword")
	if err != nil {
		return err
	}

	ctx, _, err = s.login(ctx)
	if err != nil {
		return err
	}

	printProducts(s.out, s.app.Products.Search(ctx, keyword))

	return nil
}

func cmdProductsShow(ctx context.Context, s *session, args []string) error {
	id, err := oneArg(newFlagSet(s, "products show"), args, "product id")
	if err != nil {
		return err
	}

	ctx, _, err = s.login(ctx)
	if err != nil {
		return err
	}

	product, err := s.app.Products.Get(ctx, id)
	if err != nil {
		return err
	}

	printProducts(s.out, []domain.Product{product})

	return nil
}

func cmdProductsAdd(ctx context.Context, s *session, args []string) error {
	var (
		np    productsvc.NewProduct
		price decimalFlag
	)

	fs := newFlagSet(s, "products add")
	fs.StringVar(&np.ID, "id", "", "product id, generated when empty")
	fs.StringVar(&np.Name, "name", "", "product name")
	fs.Var(&price, "price", "unit price")
	fs.StringVar(&np.Category, "category", "", "category")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	ctx, _, err := s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	np.Price = price.value

	product, err := s.app.Products.Create(ctx, np)
	if err != nil {
		return err
	}

	printProducts(s.out, []domain.Product{product})

	return nil
}

func cmdProductsUpdate(ctx context.Context, s *session, args []string) error {
	var (
		upd            productsvc.ProductUpdate
		name, category string
		price          decimalFlag
	)

	fs := newFlagSet(s, "products update")
	fs.StringVar(&name, "name", "", "new product name")
	fs.Var(&price, "price", "new unit price")
	fs.StringVar(&category, "category", "", "new category")

	id, err := oneArg(fs, args, "product id")
	if err != nil {
		return err
	}

	ctx, _, err = s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			upd.Name = &name
		case "price":
			upd.Price = &price.value
		case "category":
			upd.Category = &category
		}
	})

	product, err := s.app.Products.Update(ctx, id, upd)
	if err != nil {
		return err
	}

	printProducts(s.out, []domain.Product{product})

	return nil
}

func cmdProductsDelete(ctx context.Context, s *session, args []string) error {
	id, err := oneArg(newFlagSet(s, "products delete"), args, "product id")
	if err != nil {
		return err
	}

	ctx, _, err = s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.app.Products.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "deleted product %s\n", id)

	return nil
}

func cmdProductsDeleteAll(ctx context.Context, s *session, args []string) error {
	if err := expectArgs(newFlagSet(s, "products delete-all"), args, 0); err != nil {
		return err
	}

	ctx, _, err := s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	removed, err := s.app.Products.DeleteAll(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "deleted %s products\n", humanize.Comma(int64(removed)))

	return nil
}

func cmdProductsCategories(ctx context.Context, s *session, args []string) error {
	if err := expectArgs(newFlagSet(s, "products categories"), args, 0); err != nil {
		return err
	}

	ctx, _, err := s.login(ctx)
	if err != nil {
		return err
	}

	for _, category := range s.app.Products.Categories(ctx) {
		fmt.Fprintln(s.out, category)
	}

	return nil
}

func cmdOrdersList(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet(s, "orders list")
	page := fs.Int("page", 1, "page number")
	customerID := fs.String("customer", "", "only orders of this customer (admin)")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	ctx, user, err := s.login(ctx)
	if err != nil {
		return err
	}

	owner, err := orderOwner(user, *customerID)
	if err != nil {
		return err
	}

	p, err := s.app.Orders.List(ctx, owner, *page)
	if err != nil {
		return err
	}

	printOrders(s.out, p.Items)
	printPageFooter(s.out, p.Number, p.TotalPages, p.Total)

	return nil
}

func cmdOrdersPlace(ctx context.Context, s *session, args []string) error {
	productID, err := oneArg(newFlagSet(s, "orders place"), args, "product id")
	if err != nil {
		return err
	}

	ctx, user, err := s.loginAs(ctx, domain.RoleCustomer)
	if err != nil {
		return err
	}

	order, err := s.app.Orders.Place(ctx, user.ID, productID)
	if err != nil {
		return err
	}

	printOrders(s.out, []domain.Order{order})

	return nil
}

func cmdOrdersDelete(ctx context.Context, s *session, args []string) error {
	id, err := oneArg(newFlagSet(s, "orders delete"), args, "order id")
	if err != nil {
		return err
	}

	ctx, user, err := s.login(ctx)
	if err != nil {
		return err
	}

	order, err := s.app.Orders.Get(ctx, id)
	if err != nil {
		return err
	}

	if !user.IsAdmin() && order.OwnerID() != user.ID {
		return fmt.Errorf("%w: order %s belongs to another customer", domain.ErrUnauthorized, id)
	}

	if err := s.app.Orders.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "deleted order %s\n", id)

	return nil
}

func cmdOrdersDeleteAll(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet(s, "orders delete-all")
	customerID := fs.String("customer", "", "only orders of this customer")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	ctx, _, err := s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	removed, err := s.app.Orders.DeleteAll(ctx, *customerID)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "deleted %s orders\n", humanize.Comma(int64(removed)))

	return nil
}

func cmdTestdata(ctx context.Context, s *session, args []string) error {
	if err := expectArgs(newFlagSet(s, "testdata"), args, 0); err != nil {
		return err
	}

	ctx, _, err := s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	var customerIDs []string
	for _, c := range s.app.Users.Customers(ctx) {
		customerIDs = append(customerIDs, c.ID)
	}

	if len(customerIDs) == 0 {
		for n := range testdataCustomers {
			customerIDs = append(customerIDs, fmt.Sprintf("c_%03d", n+1))
		}
	}

	generated, err := s.app.Orders.GenerateTestData(ctx, customerIDs)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "generated %s orders for %d customers\n", humanize.Comma(int64(generated)), len(customerIDs))

	return nil
}

func cmdReports(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet(s, "reports")
	customerID := fs.String("customer", "", "also render the consumption of this customer (admin)")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	ctx, user, err := s.login(ctx)
	if err != nil {
		return err
	}

	var paths []string

	if user.IsAdmin() {
		printTopSellers(s.out, s.app.Reports.TopSellers(ctx, s.app.Config.Report.TopSellers))

		if paths, err = s.app.Reports.RenderAll(ctx); err != nil {
			return err
		}
	}

	owner, err := orderOwner(user, *customerID)
	if err != nil {
		return err
	}

	if owner != "" {
		printMonthlySpend(s.out, s.app.Reports.MonthlySpend(ctx, owner))

		path, err := s.app.Reports.RenderConsumption(ctx, owner)
		if err != nil {
			return err
		}

		paths = append(paths, path)
	}

	for _, path := range paths {
		fmt.Fprintf(s.out, "wrote %s\n", path)
	}

	return nil
}

func cmdWipe(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet(s, "wipe")
	yes := fs.Bool("yes", false, "confirm deleting all data")

	if err := expectArgs(fs, args, 0); err != nil {
		return err
	}

	if !*yes {
		return fmt.Errorf("%w: wipe needs -yes", errUsage)
	}

	ctx, _, err := s.loginAs(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.app.Wipe(ctx); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "deleted all orders, products and customers")

	return nil
}

// orderOwner returns the customer whose orders user may see. Customers only see
// their own orders. Admins see those of customerID, or all when it is empty.
func orderOwner(user domain.User, customerID string) (string, error) {
	if user.IsAdmin() {
		return customerID, nil
	}

	if customerID != "" && customerID != user.ID {
		return "", fmt.Errorf("%w: orders of %s", domain.ErrUnauthorized, customerID)
	}

	return user.ID, nil
}

// decimalFlag is a flag.Value holding a decimal.
type decimalFlag struct {
	value decimal.Decimal
}

func (f *decimalFlag) String() string {
	return f.value.String()
}

func (f *decimalFlag) Set(s string) error {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: price %q", domain.ErrInvalidInput, s)
	}

	f.value = value

	return nil
}
