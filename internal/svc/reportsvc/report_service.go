package reportsvc

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/infra/logging"
	"github.com/mkrupp/homecase-shop/internal/util/atomicfile"
)

// Chart names, used as file names without extension.
const (
	ChartTopSellers     = "top_sellers"
	ChartCategoryCounts = "category_counts"
	ChartConsumption    = "consumption"
)

// OrderSource provides the orders reports are computed from.
type OrderSource interface {
	ForCustomer(ctx context.Context, customerID string) []domain.Order
}

// ProductSource provides the catalog reports are computed from.
type ProductSource interface {
	All(ctx context.Context) []domain.Product
}

// ProductSales is the number of orders of and revenue from one product.
type ProductSales struct {
	ProductID string
	Name      string
	Orders    int
	Revenue   decimal.Decimal
}

// CategoryCount is the number of catalog products in one category.
type CategoryCount struct {
	Category string
	Products int
}

// MonthSpend is the number and total price of orders placed in one calendar month,
// summed over all years.
type MonthSpend struct {
	Month  time.Month
	Orders int
	Total  decimal.Decimal
}

// ReportService computes statistics over orders and products and renders them as charts.
type ReportService struct {
	Config   ReportConfig
	Orders   OrderSource
	Products ProductSource
	Log      logging.Logger
}

// NewReportService creates a ReportService.
func NewReportService(orders OrderSource, products ProductSource, cfg ReportConfig) *ReportService {
	return &ReportService{
		Config:   cfg,
		Orders:   orders,
		Products: products,
		Log:      logging.GetLogger("svc.reportsvc.report_service"),
	}
}

// TopSellers returns the n products with the most orders, most ordered first.
// Ties are broken by product ID. Products deleted from the catalog are still counted.
func (s *ReportService) TopSellers(ctx context.Context, n int) []ProductSales {
	names := make(map[string]string)
	for _, p := range s.Products.All(ctx) {
		names[p.ID] = p.Name
	}

	sales := make(map[string]*ProductSales)

	for _, o := range s.Orders.ForCustomer(ctx, "") {
		ps, ok := sales[o.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: o.ProductID, Name: names[o.ProductID]}
			sales[o.ProductID] = ps
		}

		ps.Orders++
		ps.Revenue = ps.Revenue.Add(o.Price)
	}

	out := make([]ProductSales, 0, len(sales))
	for _, ps := range sales {
		out = append(out, *ps)
	}

	slices.SortFunc(out, func(a, b ProductSales) int {
		if c := cmp.Compare(b.Orders, a.Orders); c != 0 {
			return c
		}

		return cmp.Compare(a.ProductID, b.ProductID)
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}

	return out
}

// CategoryCounts returns the number of products per category in first-seen order.
func (s *ReportService) CategoryCounts(ctx context.Context) []CategoryCount {
	var counts []CategoryCount

	index := make(map[string]int)

	for _, p := range s.Products.All(ctx) {
		i, ok := index[p.Category]
		if !ok {
			i = len(counts)
			index[p.Category] = i
			counts = append(counts, CategoryCount{Category: p.Category})
		}

		counts[i].Products++
	}

	return counts
}

// MonthlySpend returns the orders of customerID per local calendar month, January first.
// An empty customerID covers every order.
func (s *ReportService) MonthlySpend(ctx context.Context, customerID string) []MonthSpend {
	months := make([]MonthSpend, 12)
	for i := range months {
		months[i].Month = time.Month(i + 1)
	}

	for _, o := range s.Orders.ForCustomer(ctx, customerID) {
		m := &months[o.CreatedAt.Local().Month()-1]
		m.Orders++
		m.Total = m.Total.Add(o.Price)
	}

	return months
}

// RenderAll writes the best sellers, category and overall consumption charts.
// Returns the paths of the written files.
func (s *ReportService) RenderAll(ctx context.Context) (paths []string, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "render reports failed", "error", err)
		} else {
			s.Log.InfoContext(ctx, "reports rendered", "files", len(paths))
		}
	}()

	charts := []struct {
		name  string
		chart BarChart
	}{
		{ChartTopSellers, s.topSellersChart(ctx)},
		{ChartCategoryCounts, s.categoryChart(ctx)},
		{ChartConsumption, s.consumptionChart(ctx, "")},
	}

	for _, c := range charts {
		path, err := s.writeChart(ctx, c.name, c.chart)
		if err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// RenderConsumption writes the monthly consumption chart of one customer.
func (s *ReportService) RenderConsumption(ctx context.Context, customerID string) (path string, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "render consumption failed", "customer", customerID, "error", err)
		} else {
			s.Log.InfoContext(ctx, "consumption rendered", "customer", customerID, "path", path)
		}
	}()

	if customerID == "" || domain.ContainsDelimiter(customerID) || filepath.Base(customerID) != customerID {
		return "", fmt.Errorf("%w: customer id %q", domain.ErrInvalidInput, customerID)
	}

	return s.writeChart(ctx, ChartConsumption+"_"+customerID, s.consumptionChart(ctx, customerID))
}

func (s *ReportService) topSellersChart(ctx context.Context) BarChart {
	chart := BarChart{Title: fmt.Sprintf("Top %d best sellers", s.Config.TopSellers)}

	for _, ps := range s.TopSellers(ctx, s.Config.TopSellers) {
		label := ps.Name
		if label == "" {
			label = ps.ProductID
		}

		chart.Bars = append(chart.Bars, Bar{
			Label:   label,
			Caption: humanize.Comma(int64(ps.Orders)),
			Value:   float64(ps.Orders),
		})
	}

	return chart
}

func (s *ReportService) categoryChart(ctx context.Context) BarChart {
	chart := BarChart{Title: "Products per category"}

	for _, cc := range s.CategoryCounts(ctx) {
		chart.Bars = append(chart.Bars, Bar{
			Label:   cc.Category,
			Caption: humanize.Comma(int64(cc.Products)),
			Value:   float64(cc.Products),
		})
	}

	return chart
}

func (s *ReportService) consumptionChart(ctx context.Context, customerID string) BarChart {
	title := "Consumption per month"
	if customerID != "" {
		title += " of " + customerID
	}

	chart := BarChart{Title: title}

	for _, ms := range s.MonthlySpend(ctx, customerID) {
		chart.Bars = append(chart.Bars, Bar{
			Label:   ms.Month.String()[:3],
			Caption: humanize.FormatFloat("#,###.", ms.Total.Round(0).InexactFloat64()),
			Value:   ms.Total.InexactFloat64(),
		})
	}

	return chart
}

func (s *ReportService) writeChart(ctx context.Context, name string, chart BarChart) (string, error) {
	format, err := getImageFormat(s.Config.Format)
	if err != nil {
		return "", err
	}

	var img image.Image = chart.Draw()

	width, height := s.Config.Width, s.Config.Height
	if width <= 0 || height <= 0 {
		width, height = canvasWidth, canvasHeight
	}

	img, err = scaleImage(img, width, height, s.Config.Interpolator)
	if err != nil {
		return "", fmt.Errorf("scale %s: %w", name, err)
	}

	path := filepath.Join(s.Config.Dir, name+format.ext)

	if err := atomicfile.WriteFile(path, 0o644, func(w io.Writer) error {
		return format.encode(w, img)
	}); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	s.Log.DebugContext(ctx, "chart written", "path", path, "bars", len(chart.Bars))

	return path, nil
}
