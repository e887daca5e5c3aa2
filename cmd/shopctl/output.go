package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/svc/reportsvc"
)

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintln(tw, header)

	return tw
}

func printUsers(w io.Writer, users []domain.User) {
	tw := newTable(w, "ID\tNAME\tEMAIL\tPHONE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email(), u.Phone())
	}

	tw.Flush()
}

func printProfile(w io.Writer, u domain.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintf(tw, "id:\t%s\n", u.ID)
	fmt.Fprintf(tw, "name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "email:\t%s\n", u.Email())
	fmt.Fprintf(tw, "phone:\t%s\n", u.Phone())
	tw.Flush()
}

func printProducts(w io.Writer, products []domain.Product) {
	tw := newTable(w, "ID\tNAME\tPRICE\tCATEGORY")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(domain.PriceDecimals), p.Category)
	}

	tw.Flush()
}

func printOrders(w io.Writer, orders []domain.Order) {
	tw := newTable(w, "ID\tCUSTOMER\tPRODUCT\tPRICE\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s (%s)\n",
			o.ID, o.CustomerID, o.ProductID, o.Price.StringFixed(domain.PriceDecimals),
			o.CreatedAt.Local().Format(domain.OrderTimeLayout), humanize.Time(o.CreatedAt))
	}

	tw.Flush()
}

func printTopSellers(w io.Writer, sales []reportsvc.ProductSales) {
	tw := newTable(w, "PRODUCT\tNAME\tORDERS\tREVENUE")
	for _, s := range sales {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.ProductID, s.Name, humanize.Comma(int64(s.Orders)), s.Revenue.StringFixed(domain.PriceDecimals))
	}

	tw.Flush()
}

func printMonthlySpend(w io.Writer, months []reportsvc.MonthSpend) {
	tw := newTable(w, "MONTH\tORDERS\tTOTAL")
	for _, m := range months {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			m.Month, humanize.Comma(int64(m.Orders)), m.Total.StringFixed(domain.PriceDecimals))
	}

	tw.Flush()
}

func printPageFooter(w io.Writer, number, totalPages, total int) {
	fmt.Fprintf(w, "page %d of %d, %s records\n", number, totalPages, humanize.Comma(int64(total)))
}
