package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/and161185/pawnshop/internal/dashboard"
	"github.com/and161185/pawnshop/internal/invoice"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/tui"
)

func newPrintCommand(a *app) *cobra.Command {
	var browser string
	cmd := &cobra.Command{
		Use:       "print order|pawn ID",
		Short:     "Render an invoice and open it in the browser",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"order", "pawn"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("record id %q: %w", args[1], err)
			}
			if err := a.connect(ctx); err != nil {
				return err
			}
			r, err := invoice.NewRenderer()
			if err != nil {
				return err
			}
			opener := &invoice.BrowserOpener{Dir: a.cfg.PrintDir}
			if browser != "" {
				opener.Command = strings.Fields(browser)
			}
			p := invoice.NewPrinter(a.api.Orders, a.api.Pawns, r, opener, a.notify, a.log)
			switch args[0] {
			case "order":
				return p.PrintOrder(ctx, id)
			case "pawn":
				return p.PrintPawn(ctx, id)
			}
			return fmt.Errorf("unknown record kind %q (want order or pawn)", args[0])
		},
	}
	cmd.Flags().StringVar(&browser, "browser", "", "browser command, e.g. firefox")
	return cmd
}

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show recent clients, products and the last orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			b := dashboard.New(a.api.Clients, a.api.Products, a.api.Orders, a.notify, a.log)
			printBoard(cmd.OutOrStdout(), b.Refresh(ctx))
			return nil
		},
	}
}

func printBoard(w io.Writer, v dashboard.View) {
	fmt.Fprintln(w, "Clients")
	if v.Clients.Err == nil {
		printClients(w, v.Clients.Items)
	}

	fmt.Fprintln(w, "\nProducts")
	if v.Products.Err == nil {
		printProducts(w, v.Products.Items)
	}

	fmt.Fprintln(w, "\nLast orders")
	if v.Orders.Err == nil {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ORDER\tDATE\tCLIENT\tTOTAL\tDEPOSIT\tBALANCE")
		for _, o := range v.Orders.Items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", o.Info.ID, o.Info.Date, o.Client.Name,
				invoice.Money(o.Summary.TotalAmount), invoice.Money(o.Summary.DepositPaid), invoice.Money(o.Summary.BalanceDue))
		}
		_ = tw.Flush()
	}
}

func newProductsCommand(a *app) *cobra.Command {
	var (
		term string
		page int
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalogue or search it by name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			var items []model.Product
			if term != "" {
				found, err := a.api.Products.Search(ctx, term)
				if err != nil {
					a.notify.Emit(notify.Error, notify.FromError(err, notify.ProductLoadError))
					return err
				}
				items = found
			} else {
				p, err := a.api.Products.List(ctx, page, a.cfg.PageSize)
				if err != nil {
					a.notify.Emit(notify.Error, notify.FromError(err, notify.ProductLoadError))
					return err
				}
				items = p.Items
			}
			printProducts(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().StringVar(&term, "search", "", "product name to search for")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func printProducts(w io.Writer, products []model.Product) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tAMOUNT")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, optional(p.Price, invoice.Money), optional(p.Amount, invoice.Quantity))
	}
	_ = tw.Flush()
}

func optional(v *float64, f func(float64) string) string {
	if v == nil {
		return "-"
	}
	return f(*v)
}

func newTUICommand(a *app) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive client search",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			fetch, err := clientSource(a, kind)
			if err != nil {
				return err
			}
			// Notifications go to the screen; keep stderr quiet under the alt screen.
			a.notify = func(notify.Notification) {}
			m := tui.New(ctx, fetch, a.api.Orders.ClientOrders, tui.Options{
				Debounce: a.cfg.Debounce,
				PageSize: a.cfg.PageSize,
				Logger:   a.log,
				Metrics:  a.metrics,
			})
			return tui.Run(ctx, m)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", kindOrders, "client index: orders|pawns")
	return cmd
}
