package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/and161185/pawnshop/internal/intake"
	"github.com/and161185/pawnshop/internal/invoice"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
	"github.com/and161185/pawnshop/internal/pagination"
	"github.com/and161185/pawnshop/internal/phone"
	"github.com/and161185/pawnshop/internal/search"
)

// Listing kinds: the order and pawn screens each keep their own client index.
const (
	kindOrders = "orders"
	kindPawns  = "pawns"
)

func newClientCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Look up or register a client by phone number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newClientLookupCommand(a), newClientCreateCommand(a))
	return cmd
}

func newClientLookupCommand(a *app) *cobra.Command {
	var number string
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Find a client by phone number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			form := intake.New(a.api.Clients, a.notify, a.log)
			form.SetPhone(number)
			c, err := form.Lookup(ctx)
			if err != nil {
				return err
			}
			printClients(cmd.OutOrStdout(), []model.Client{c})
			return nil
		},
	}
	cmd.Flags().StringVar(&number, "phone", "", "client phone number")
	return cmd
}

func newClientCreateCommand(a *app) *cobra.Command {
	var name, number, address string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			form := intake.New(a.api.Clients, a.notify, a.log)
			form.Name, form.Address = name, address
			if !form.SetPhone(number) {
				return fmt.Errorf("phone number %q is too long", number)
			}
			c, err := form.Save(ctx)
			if err != nil {
				for field, msg := range form.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
				}
				return err
			}
			printClients(cmd.OutOrStdout(), []model.Client{c})
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "client name")
	cmd.Flags().StringVar(&number, "phone", "", "client phone number")
	cmd.Flags().StringVar(&address, "address", "", "client address")
	return cmd
}

// clientSource returns the listing endpoint of kind.
func clientSource(a *app, kind string) (search.Fetcher[model.Client], error) {
	switch kind {
	case kindOrders:
		return func(ctx context.Context, q search.Query) (pagination.Page[model.Client], error) {
			return a.api.Orders.AllClients(ctx, q.Values())
		}, nil
	case kindPawns:
		return func(ctx context.Context, q search.Query) (pagination.Page[model.Client], error) {
			return a.api.Pawns.AllClients(ctx, q.Values())
		}, nil
	}
	return nil, fmt.Errorf("unknown kind %q (want %s or %s)", kind, kindOrders, kindPawns)
}

func newClientsCommand(a *app) *cobra.Command {
	var (
		kind    string
		page    int
		filters search.Filters
	)
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List or search the clients of the order or pawn index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			fetch, err := clientSource(a, kind)
			if err != nil {
				return err
			}
			snap, err := listClients(ctx, a, fetch, filters, page)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printClients(out, snap.Items)
			if snap.HasPagination {
				p := snap.Pagination
				fmt.Fprintf(out, "\n%d-%d of %d, page %d/%d\n", snap.Start, snap.End, p.TotalItems, p.CurrentPage, p.TotalPages)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", kindOrders, "client index: orders|pawns")
	cmd.Flags().IntVar(&page, "page", pagination.DefaultPage, "page number")
	cmd.Flags().StringVar(&filters.ID, "id", "", "filter by client id")
	cmd.Flags().StringVar(&filters.Name, "name", "", "filter by name")
	cmd.Flags().StringVar(&filters.Phone, "phone", "", "filter by phone number")
	cmd.Flags().StringVar(&filters.Address, "address", "", "filter by address")
	return cmd
}

// listClients drives a controller to one settled page. With filters it goes
// through the debounced search, otherwise it loads the plain listing.
func listClients(
	ctx context.Context,
	a *app,
	fetch search.Fetcher[model.Client],
	filters search.Filters,
	page int,
) (search.Snapshot[model.Client], error) {
	settled := make(chan struct{}, 1)
	var (
		mu      sync.Mutex
		lastErr error
	)
	c := search.New(ctx, fetch, search.Options{
		Debounce: a.cfg.Debounce,
		PageSize: a.cfg.PageSize,
		Notify: func(n notify.Notification) {
			if n.Type == notify.Error {
				mu.Lock()
				lastErr = errors.New(n.Message)
				mu.Unlock()
			}
			a.notify(n)
		},
		OnChange: func() {
			select {
			case settled <- struct{}{}:
			default:
			}
		},
		Logger:  a.log,
		Metrics: a.metrics,
		View:    "cli_clients",
	})
	defer c.Close()

	if !filters.Active() {
		if err := c.Load(ctx, page); err != nil {
			return search.Snapshot[model.Client]{}, err
		}
		return c.Snapshot(), nil
	}

	for field, v := range map[search.Field]string{
		search.FieldID:      filters.ID,
		search.FieldName:    filters.Name,
		search.FieldPhone:   filters.Phone,
		search.FieldAddress: filters.Address,
	} {
		if err := c.SetFilter(field, v); err != nil {
			return search.Snapshot[model.Client]{}, err
		}
	}
	for {
		snap := c.Snapshot()
		if snap.State == search.Results && !snap.Loading {
			if snap.HasPagination && page != snap.Pagination.CurrentPage {
				if !c.GoToPage(ctx, page) {
					return snap, fmt.Errorf("page %d is out of range (1-%d)", page, snap.Pagination.TotalPages)
				}
				snap = c.Snapshot()
			}
			mu.Lock()
			defer mu.Unlock()
			if !snap.HasPagination && lastErr != nil {
				return snap, lastErr
			}
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-settled:
		}
	}
}

func printClients(w io.Writer, clients []model.Client) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tADDRESS")
	for _, c := range clients {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, phone.Format(c.PhoneNumber), c.Address)
	}
	_ = tw.Flush()
}

func newHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "history orders|pawns CLIENT_ID",
		Short:     "Show a client's order or pawn history",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{kindOrders, kindPawns},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("client id %q: %w", args[1], err)
			}
			if err := a.connect(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch args[0] {
			case kindOrders:
				d := search.NewDetail(a.api.Orders.ClientOrders, search.DetailOptions{
					Notify: a.notify, Logger: a.log, Metrics: a.metrics, View: "cli_client_orders",
				})
				rec, err := d.Fetch(ctx, id)
				if err != nil {
					return err
				}
				printClientOrders(out, rec)
			case kindPawns:
				d := search.NewDetail(a.api.Pawns.ClientPawns, search.DetailOptions{
					Notify: a.notify, Logger: a.log, Metrics: a.metrics, View: "cli_client_pawns",
				})
				rec, err := d.Fetch(ctx, id)
				if err != nil {
					return err
				}
				printClientPawns(out, rec)
			default:
				return fmt.Errorf("unknown kind %q (want %s or %s)", args[0], kindOrders, kindPawns)
			}
			return nil
		},
	}
}

func printClientOrders(w io.Writer, rec model.ClientOrders) {
	fmt.Fprintf(w, "%s (#%d) %s %s\n\n", rec.Client.Name, rec.Client.ID, phone.Format(rec.Client.PhoneNumber), rec.Client.Address)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tDEPOSIT\tPRODUCTS")
	for _, o := range rec.Orders {
		names := make([]string, 0, len(o.Products))
		for _, p := range o.Products {
			names = append(names, p.ProductName)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, o.Date, invoice.Money(o.Deposit), strings.Join(names, ", "))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d orders\n", rec.TotalOrders)
}

func printClientPawns(w io.Writer, rec model.ClientPawns) {
	fmt.Fprintf(w, "%s (#%d) %s %s\n\n", rec.Client.Name, rec.Client.ID, phone.Format(rec.Client.PhoneNumber), rec.Client.Address)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAWN\tDATE\tDEPOSIT\tPRODUCTS")
	for _, p := range rec.Pawns {
		names := make([]string, 0, len(p.Products))
		for _, pr := range p.Products {
			names = append(names, pr.ProductName)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Date, invoice.Money(p.Deposit), strings.Join(names, ", "))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d pawns\n", rec.TotalPawns)
}
