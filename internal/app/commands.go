package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/tiffin/internal/logtail"
	"github.com/five82/tiffin/internal/monitor"
	"github.com/five82/tiffin/internal/prefs"
	"github.com/five82/tiffin/internal/swiggy"
	"github.com/five82/tiffin/internal/ui"
)

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.store.Clear(cmd.Context()); err != nil {
				return e.fail(cmd.Context(), err)
			}
			e.out.Success("Logged out")
			return nil
		},
	}
}

func newSearchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search restaurants near the delivery location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			e.out.Info("Searching for '%s'...", query)
			restaurants, err := e.client.Search(cmd.Context(), query)
			if err != nil {
				return e.fail(cmd.Context(), err)
			}
			e.out.Restaurants(restaurants)
			return nil
		},
	}
}

func newMenuCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "menu <restaurant-id>",
		Short: "Show a restaurant's menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e.out.Info("Fetching menu for restaurant %s", args[0])
			items, err := e.client.Menu(cmd.Context(), args[0])
			if err != nil {
				return e.fail(cmd.Context(), err)
			}
			e.out.Menu(items)
			return nil
		},
	}
}

func newStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status [order-id]",
		Short: "Show the current status of an order (default: the last one placed)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := e.orderArg(args)
			if err != nil {
				return err
			}
			e.out.Info("Checking status for order %s", orderID)
			status, err := e.client.OrderStatus(cmd.Context(), orderID)
			if err != nil {
				return e.fail(cmd.Context(), err)
			}
			e.out.OrderStatus(status)
			return nil
		},
	}
}

func newOrdersCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List active orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders, err := e.client.ActiveOrders(cmd.Context())
			if err != nil {
				return e.fail(cmd.Context(), err)
			}
			e.out.Orders(orders)
			return nil
		},
	}
}

func newOrderCommand(e *env) *cobra.Command {
	var (
		items   []string
		address string
		payment string
	)
	cmd := &cobra.Command{
		Use:   "order <restaurant-id>",
		Short: "Place an order",
		Example: `  tiffin order 10575 --item 4471234 --item 4471240:2
  tiffin order 10575 --item 4471234 --address addr_1 --payment COD`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := parseItems(items)
			if err != nil {
				return err
			}
			req := swiggy.PlaceOrderRequest{
				RestaurantID: args[0],
				Items:        lines,
				PaymentMode:  strings.TrimSpace(payment),
			}
			if addr := strings.TrimSpace(address); addr != "" {
				req.AddressID = &addr
			}
			placed, err := e.client.PlaceOrder(cmd.Context(), req)
			if err != nil {
				return e.fail(cmd.Context(), err)
			}
			e.logger.Info().Str("order_id", placed.OrderID).Str("restaurant_id", args[0]).Int("items", len(lines)).Msg("order placed")
			if placed.OrderID != "" {
				e.savePrefs(func(p *prefs.Prefs) { p.LastOrderID = placed.OrderID })
			}
			e.out.Placed(placed)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&items, "item", nil, "menu item as ID or ID:QTY (repeatable)")
	cmd.Flags().StringVar(&address, "address", "", "saved delivery address id")
	cmd.Flags().StringVar(&payment, "payment", swiggy.DefaultPaymentMode, "payment mode")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

// parseItems turns ID[:QTY] values into order lines, merging repeated ids.
func parseItems(values []string) ([]swiggy.OrderLine, error) {
	var lines []swiggy.OrderLine
	index := make(map[string]int)
	for _, value := range values {
		id, qtyText, hasQty := strings.Cut(strings.TrimSpace(value), ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("invalid item %q: missing id", value)
		}
		qty := 1
		if hasQty {
			n, err := strconv.Atoi(strings.TrimSpace(qtyText))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid item %q: quantity must be a positive number", value)
			}
			qty = n
		}
		if i, ok := index[id]; ok {
			lines[i].Quantity += qty
			continue
		}
		index[id] = len(lines)
		lines = append(lines, swiggy.OrderLine{ItemID: id, Quantity: qty})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("at least one --item is required")
	}
	return lines, nil
}

func newMonitorCommand(e *env) *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "monitor [order-id]",
		Short: "Follow an order until it is delivered, cancelled or failed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orderID, err := e.orderArg(args)
			if err != nil {
				return err
			}
			interval := e.cfg.PollInterval
			if cmd.Flags().Changed("interval") {
				if seconds <= 0 {
					return fmt.Errorf("--interval must be a positive number of seconds, got %d", seconds)
				}
				interval = time.Duration(seconds) * time.Second
			}
			poller, err := monitor.New(e.client, monitor.Options{
				Interval:         interval,
				RequestTimeout:   e.cfg.RequestTimeout,
				TerminalStatuses: e.cfg.TerminalStatuses,
				Logger:           e.logger,
			})
			if err != nil {
				return err
			}

			notifier := ui.NewLineNotifier(e.out)
			if e.fileLog {
				result, err := ui.RunMonitorTUI(ctx, poller, orderID, ui.MonitorTUIOptions{
					Theme: e.theme,
					OnThemeChange: func(name string) {
						e.savePrefs(func(p *prefs.Prefs) { p.Theme = name })
					},
				})
				if err != nil {
					return e.fail(ctx, err)
				}
				if result.Reason == monitor.StopTerminal {
					e.out.Success("Order %s", result.LastStatus)
				}
				notifier.Stopped(result)
				return nil
			}

			notifier.Started(orderID, poller.Interval())
			result, err := poller.Run(ctx, orderID, notifier)
			if err != nil {
				return e.fail(ctx, err)
			}
			notifier.Stopped(result)
			return nil
		},
	}
	cmd.Flags().IntVar(&seconds, "interval", 0, "seconds between status checks (default from config, 30)")
	cmd.Flags().BoolVar(&e.fileLog, "tui", false, "show an interactive view; logs go to the log file")
	return cmd
}

func newLogsCommand(e *env) *cobra.Command {
	var (
		lines int
		grep  string
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent entries from the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := e.cfg.LogPath()
			raw, err := logtail.Read(path, lines)
			if err != nil {
				return err
			}
			entries := logtail.Filter(raw, logtail.Query{Contains: grep, MinLevel: level})
			if len(entries) == 0 {
				e.out.Info("No log entries in %s", path)
				return nil
			}
			w := e.out.Writer()
			for _, entry := range entries {
				fmt.Fprintln(w, entry)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to read from the end (0 for all)")
	cmd.Flags().StringVar(&grep, "grep", "", "only show lines containing this text")
	cmd.Flags().StringVar(&level, "level", "", "minimum level to show")
	return cmd
}
