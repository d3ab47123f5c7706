package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/internal/purchasing"
)

// parseLine parses a PRODUCT_ID:QUANTITY order line.
func parseLine(raw string) (purchasing.CreateItemRequest, error) {
	productRaw, qtyRaw, ok := strings.Cut(raw, ":")
	if !ok {
		return purchasing.CreateItemRequest{}, fmt.Errorf("invalid item %q: want PRODUCT_ID:QUANTITY", raw)
	}
	productID, err := parseID("product", productRaw)
	if err != nil {
		return purchasing.CreateItemRequest{}, err
	}
	qty, err := strconv.Atoi(qtyRaw)
	if err != nil || qty <= 0 {
		return purchasing.CreateItemRequest{}, fmt.Errorf("invalid quantity %q for product %d", qtyRaw, productID)
	}
	return purchasing.CreateItemRequest{Product: purchasing.Ref{ID: productID}, Quantity: qty}, nil
}

type orderAction func(ctx context.Context, id int64) (purchasing.Order, error)

func newOrderActionCommand(opts *RootOptions, use, short, verb string, action func(*RootOptions) orderAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			order, err := action(opts)(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.View().Message(order, "%s order #%d, now %s", verb, order.ID, order.Status.Label())
		},
	}
}

func newOrdersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage purchase orders",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List purchase orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := purchasing.Status(strings.ToUpper(status))
			if status != "" && !filter.IsValid() {
				return fmt.Errorf("invalid status %q", status)
			}
			all, err := opts.Client().Orders(cmd.Context())
			if err != nil {
				return err
			}
			if filter != "" {
				matched := all[:0]
				for _, o := range all {
					if o.Status == filter {
						matched = append(matched, o)
					}
				}
				all = matched
			}
			return opts.View().Orders(all)
		},
	}
	list.Flags().StringVar(&status, "status", "", "only orders in this status")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show an order with its receipt progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			order, err := opts.Client().Order(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.View().Order(order)
		},
	})

	var (
		vendorID int64
		lines    []string
	)
	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a pending purchase order",
		Example: "  stockctl orders create --vendor 1 --item 3:10 --item 4:2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vendorID <= 0 {
				return fmt.Errorf("--vendor is required")
			}
			if len(lines) == 0 {
				return fmt.Errorf("at least one --item is required")
			}
			req := purchasing.CreateOrderRequest{Vendor: purchasing.Ref{ID: vendorID}}
			for _, raw := range lines {
				item, err := parseLine(raw)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
			}
			order, err := opts.Client().CreateOrder(cmd.Context(), req)
			if err != nil {
				return err
			}
			return opts.View().Order(order)
		},
	}
	create.Flags().Int64Var(&vendorID, "vendor", 0, "vendor id")
	create.Flags().StringArrayVar(&lines, "item", nil, "order line PRODUCT_ID:QUANTITY, repeatable")
	cmd.AddCommand(create)

	cmd.AddCommand(newOrderActionCommand(opts, "approve", "Approve a pending order", "Approved",
		func(o *RootOptions) orderAction { return o.Client().ApproveOrder }))
	cmd.AddCommand(newOrderActionCommand(opts, "cancel", "Cancel a pending or approved order", "Cancelled",
		func(o *RootOptions) orderAction { return o.Client().CancelOrder }))
	cmd.AddCommand(newOrderActionCommand(opts, "receive", "Receive every outstanding unit of an approved order", "Received",
		func(o *RootOptions) orderAction { return o.Client().ReceiveOrder }))

	var (
		itemID   int64
		quantity int
	)
	partial := &cobra.Command{
		Use:   "receive-partial <id>",
		Short: "Receive part of one order line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			if itemID <= 0 || quantity <= 0 {
				return fmt.Errorf("--item and a positive --quantity are required")
			}
			order, err := opts.Client().ReceivePartial(cmd.Context(), id, itemID, quantity)
			if err != nil {
				return err
			}
			return opts.View().Order(order)
		},
	}
	partial.Flags().Int64Var(&itemID, "item", 0, "order item id")
	partial.Flags().IntVar(&quantity, "quantity", 0, "units received")
	cmd.AddCommand(partial)

	return cmd
}
