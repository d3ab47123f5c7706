package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/internal/products"
	"github.com/odyssey-erp/stockroom/internal/vendors"
)

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func newVendorsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "List and create vendors",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every vendor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.Client().Vendors(cmd.Context())
			if err != nil {
				return err
			}
			return opts.View().Vendors(list)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("vendor", args[0])
			if err != nil {
				return err
			}
			v, err := opts.Client().Vendor(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.View().Vendors([]vendors.Vendor{v})
		},
	})

	var req vendors.CreateVendorRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a vendor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.Client().CreateVendor(cmd.Context(), req)
			if err != nil {
				return err
			}
			return opts.View().Message(v, "Created vendor %d %s", v.ID, v.Name)
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "vendor name")
	create.Flags().StringVar(&req.ContactNumber, "contact", "", "contact number")
	create.Flags().StringVar(&req.Email, "email", "", "email address")
	create.Flags().StringVar(&req.Address, "address", "", "postal address")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("contact")
	cmd.AddCommand(create)

	return cmd
}

func newProductsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and create products",
	}

	var lowOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the catalog with stock levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := opts.Client().Products(cmd.Context())
			if err != nil {
				return err
			}
			if lowOnly {
				low := all[:0]
				for _, p := range all {
					if p.IsLowStock() {
						low = append(low, p)
					}
				}
				all = low
			}
			return opts.View().Products(all)
		},
	}
	list.Flags().BoolVar(&lowOnly, "low-stock", false, "only products below the low stock threshold")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			p, err := opts.Client().Product(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.View().Products([]products.Product{p})
		},
	})

	var (
		req   products.CreateProductRequest
		price string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid price %q", price)
			}
			req.UnitPrice = unitPrice
			p, err := opts.Client().CreateProduct(cmd.Context(), req)
			if err != nil {
				return err
			}
			return opts.View().Message(p, "Created product %d %s (%s)", p.ID, p.Name, p.SKU)
		},
	}
	create.Flags().StringVar(&req.SKU, "sku", "", "stock keeping unit, unique")
	create.Flags().StringVar(&req.Name, "name", "", "product name")
	create.Flags().StringVar(&price, "price", "", "unit price")
	create.Flags().IntVar(&req.CurrentStock, "stock", 0, "opening stock")
	create.Flags().StringVar(&req.Description, "description", "", "description")
	_ = create.MarkFlagRequired("sku")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("price")
	cmd.AddCommand(create)

	return cmd
}
