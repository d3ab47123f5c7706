package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/internal/payments"
	"github.com/odyssey-erp/stockroom/internal/view"
)

func newPaymentsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Record payments and inspect balances",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.Client().Payments(cmd.Context())
			if err != nil {
				return err
			}
			return opts.View().Payments(list)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("payment", args[0])
			if err != nil {
				return err
			}
			p, err := opts.Client().Payment(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.View().Payments([]payments.Payment{p})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "order <order-id>",
		Short: "List the payments of one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			list, err := opts.Client().OrderPayments(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.View().Payments(list)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "summary <order-id>",
		Short: "Show paid and outstanding amounts of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			summary, err := opts.Client().PaymentSummary(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.View().PaymentSummary(summary)
		},
	})

	cmd.AddCommand(newRecordPaymentCommand(opts))
	return cmd
}

func newRecordPaymentCommand(opts *RootOptions) *cobra.Command {
	var (
		amount, method, status string
		reference, notes, key  string
	)
	cmd := &cobra.Command{
		Use:   "record <order-id>",
		Short: "Record a payment against an order",
		Long: `Record a payment against an approved or received order.

Without --amount the full outstanding balance is paid. Amounts above the
outstanding balance are refused before anything is sent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			m := payments.Method(strings.ToUpper(method))
			if !m.IsValid() {
				return fmt.Errorf("invalid payment method %q: must be one of %v", method, payments.Methods)
			}
			st := payments.Status(strings.ToUpper(status))
			if status != "" && !st.IsValid() {
				return fmt.Errorf("invalid payment status %q", status)
			}

			summary, err := opts.Client().PaymentSummary(cmd.Context(), orderID)
			if err != nil {
				return err
			}
			if !summary.Outstanding.IsPositive() {
				return fmt.Errorf("order #%d is fully paid", orderID)
			}
			value := summary.Outstanding
			if amount != "" {
				value, err = decimal.NewFromString(amount)
				if err != nil || !value.IsPositive() {
					return fmt.Errorf("invalid amount %q", amount)
				}
				if value.GreaterThan(summary.Outstanding) {
					return fmt.Errorf("amount %s exceeds outstanding %s", view.Money(value), view.Money(summary.Outstanding))
				}
			}

			payment, err := opts.Client().RecordPayment(cmd.Context(), payments.RecordPaymentRequest{
				PurchaseOrder:        payments.OrderRefRequest{ID: orderID},
				Amount:               value,
				PaymentMethod:        m,
				Status:               st,
				TransactionReference: reference,
				Notes:                notes,
			}, key)
			if err != nil {
				return err
			}
			return opts.View().Message(payment, "Recorded payment %d of %s on order #%d (%s)",
				payment.ID, view.Money(payment.Amount), orderID, payment.Status)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount to pay (default: outstanding balance)")
	cmd.Flags().StringVar(&method, "method", string(payments.MethodBankTransfer), "payment method")
	cmd.Flags().StringVar(&status, "status", "", "payment status (default COMPLETED)")
	cmd.Flags().StringVar(&reference, "reference", "", "transaction reference")
	cmd.Flags().StringVar(&notes, "notes", "", "free text notes")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "reject a replay of this request")
	return cmd
}
