package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/stockroom/internal/payments"
	"github.com/odyssey-erp/stockroom/internal/products"
	"github.com/odyssey-erp/stockroom/internal/purchasing"
	"github.com/odyssey-erp/stockroom/internal/vendors"
)

// api is the slice of the REST client the seeder drives.
type api interface {
	CreateVendor(ctx context.Context, req vendors.CreateVendorRequest) (vendors.Vendor, error)
	CreateProduct(ctx context.Context, req products.CreateProductRequest) (products.Product, error)
	CreateOrder(ctx context.Context, req purchasing.CreateOrderRequest) (purchasing.Order, error)
	ApproveOrder(ctx context.Context, id int64) (purchasing.Order, error)
	CancelOrder(ctx context.Context, id int64) (purchasing.Order, error)
	ReceiveOrder(ctx context.Context, id int64) (purchasing.Order, error)
	ReceivePartial(ctx context.Context, id, itemID int64, quantity int) (purchasing.Order, error)
	RecordPayment(ctx context.Context, req payments.RecordPaymentRequest, idempotencyKey string) (payments.Payment, error)
}

type report struct {
	Vendors, Products, Orders, Received, Payments int
}

type seeder struct {
	api   api
	faker *gofakeit.Faker
}

func newSeeder(a api, seed uint64) *seeder {
	return &seeder{api: a, faker: gofakeit.New(seed)}
}

func (s *seeder) run(ctx context.Context, vendorCount, productCount, orderCount int) (report, error) {
	var rep report
	if vendorCount <= 0 || productCount <= 0 {
		return rep, fmt.Errorf("need at least one vendor and one product")
	}

	vendorIDs := make([]int64, 0, vendorCount)
	for i := 0; i < vendorCount; i++ {
		addr := s.faker.Address()
		v, err := s.api.CreateVendor(ctx, vendors.CreateVendorRequest{
			Name:          s.faker.Company(),
			ContactNumber: s.faker.Phone(),
			Email:         s.faker.Email(),
			Address:       addr.Address,
		})
		if err != nil {
			return rep, fmt.Errorf("vendor %d: %w", i+1, err)
		}
		vendorIDs = append(vendorIDs, v.ID)
		rep.Vendors++
	}

	prefix := strings.ToUpper(s.faker.LetterN(3))
	productIDs := make([]int64, 0, productCount)
	for i := 0; i < productCount; i++ {
		p, err := s.api.CreateProduct(ctx, products.CreateProductRequest{
			SKU:          fmt.Sprintf("%s-%04d", prefix, i+1),
			Name:         s.faker.ProductName(),
			UnitPrice:    decimal.NewFromFloat(s.faker.Price(1, 500)).Round(2),
			CurrentStock: s.faker.Number(0, 40),
			Description:  s.faker.Sentence(8),
		})
		if err != nil {
			return rep, fmt.Errorf("product %d: %w", i+1, err)
		}
		productIDs = append(productIDs, p.ID)
		rep.Products++
	}

	for i := 0; i < orderCount; i++ {
		order, err := s.api.CreateOrder(ctx, s.orderRequest(vendorIDs, productIDs))
		if err != nil {
			return rep, fmt.Errorf("order %d: %w", i+1, err)
		}
		rep.Orders++
		if err := s.advance(ctx, order, i, &rep); err != nil {
			return rep, fmt.Errorf("order #%d: %w", order.ID, err)
		}
	}
	return rep, nil
}

func (s *seeder) orderRequest(vendorIDs, productIDs []int64) purchasing.CreateOrderRequest {
	req := purchasing.CreateOrderRequest{
		Vendor: purchasing.Ref{ID: vendorIDs[s.faker.Number(0, len(vendorIDs)-1)]},
	}
	lines := s.faker.Number(1, min(4, len(productIDs)))
	seen := make(map[int64]bool, lines)
	for len(req.Items) < lines {
		id := productIDs[s.faker.Number(0, len(productIDs)-1)]
		if seen[id] {
			continue
		}
		seen[id] = true
		req.Items = append(req.Items, purchasing.CreateItemRequest{
			Product:  purchasing.Ref{ID: id},
			Quantity: s.faker.Number(1, 25),
		})
	}
	return req
}

// advance spreads seeded orders across the lifecycle: pending, approved,
// partly received, received and paid, cancelled.
func (s *seeder) advance(ctx context.Context, order purchasing.Order, i int, rep *report) error {
	stage := i % 5
	if stage == 0 {
		return nil
	}
	if stage == 4 {
		_, err := s.api.CancelOrder(ctx, order.ID)
		return err
	}

	order, err := s.api.ApproveOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	switch stage {
	case 1:
		return nil
	case 2:
		first := order.Items[0]
		if first.Quantity < 2 {
			return nil
		}
		_, err := s.api.ReceivePartial(ctx, order.ID, first.ID, first.Quantity/2)
		return err
	}

	if order, err = s.api.ReceiveOrder(ctx, order.ID); err != nil {
		return err
	}
	rep.Received++

	half := order.TotalAmount.Div(decimal.NewFromInt(2)).Round(2)
	for _, amount := range []decimal.Decimal{half, order.TotalAmount.Sub(half)} {
		if !amount.IsPositive() {
			continue
		}
		_, err := s.api.RecordPayment(ctx, payments.RecordPaymentRequest{
			PurchaseOrder:        payments.OrderRefRequest{ID: order.ID},
			Amount:               amount,
			PaymentMethod:        payments.Methods[s.faker.Number(0, len(payments.Methods)-1)],
			TransactionReference: s.faker.UUID(),
		}, "")
		if err != nil {
			return err
		}
		rep.Payments++
	}
	return nil
}
