package service_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"go-packet-inventory/internal/events"
	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordThenDeleteRestoresStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 3, 0)

	id, err := e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
		ProductID: productID, Type: model.TxPurchase, PacketSize: model.Packet250, Count: 5, UnitPrice: price(12),
	})
	require.NoError(t, err)

	p, err := e.inventory.GetProduct(ctx, owner, productID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.StockPackets250)

	require.NoError(t, e.inventory.ReverseAndDelete(ctx, owner, id))
	p, err = e.inventory.GetProduct(ctx, owner, productID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockPackets250)

	_, err = e.inventory.GetTransactionByID(ctx, owner, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, e.events.actions(), events.ActionTransactionDeleted)
}

func TestSaleBeyondStockFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 2, 0)
	before := len(e.events.actions())

	_, err := e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
		ProductID: productID, Type: model.TxSale, PacketSize: model.Packet250, Count: 3, UnitPrice: price(20),
	})

	var stockErr *model.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	p, err := e.inventory.GetProduct(ctx, owner, productID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockPackets250)
	assert.Len(t, e.events.actions(), before, "failed mutation publishes nothing")
}

// Runs serialized on the single sqlite connection; the stock guard itself is
// covered by repository.TestUpdatePacketsGuardsStaleReads.
func TestConcurrentSalesNeverOverdraw(t *testing.T) {
	e := newEnv(t)
	owner := uuid.New()
	productID := e.stocked(t, owner, 0, 1)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.inventory.RecordTransaction(context.Background(), owner, &service.RecordTransactionRequest{
				ProductID: productID, Type: model.TxSale, PacketSize: model.Packet500, Count: 1, UnitPrice: price(40),
			})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)

	p, err := e.inventory.GetProduct(context.Background(), owner, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockPackets500)
}

func TestConvertPackets500To250(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 0, 10)

	p, err := e.inventory.ConvertPackets(ctx, owner, productID, &service.ConvertPacketsRequest{
		Direction: model.Convert500To250, Conversions: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, p.StockPackets500)
	assert.Equal(t, 6, p.StockPackets250)

	txns, err := e.inventory.GetAllTransactions(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, txns, 1, "conversions are not ledger rows")
	assert.Contains(t, e.events.actions(), events.ActionPacketsConverted)

	_, err = e.inventory.ConvertPackets(ctx, owner, productID, &service.ConvertPacketsRequest{
		Direction: model.Convert250To500, Conversions: 4,
	})
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 4, 0)
	lend := model.PayLend
	customer := "Anil"

	id, err := e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
		ProductID: productID, Type: model.TxSale, PacketSize: model.Packet250, Count: 2,
		UnitPrice: price(25), PaymentMethod: &lend, CustomerName: &customer,
	})
	require.NoError(t, err)

	first, err := e.inventory.MarkPaid(ctx, owner, id)
	require.NoError(t, err)
	second, err := e.inventory.MarkPaid(ctx, owner, id)
	require.NoError(t, err)

	assert.Equal(t, model.StatusPaid, first.PaymentStatus)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)

	paid := 0
	for _, a := range e.events.actions() {
		if a == events.ActionTransactionPaid {
			paid++
		}
	}
	assert.Equal(t, 1, paid)

	p, err := e.inventory.GetProduct(ctx, owner, productID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockPackets250, "mark paid has no stock effect")
}

func TestDeletingConsumedPurchaseIsRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	p, err := e.inventory.CreateProduct(ctx, owner, &service.CreateProductRequest{Name: "Ginger", DefaultPacketSize: 500})
	require.NoError(t, err)

	buy, err := e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
		ProductID: p.ID, Type: model.TxPurchase, PacketSize: model.Packet500, Count: 2, UnitPrice: price(30),
	})
	require.NoError(t, err)
	_, err = e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
		ProductID: p.ID, Type: model.TxSale, PacketSize: model.Packet500, Count: 2, UnitPrice: price(45),
	})
	require.NoError(t, err)

	err = e.inventory.ReverseAndDelete(ctx, owner, buy)
	var stockErr *model.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	got, err := e.inventory.GetTransactionByID(ctx, owner, buy)
	require.NoError(t, err)
	assert.Equal(t, buy, got.ID)
}

func TestOwnersAreIsolated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, mallory := uuid.New(), uuid.New()
	productID := e.stocked(t, alice, 5, 0)

	txns, err := e.inventory.GetAllTransactions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	err = e.inventory.ReverseAndDelete(ctx, mallory, txns[0].ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = e.inventory.RecordTransaction(ctx, mallory, &service.RecordTransactionRequest{
		ProductID: productID, Type: model.TxSale, PacketSize: model.Packet250, Count: 1, UnitPrice: price(10),
	})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = e.inventory.ConvertPackets(ctx, mallory, productID, &service.ConvertPacketsRequest{
		Direction: model.Convert250To500, Conversions: 1,
	})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = e.inventory.MarkPaid(ctx, mallory, txns[0].ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = e.inventory.GetProduct(ctx, mallory, productID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	list, err := e.inventory.GetAllProducts(ctx, mallory)
	require.NoError(t, err)
	assert.Empty(t, list)

	p, err := e.inventory.GetProduct(ctx, alice, productID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockPackets250)
}

func TestMissingOwnerIsUnauthorized(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.inventory.RecordTransaction(ctx, uuid.Nil, &service.RecordTransactionRequest{})
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.ErrorIs(t, e.inventory.ReverseAndDelete(ctx, uuid.Nil, uuid.New()), model.ErrUnauthorized)
	_, err = e.inventory.ConvertPackets(ctx, uuid.Nil, uuid.New(), &service.ConvertPacketsRequest{})
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = e.inventory.MarkPaid(ctx, uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = e.inventory.GetAllProducts(ctx, uuid.Nil)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestRecordTransactionValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 1, 0)

	cases := map[string]*service.RecordTransactionRequest{
		"zero count":   {ProductID: productID, Type: model.TxPurchase, PacketSize: 250, Count: 0, UnitPrice: price(1)},
		"odd size":     {ProductID: productID, Type: model.TxPurchase, PacketSize: 300, Count: 1, UnitPrice: price(1)},
		"unknown type": {ProductID: productID, Type: "gift", PacketSize: 250, Count: 1, UnitPrice: price(1)},
		"no product":   {Type: model.TxPurchase, PacketSize: 250, Count: 1, UnitPrice: price(1)},
		"no price":     {ProductID: productID, Type: model.TxPurchase, PacketSize: 250, Count: 1},
		"both prices":  {ProductID: productID, Type: model.TxPurchase, PacketSize: 250, Count: 1, UnitPrice: price(1), PricePerKg: price(4)},
		"negative":     {ProductID: productID, Type: model.TxPurchase, PacketSize: 250, Count: 1, UnitPrice: price(-1)},
		"bad method":   {ProductID: productID, Type: model.TxSale, PacketSize: 250, Count: 1, UnitPrice: price(1), PaymentMethod: methodPtr("card")},
		"negative kg":  {ProductID: productID, Type: model.TxPurchase, PacketSize: 250, Count: 1, PricePerKg: price(-8)},
		"sub cent":     {ProductID: productID, Type: model.TxPurchase, PacketSize: 250, Count: 1, UnitPrice: priceOf("1.005")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.inventory.RecordTransaction(ctx, owner, req)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func methodPtr(m string) *model.PaymentMethod {
	pm := model.PaymentMethod(m)
	return &pm
}

func TestPricePerKg(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 0, 0)

	id, err := e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
		ProductID: productID, Type: model.TxPurchase, PacketSize: model.Packet500, Count: 3, PricePerKg: price(120),
	})
	require.NoError(t, err)

	txn, err := e.inventory.GetTransactionByID(ctx, owner, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(txn.UnitPrice), txn.UnitPrice.String())
	assert.True(t, decimal.NewFromInt(180).Equal(txn.TotalPrice), txn.TotalPrice.String())
	assert.Equal(t, 1500, txn.QuantityGrams)
}

func TestPricePerKgRoundsBeforeTotal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 0, 0)

	id, err := e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
		ProductID: productID, Type: model.TxPurchase, PacketSize: model.Packet250, Count: 5, PricePerKg: priceOf("333.33"),
	})
	require.NoError(t, err)

	txn, err := e.inventory.GetTransactionByID(ctx, owner, id)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("83.33").Equal(txn.UnitPrice), txn.UnitPrice.String())
	assert.True(t, decimal.RequireFromString("416.65").Equal(txn.TotalPrice), txn.TotalPrice.String())
	assert.True(t, txn.UnitPrice.Mul(decimal.NewFromInt(5)).Equal(txn.TotalPrice))
}

// Any sequence of operations, accepted or rejected, keeps both counters
// non-negative.
func TestStockNeverNegative(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	productID := e.stocked(t, owner, 0, 0)
	rng := rand.New(rand.NewSource(42))
	sizes := []model.PacketSize{model.Packet250, model.Packet500}
	var recorded []uuid.UUID

	for i := 0; i < 120; i++ {
		switch rng.Intn(4) {
		case 0, 1:
			txType := model.TxPurchase
			if rng.Intn(2) == 0 {
				txType = model.TxSale
			}
			id, err := e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
				ProductID: productID, Type: txType, PacketSize: sizes[rng.Intn(2)], Count: 1 + rng.Intn(4), UnitPrice: price(5),
			})
			if err == nil {
				recorded = append(recorded, id)
			} else {
				require.ErrorIs(t, err, model.ErrInsufficientStock)
			}
		case 2:
			if len(recorded) == 0 {
				continue
			}
			j := rng.Intn(len(recorded))
			err := e.inventory.ReverseAndDelete(ctx, owner, recorded[j])
			if err == nil {
				recorded = append(recorded[:j], recorded[j+1:]...)
			} else {
				require.ErrorIs(t, err, model.ErrInsufficientStock)
			}
		case 3:
			dir := model.Convert500To250
			if rng.Intn(2) == 0 {
				dir = model.Convert250To500
			}
			_, err := e.inventory.ConvertPackets(ctx, owner, productID, &service.ConvertPacketsRequest{Direction: dir, Conversions: 1 + rng.Intn(2)})
			if err != nil {
				require.ErrorIs(t, err, model.ErrInsufficientStock)
			}
		}

		p, err := e.inventory.GetProduct(ctx, owner, productID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, p.StockPackets250, 0)
		require.GreaterOrEqual(t, p.StockPackets500, 0)
	}
}
