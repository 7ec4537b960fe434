package service_test

import (
	"context"
	"sync"
	"testing"

	"go-packet-inventory/internal/events"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/internal/service"
	"go-packet-inventory/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type env struct {
	db        *gorm.DB
	events    *recorder
	users     repository.UserRepository
	inventory service.InventoryService
	expenses  service.ExpenseService
	financial service.FinancialService
	auth      service.AuthService
	profile   service.ProfileService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	log := zap.NewNop()
	rec := &recorder{}
	products := repository.NewProductRepo(db)
	transactions := repository.NewTransactionRepo(db)
	expenses := repository.NewExpenseRepo(db)
	users := repository.NewUserRepo(db)
	store := repository.NewInventoryStore(db, products, transactions)

	return &env{
		db:        db,
		events:    rec,
		users:     users,
		inventory: service.NewInventoryService(products, transactions, store, rec, log),
		expenses:  service.NewExpenseService(expenses, rec, log),
		financial: service.NewFinancialService(products, transactions, expenses, 5),
		auth:      service.NewAuthService(users, log),
		profile:   service.NewProfileService(users),
	}
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func priceOf(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// stocked creates a product for owner and purchases the given packets.
func (e *env) stocked(t *testing.T, owner uuid.UUID, p250, p500 int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	p, err := e.inventory.CreateProduct(ctx, owner, &service.CreateProductRequest{Name: "Chilli", DefaultPacketSize: 250})
	require.NoError(t, err)
	if p250 > 0 {
		_, err = e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
			ProductID: p.ID, Type: "purchase", PacketSize: 250, Count: p250, UnitPrice: price(10),
		})
		require.NoError(t, err)
	}
	if p500 > 0 {
		_, err = e.inventory.RecordTransaction(ctx, owner, &service.RecordTransactionRequest{
			ProductID: p.ID, Type: "purchase", PacketSize: 500, Count: p500, UnitPrice: price(18),
		})
		require.NoError(t, err)
	}
	return p.ID
}
