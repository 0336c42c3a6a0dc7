package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/rpc"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/internal/storage/sqlite"
)

type testClients struct {
	groups      *rpc.GroupServiceClient
	expenses    *rpc.ExpenseServiceClient
	settlements *rpc.SettlementServiceClient
}

// setupTestServer creates a test server with every service over a temp SQLite database
func setupTestServer(t *testing.T) testClients {
	t.Helper()
	return setupTestServerWithStore(t, nil)
}

// setupTestServerWithStore is setupTestServer with the services seeing the
// store through wrap, when wrap is not nil.
func setupTestServerWithStore(t *testing.T, wrap func(storage.Store) storage.Store) testClients {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	var backend storage.Store = store
	if wrap != nil {
		backend = wrap(store)
	}

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor())

	groupPath, groupHandler := rpc.NewGroupServiceHandler(NewGroupService(backend, ledger.NewEngine(16)), interceptors)
	expensePath, expenseHandler := rpc.NewExpenseServiceHandler(NewExpenseService(backend), interceptors)
	settlementPath, settlementHandler := rpc.NewSettlementServiceHandler(NewSettlementService(backend), interceptors)

	mux := http.NewServeMux()
	mux.Handle(groupPath, groupHandler)
	mux.Handle(expensePath, expenseHandler)
	mux.Handle(settlementPath, settlementHandler)

	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return testClients{
		groups:      rpc.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    rpc.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: rpc.NewSettlementServiceClient(http.DefaultClient, server.URL),
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// createTrio creates a group of Alice, Bob and Carol with ids A, B and C.
func createTrio(t *testing.T, c testClients) *models.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&rpc.CreateGroupRequest{
		Name: "Trip",
		Members: []models.Member{
			{UserID: "A", Name: "Alice"},
			{UserID: "B", Name: "Bob"},
			{UserID: "C", Name: "Carol"},
		},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func addExpense(t *testing.T, c testClients, groupID, description, amount, paidBy string, sharedBy ...string) rpc.ExpenseView {
	t.Helper()
	resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&rpc.AddExpenseRequest{
		GroupID:     groupID,
		Description: description,
		Amount:      dec(amount),
		PaidBy:      paidBy,
		SharedBy:    sharedBy,
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func recordSettlement(t *testing.T, c testClients, groupID, from, to, amount string) *models.Settlement {
	t.Helper()
	resp, err := c.settlements.RecordSettlement(context.Background(), connect.NewRequest(&rpc.RecordSettlementRequest{
		GroupID:    groupID,
		FromUserID: from,
		ToUserID:   to,
		Amount:     dec(amount),
	}))
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	return resp.Msg.Settlement
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Errorf("expected code %v, got %v (%v)", code, got, err)
	}
}

func balanceOf(t *testing.T, b *rpc.GroupBalances, userID string) decimal.Decimal {
	t.Helper()
	mb, ok := b.Balances.Lookup(userID)
	if !ok {
		t.Fatalf("no balance for %s", userID)
	}
	return mb.Balance
}
