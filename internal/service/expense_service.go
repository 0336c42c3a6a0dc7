package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/rpc"
	"github.com/mmynk/groupledger/internal/storage"
)

// Ensure ExpenseService implements rpc.ExpenseServiceHandler
var _ rpc.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

func expenseView(e *models.Expense) rpc.ExpenseView {
	view := rpc.ExpenseView{Expense: *e, Category: calculator.InferCategory(e.Description)}
	// Only unvalidated rows fail here; they are shown without shares.
	if shares, err := calculator.SplitExpense(*e); err == nil {
		view.Shares = shares
	}
	return view
}

// checkExpense validates an expense. Membership of the payer and sharers is
// enforced by the store in the same transaction as the write.
func checkExpense(expense *models.Expense) error {
	if err := expense.Validate(); err != nil {
		return invalidArgument(err)
	}
	return nil
}

// AddExpense records a new expense in a group.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[rpc.AddExpenseRequest]) (*connect.Response[rpc.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"description", req.Msg.Description,
		"amount", req.Msg.Amount.String(),
		"paid_by", req.Msg.PaidBy,
		"shared_by_count", len(req.Msg.SharedBy),
	)

	expense := &models.Expense{
		GroupID:     req.Msg.GroupID,
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		PaidBy:      req.Msg.PaidBy,
		SharedBy:    req.Msg.SharedBy,
		Date:        req.Msg.Date,
		CreatedBy:   req.Msg.CreatedBy,
	}
	if err := checkExpense(expense); err != nil {
		slog.Warn("AddExpense rejected", "group_id", expense.GroupID, "error", err)
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense added", "expense_id", expense.ID, "group_id", expense.GroupID)

	return connect.NewResponse(&rpc.AddExpenseResponse{Expense: expenseView(expense)}), nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[rpc.GetExpenseRequest]) (*connect.Response[rpc.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID == "" {
		return nil, required("expense_id")
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&rpc.GetExpenseResponse{Expense: expenseView(expense)}), nil
}

// UpdateExpense replaces the description, amount, payer, sharers and date of
// an expense. The group and creator are kept.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[rpc.UpdateExpenseRequest]) (*connect.Response[rpc.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID == "" {
		return nil, required("expense_id")
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("UpdateExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, storageError(err)
	}

	expense.Description = req.Msg.Description
	expense.Amount = req.Msg.Amount
	expense.PaidBy = req.Msg.PaidBy
	expense.SharedBy = req.Msg.SharedBy
	expense.Date = req.Msg.Date
	if err := checkExpense(expense); err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", expense.ID, "error", err)
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)

	return connect.NewResponse(&rpc.UpdateExpenseResponse{Expense: expenseView(expense)}), nil
}

// DeleteExpense removes an expense by ID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[rpc.DeleteExpenseRequest]) (*connect.Response[rpc.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID == "" {
		return nil, required("expense_id")
	}

	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)

	return connect.NewResponse(&rpc.DeleteExpenseResponse{}), nil
}

// ListExpenses retrieves a group's expenses, newest first, each with its
// inferred category.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[rpc.ListExpensesRequest]) (*connect.Response[rpc.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, required("group_id")
	}

	// Verify group exists
	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("ListExpenses failed - group not found", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	views := make([]rpc.ExpenseView, len(expenses))
	for i := range expenses {
		views[i] = expenseView(&expenses[i])
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(views))

	return connect.NewResponse(&rpc.ListExpensesResponse{Expenses: views}), nil
}
