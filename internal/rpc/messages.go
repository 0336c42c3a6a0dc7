package rpc

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/models"
)

// Group service

type CreateGroupRequest struct {
	Name string `json:"name"`
	// Members without a user_id get a generated one.
	Members []models.Member `json:"members"`
}

type CreateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *models.Group `json:"group"`
}

// ListGroupsRequest lists every group, or only those MemberID belongs to.
type ListGroupsRequest struct {
	MemberID string `json:"member_id,omitempty"`
}

type ListGroupsResponse struct {
	Groups []*models.Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID string          `json:"group_id"`
	Name    string          `json:"name"`
	Members []models.Member `json:"members"`
}

type UpdateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

// GroupBalances is the evaluated state of one group. It is the response of
// GetGroupBalances and each message of WatchGroupBalances.
type GroupBalances struct {
	GroupID string `json:"group_id"`
	ledger.Report
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupSummaryResponse struct {
	GroupID string             `json:"group_id"`
	Summary calculator.Summary `json:"summary"`
}

type WatchGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

// Expense service

// ExpenseView is an expense together with its inferred category and what
// each sharer owes.
type ExpenseView struct {
	models.Expense
	Category calculator.Category     `json:"category"`
	Shares   []calculator.PersonShare `json:"shares"`
}

type AddExpenseRequest struct {
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	SharedBy    []string        `json:"shared_by"`
	Date        string          `json:"date,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

type AddExpenseResponse struct {
	Expense ExpenseView `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense ExpenseView `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID   string          `json:"expense_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	SharedBy    []string        `json:"shared_by"`
	Date        string          `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense ExpenseView `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []ExpenseView `json:"expenses"`
}

// Settlement service

type RecordSettlementRequest struct {
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty"`
	CreatedBy  string          `json:"created_by,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *models.Settlement `json:"settlement"`
}

type GetSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type GetSettlementResponse struct {
	Settlement *models.Settlement `json:"settlement"`
}

type UpdateSettlementRequest struct {
	SettlementID string          `json:"settlement_id"`
	FromUserID   string          `json:"from_user_id"`
	ToUserID     string          `json:"to_user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Note         *string         `json:"note,omitempty"`
}

type UpdateSettlementResponse struct {
	Settlement *models.Settlement `json:"settlement"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type DeleteSettlementResponse struct{}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []models.Settlement `json:"settlements"`
}
