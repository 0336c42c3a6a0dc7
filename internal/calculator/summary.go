package calculator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
)

// PayerTotal is how much one member fronted across all expenses.
type PayerTotal struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Total  decimal.Decimal `json:"total"`
}

// CategoryTotal is the spending attributed to one category.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// MonthTotal is the spending in one calendar month (UTC), keyed "2006-01".
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Summary aggregates a group's spending.
type Summary struct {
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ExpenseCount int             `json:"expense_count"`
	ByPayer      []PayerTotal    `json:"by_payer"`
	ByCategory   []CategoryTotal `json:"by_category"`
	ByMonth      []MonthTotal    `json:"by_month"`
}

// Summarize totals expenses overall, per payer, per category and per month.
// Payers are listed in roster order; payers outside the roster follow in
// first-seen order. Categories keep priority order and months are ascending.
// Expenses with a non-positive amount are ignored.
func Summarize(expenses []models.Expense, members []models.Member) Summary {
	s := Summary{TotalAmount: decimal.Zero}

	payerIndex := make(map[string]int, len(members))
	for _, m := range members {
		if _, ok := payerIndex[m.UserID]; ok {
			continue
		}
		payerIndex[m.UserID] = len(s.ByPayer)
		s.ByPayer = append(s.ByPayer, PayerTotal{UserID: m.UserID, Name: m.DisplayName(), Total: decimal.Zero})
	}

	byCategory := make(map[string]*CategoryTotal)
	byMonth := make(map[string]*MonthTotal)

	for _, e := range expenses {
		if !e.Amount.IsPositive() {
			continue
		}
		s.TotalAmount = s.TotalAmount.Add(e.Amount)
		s.ExpenseCount++

		i, ok := payerIndex[e.PaidBy]
		if !ok {
			i = len(s.ByPayer)
			payerIndex[e.PaidBy] = i
			s.ByPayer = append(s.ByPayer, PayerTotal{UserID: e.PaidBy, Total: decimal.Zero})
		}
		s.ByPayer[i].Total = s.ByPayer[i].Total.Add(e.Amount)

		cat := InferCategory(e.Description)
		ct, ok := byCategory[cat.ID]
		if !ok {
			ct = &CategoryTotal{Category: cat, Total: decimal.Zero}
			byCategory[cat.ID] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++

		month := time.Unix(e.CreatedAt, 0).UTC().Format("2006-01")
		mt, ok := byMonth[month]
		if !ok {
			mt = &MonthTotal{Month: month, Total: decimal.Zero}
			byMonth[month] = mt
		}
		mt.Total = mt.Total.Add(e.Amount)
		mt.Count++
	}

	for _, cat := range Categories() {
		if ct, ok := byCategory[cat.ID]; ok {
			s.ByCategory = append(s.ByCategory, *ct)
		}
	}

	for _, mt := range byMonth {
		s.ByMonth = append(s.ByMonth, *mt)
	}
	sort.Slice(s.ByMonth, func(i, j int) bool { return s.ByMonth[i].Month < s.ByMonth[j].Month })

	return s
}
