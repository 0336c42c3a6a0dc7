package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
)

func TestSplitExpense(t *testing.T) {
	tests := []struct {
		name         string
		expense      models.Expense
		wantErr      bool
		wantDisplays []string
	}{
		{
			name:         "even split",
			expense:      expense("e1", "300", "A", "A", "B", "C"),
			wantDisplays: []string{"100.00", "100.00", "100.00"},
		},
		{
			name:         "leftover cents go to the first sharers",
			expense:      expense("e1", "100", "A", "A", "B", "C"),
			wantDisplays: []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "sub-cent amount splits its rounded total",
			expense:      expense("e1", "10.005", "A", "A", "B"),
			wantDisplays: []string{"5.01", "5.00"},
		},
		{
			name:         "duplicates collapse",
			expense:      expense("e1", "10", "A", "B", "B"),
			wantDisplays: []string{"10.00"},
		},
		{
			name:    "no sharers",
			expense: expense("e1", "10", "A"),
			wantErr: true,
		},
		{
			name:    "zero amount",
			expense: expense("e1", "0", "A", "B"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitExpense(tt.expense)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitExpense() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(shares) != len(tt.wantDisplays) {
				t.Fatalf("expected %d shares, got %d", len(tt.wantDisplays), len(shares))
			}
			total := decimal.Zero
			for i, s := range shares {
				if got := FormatAmount(s.Display); got != tt.wantDisplays[i] {
					t.Errorf("share %d display = %s, want %s", i, got, tt.wantDisplays[i])
				}
				total = total.Add(s.Display)
			}
			if want := tt.expense.Amount.Round(2); !total.Equal(want) {
				t.Errorf("display total = %s, want %s", total, want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{"33.333333": "33.33", "-100": "-100.00", "0.005": "0.01"}
	for in, want := range tests {
		if got := FormatAmount(d(in)); got != want {
			t.Errorf("FormatAmount(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	oct := time.Date(2026, time.October, 3, 12, 0, 0, 0, time.UTC).Unix()
	sep := time.Date(2026, time.September, 28, 9, 0, 0, 0, time.UTC).Unix()

	expenses := []models.Expense{
		{Description: "Dinner", Amount: d("120"), PaidBy: "A", CreatedAt: oct},
		{Description: "Cab to hotel", Amount: d("30"), PaidBy: "B", CreatedAt: oct},
		{Description: "Hotel", Amount: d("300"), PaidBy: "A", CreatedAt: sep},
		{Description: "Gift", Amount: d("50"), PaidBy: "Z", CreatedAt: sep},
		{Description: "Broken", Amount: d("0"), PaidBy: "A", CreatedAt: sep},
	}

	s := Summarize(expenses, abc)

	if !s.TotalAmount.Equal(d("500")) {
		t.Errorf("total = %s, want 500", s.TotalAmount)
	}
	if s.ExpenseCount != 4 {
		t.Errorf("count = %d, want 4", s.ExpenseCount)
	}

	wantPayers := []struct {
		id    string
		total string
	}{{"A", "420"}, {"B", "30"}, {"C", "0"}, {"Z", "50"}}
	if len(s.ByPayer) != len(wantPayers) {
		t.Fatalf("payers = %+v", s.ByPayer)
	}
	for i, w := range wantPayers {
		if s.ByPayer[i].UserID != w.id || !s.ByPayer[i].Total.Equal(d(w.total)) {
			t.Errorf("payer %d = %s %s, want %s %s", i, s.ByPayer[i].UserID, s.ByPayer[i].Total, w.id, w.total)
		}
	}

	wantCats := []string{"food_dining", "transport", "accommodation", "other"}
	if len(s.ByCategory) != len(wantCats) {
		t.Fatalf("categories = %+v", s.ByCategory)
	}
	for i, id := range wantCats {
		if s.ByCategory[i].Category.ID != id {
			t.Errorf("category %d = %s, want %s", i, s.ByCategory[i].Category.ID, id)
		}
	}

	if len(s.ByMonth) != 2 || s.ByMonth[0].Month != "2026-09" || s.ByMonth[1].Month != "2026-10" {
		t.Fatalf("months = %+v", s.ByMonth)
	}
	if !s.ByMonth[0].Total.Equal(d("350")) || s.ByMonth[0].Count != 2 {
		t.Errorf("september = %s/%d, want 350/2", s.ByMonth[0].Total, s.ByMonth[0].Count)
	}
}
