package calculator

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
)

func balancesOf(pairs ...string) Balances {
	var b Balances
	for i := 0; i+1 < len(pairs); i += 2 {
		b = append(b, MemberBalance{UserID: pairs[i], Name: pairs[i], Balance: d(pairs[i+1])})
	}
	return b
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances Balances
		want     []SuggestedSettlement
	}{
		{
			name:     "one creditor two equal debtors keeps roster order",
			balances: balancesOf("A", "200", "B", "-100", "C", "-100"),
			want: []SuggestedSettlement{
				{From: "B", To: "A", Amount: d("100")},
				{From: "C", To: "A", Amount: d("100")},
			},
		},
		{
			name:     "single pair",
			balances: balancesOf("A", "100", "B", "-100"),
			want:     []SuggestedSettlement{{From: "B", To: "A", Amount: d("100")}},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: balancesOf("A", "30", "B", "70", "C", "-20", "D", "-80"),
			want: []SuggestedSettlement{
				{From: "D", To: "B", Amount: d("70")},
				{From: "D", To: "A", Amount: d("10")},
				{From: "C", To: "A", Amount: d("20")},
			},
		},
		{
			name:     "all settled",
			balances: balancesOf("A", "0.004", "B", "-0.01", "C", "0.006"),
			want:     nil,
		},
		{
			name:     "only creditors",
			balances: balancesOf("A", "5", "B", "0"),
			want:     nil,
		},
		{
			name:     "empty input",
			balances: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("Simplify() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To || !approx(got[i].Amount, tt.want[i].Amount) {
					t.Errorf("step %d = %s->%s %s, want %s->%s %s", i,
						got[i].From, got[i].To, got[i].Amount,
						tt.want[i].From, tt.want[i].To, tt.want[i].Amount)
				}
			}
		})
	}
}

func TestSimplify_CarriesNames(t *testing.T) {
	res := ComputeBalances([]models.Expense{expense("e1", "100", "A", "B")}, nil, abc)
	got := Simplify(res.Balances)
	if len(got) != 1 {
		t.Fatalf("expected one suggestion, got %d", len(got))
	}
	if got[0].FromName != "Bob" || got[0].ToName != "Alice" {
		t.Errorf("names = %q -> %q, want Bob -> Alice", got[0].FromName, got[0].ToName)
	}
}

func TestClassify(t *testing.T) {
	c := Classify(balancesOf("A", "10", "B", "-5", "C", "0.01", "D", "25", "E", "-0.01", "F", "-7", "G", "10"))

	ids := func(list []MemberBalance) string {
		s := ""
		for _, mb := range list {
			s += mb.UserID
		}
		return s
	}

	if got := ids(c.Creditors); got != "DAG" {
		t.Errorf("creditors = %s, want DAG", got)
	}
	if got := ids(c.Debtors); got != "FB" {
		t.Errorf("debtors = %s, want FB", got)
	}
	if got := ids(c.Settled); got != "CE" {
		t.Errorf("settled = %s, want CE", got)
	}
	if c.AllSettled() {
		t.Error("AllSettled() = true with open balances")
	}
}

func TestScenarios(t *testing.T) {
	t.Run("settle up then simplify", func(t *testing.T) {
		res := ComputeBalances(
			[]models.Expense{expense("e1", "300", "A", "A", "B", "C")},
			[]models.Settlement{settlement("s1", "B", "A", "100")},
			abc,
		)
		got := Simplify(res.Balances)
		if len(got) != 1 || got[0].From != "C" || got[0].To != "A" || !got[0].Amount.Equal(d("100")) {
			t.Errorf("Simplify() = %+v, want [C->A 100]", got)
		}
	})

	t.Run("everyone within tolerance", func(t *testing.T) {
		res := ComputeBalances(
			[]models.Expense{expense("e1", "90", "A", "A", "B", "C")},
			[]models.Settlement{settlement("s1", "B", "A", "30"), settlement("s2", "C", "A", "29.995")},
			abc,
		)
		c := Classify(res.Balances)
		if !c.AllSettled() {
			t.Errorf("expected all settled, got %+v", c)
		}
		if len(c.Settled) != 3 {
			t.Errorf("settled = %d, want 3", len(c.Settled))
		}
		if got := Simplify(res.Balances); len(got) != 0 {
			t.Errorf("Simplify() = %+v, want empty", got)
		}
	})
}

func TestSimplify_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 100; round++ {
		expenses, settlements := randomSnapshot(r, fiveMembers)
		balances := ComputeBalances(expenses, settlements, fiveMembers).Balances
		c := Classify(balances)
		got := Simplify(balances)

		if c.AllSettled() {
			if len(got) != 0 {
				t.Fatalf("round %d: expected no suggestions, got %d", round, len(got))
			}
			continue
		}

		if len(c.Creditors) > 0 && len(c.Debtors) > 0 {
			if limit := len(c.Creditors) + len(c.Debtors) - 1; len(got) > limit {
				t.Fatalf("round %d: %d suggestions, want at most %d", round, len(got), limit)
			}
		}

		received := make(map[string]decimal.Decimal)
		paid := make(map[string]decimal.Decimal)
		for _, s := range got {
			if s.From == s.To {
				t.Fatalf("round %d: self transfer %+v", round, s)
			}
			if !s.Amount.IsPositive() {
				t.Fatalf("round %d: non-positive transfer %+v", round, s)
			}
			received[s.To] = received[s.To].Add(s.Amount)
			paid[s.From] = paid[s.From].Add(s.Amount)
		}

		for _, mb := range c.Creditors {
			if !approx(received[mb.UserID], mb.Balance) {
				t.Errorf("round %d: creditor %s receives %s, balance %s", round, mb.UserID, received[mb.UserID], mb.Balance)
			}
		}
		for _, mb := range c.Debtors {
			if !approx(paid[mb.UserID], mb.Balance.Abs()) {
				t.Errorf("round %d: debtor %s pays %s, balance %s", round, mb.UserID, paid[mb.UserID], mb.Balance)
			}
		}

		// Applying the suggestions settles everyone.
		after := make(Balances, len(balances))
		copy(after, balances)
		for i := range after {
			after[i].Balance = after[i].Balance.Sub(received[after[i].UserID]).Add(paid[after[i].UserID])
		}
		if !Classify(after).AllSettled() {
			t.Errorf("round %d: balances not settled after applying suggestions", round)
		}
	}
}
