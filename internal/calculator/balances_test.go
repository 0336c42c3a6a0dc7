package calculator

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func approx(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

var abc = []models.Member{
	{UserID: "A", Name: "Alice"},
	{UserID: "B", Name: "Bob"},
	{UserID: "C", Name: "Carol"},
}

func expense(id, amount, paidBy string, sharedBy ...string) models.Expense {
	return models.Expense{ID: id, GroupID: "g", Description: id, Amount: d(amount), PaidBy: paidBy, SharedBy: sharedBy}
}

func settlement(id, from, to, amount string) models.Settlement {
	return models.Settlement{ID: id, GroupID: "g", FromUserID: from, ToUserID: to, Amount: d(amount)}
}

func wantBalances(t *testing.T, got Balances, want map[string]string) {
	t.Helper()
	for id, w := range want {
		mb, ok := got.Lookup(id)
		if !ok {
			t.Errorf("missing balance for %s", id)
			continue
		}
		if !approx(mb.Balance, d(w)) {
			t.Errorf("balance[%s] = %s, want %s", id, mb.Balance, w)
		}
	}
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		expenses    []models.Expense
		settlements []models.Settlement
		members     []models.Member
		want        map[string]string
		wantSkips   int
	}{
		{
			name:     "three-way split paid by one",
			expenses: []models.Expense{expense("e1", "300", "A", "A", "B", "C")},
			members:  abc,
			want:     map[string]string{"A": "200", "B": "-100", "C": "-100"},
		},
		{
			name:     "payer not in split",
			expenses: []models.Expense{expense("e1", "100", "A", "B")},
			members:  abc[:2],
			want:     map[string]string{"A": "100", "B": "-100"},
		},
		{
			name:        "settlement reduces balances",
			expenses:    []models.Expense{expense("e1", "300", "A", "A", "B", "C")},
			settlements: []models.Settlement{settlement("s1", "B", "A", "100")},
			members:     abc,
			want:        map[string]string{"A": "100", "B": "0", "C": "-100"},
		},
		{
			name:      "empty shared_by is skipped",
			expenses:  []models.Expense{expense("e1", "100", "A")},
			members:   abc,
			want:      map[string]string{"A": "0", "B": "0", "C": "0"},
			wantSkips: 1,
		},
		{
			name:      "non-positive amount is skipped",
			expenses:  []models.Expense{expense("e1", "0", "A", "B"), expense("e2", "-10", "A", "B")},
			members:   abc,
			want:      map[string]string{"A": "0", "B": "0"},
			wantSkips: 2,
		},
		{
			name:     "self pay is neutral",
			expenses: []models.Expense{expense("e1", "42.50", "A", "A")},
			members:  abc,
			want:     map[string]string{"A": "0", "B": "0", "C": "0"},
		},
		{
			name:      "unknown payer and sharer are lookup misses",
			expenses:  []models.Expense{expense("e1", "90", "Z", "A", "B", "Y")},
			members:   abc,
			want:      map[string]string{"A": "-30", "B": "-30", "C": "0"},
			wantSkips: 2,
		},
		{
			name:        "unknown settlement parties are skipped",
			settlements: []models.Settlement{settlement("s1", "A", "Z", "10"), settlement("s2", "Y", "B", "5")},
			members:     abc,
			want:        map[string]string{"A": "10", "B": "-5"},
			wantSkips:   2,
		},
		{
			name:        "self settlement is skipped",
			expenses:    []models.Expense{expense("e1", "300", "A", "A", "B", "C")},
			settlements: []models.Settlement{settlement("s1", "B", "B", "100")},
			members:     abc,
			want:        map[string]string{"A": "200", "B": "-100", "C": "-100"},
			wantSkips:   1,
		},
		{
			name:     "duplicate sharers count once",
			expenses: []models.Expense{expense("e1", "100", "A", "B", "B", "A")},
			members:  abc,
			want:     map[string]string{"A": "50", "B": "-50", "C": "0"},
		},
		{
			name:      "duplicate roster entries keep the first",
			expenses:  []models.Expense{expense("e1", "100", "A", "A", "B")},
			members:   append([]models.Member{}, abc[0], abc[1], models.Member{UserID: "A", Name: "Alias"}),
			want:      map[string]string{"A": "50", "B": "-50"},
			wantSkips: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeBalances(tt.expenses, tt.settlements, tt.members)
			wantBalances(t, res.Balances, tt.want)
			if len(res.Skipped) != tt.wantSkips {
				t.Errorf("skipped = %d (%v), want %d", len(res.Skipped), res.Skipped, tt.wantSkips)
			}
		})
	}
}

func TestComputeBalances_PaidAndOwes(t *testing.T) {
	res := ComputeBalances([]models.Expense{
		expense("e1", "300", "A", "A", "B", "C"),
		expense("e2", "60", "B", "B", "C"),
	}, nil, abc)

	alice, _ := res.Balances.Lookup("A")
	if !alice.Paid.Equal(d("300")) || !alice.Owes.Equal(d("100")) {
		t.Errorf("Alice paid/owes = %s/%s, want 300/100", alice.Paid, alice.Owes)
	}
	if alice.Name != "Alice" {
		t.Errorf("Alice name = %q", alice.Name)
	}

	bob, _ := res.Balances.Lookup("B")
	if !bob.Paid.Equal(d("60")) || !bob.Owes.Equal(d("130")) {
		t.Errorf("Bob paid/owes = %s/%s, want 60/130", bob.Paid, bob.Owes)
	}
}

func TestComputeBalances_RosterOrderAndIdleMembers(t *testing.T) {
	members := []models.Member{{UserID: "C"}, {UserID: "A"}, {UserID: "D"}, {UserID: "B"}}
	res := ComputeBalances([]models.Expense{expense("e1", "10", "A", "B")}, nil, members)

	if len(res.Balances) != len(members) {
		t.Fatalf("expected %d entries, got %d", len(members), len(res.Balances))
	}
	for i, m := range members {
		if res.Balances[i].UserID != m.UserID {
			t.Errorf("entry %d = %s, want %s", i, res.Balances[i].UserID, m.UserID)
		}
	}
	idle, _ := res.Balances.Lookup("D")
	if !idle.Balance.IsZero() || !idle.Paid.IsZero() || !idle.Owes.IsZero() {
		t.Errorf("idle member should be zero, got %+v", idle)
	}
}

func TestComputeBalances_NoRounding(t *testing.T) {
	// 100 / 3 repeated: rounding each share to cents would drift by a cent.
	var expenses []models.Expense
	for i := 0; i < 30; i++ {
		expenses = append(expenses, expense("e", "100", "A", "A", "B", "C"))
	}
	res := ComputeBalances(expenses, nil, abc)
	wantBalances(t, res.Balances, map[string]string{"A": "2000", "B": "-1000", "C": "-1000"})
	if !approx(res.Balances.Net(), decimal.Zero) {
		t.Errorf("net = %s, want 0", res.Balances.Net())
	}
}

// randomSnapshot builds records whose shares are whole numbers so that every
// property can be checked without rounding noise.
func randomSnapshot(r *rand.Rand, members []models.Member) ([]models.Expense, []models.Settlement) {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}

	var expenses []models.Expense
	for i := 0; i < 20+r.Intn(20); i++ {
		perm := r.Perm(len(ids))
		n := 1 + r.Intn(len(ids))
		shared := make([]string, n)
		for j := 0; j < n; j++ {
			shared[j] = ids[perm[j]]
		}
		amount := decimal.NewFromInt(int64(60 * (1 + r.Intn(50))))
		expenses = append(expenses, models.Expense{
			ID:       "e",
			Amount:   amount,
			PaidBy:   ids[r.Intn(len(ids))],
			SharedBy: shared,
		})
	}

	var settlements []models.Settlement
	for i := 0; i < r.Intn(8); i++ {
		from := ids[r.Intn(len(ids))]
		to := ids[r.Intn(len(ids))]
		if from == to {
			continue
		}
		settlements = append(settlements, models.Settlement{
			ID:         "s",
			FromUserID: from,
			ToUserID:   to,
			Amount:     decimal.NewFromInt(int64(1 + r.Intn(200))),
		})
	}
	return expenses, settlements
}

var fiveMembers = []models.Member{
	{UserID: "A"}, {UserID: "B"}, {UserID: "C"}, {UserID: "D"}, {UserID: "E"},
}

func TestComputeBalances_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		expenses, settlements := randomSnapshot(r, fiveMembers)
		first := ComputeBalances(expenses, settlements, fiveMembers)

		t.Run("conservation", func(t *testing.T) {
			if !approx(first.Balances.Net(), decimal.Zero) {
				t.Fatalf("round %d: net = %s, want 0", round, first.Balances.Net())
			}
		})

		t.Run("idempotence", func(t *testing.T) {
			again := ComputeBalances(expenses, settlements, fiveMembers)
			for i := range first.Balances {
				if !first.Balances[i].Balance.Equal(again.Balances[i].Balance) {
					t.Fatalf("round %d: %s differs between runs", round, first.Balances[i].UserID)
				}
			}
		})

		t.Run("order independence", func(t *testing.T) {
			shuffledE := append([]models.Expense(nil), expenses...)
			shuffledS := append([]models.Settlement(nil), settlements...)
			r.Shuffle(len(shuffledE), func(i, j int) { shuffledE[i], shuffledE[j] = shuffledE[j], shuffledE[i] })
			r.Shuffle(len(shuffledS), func(i, j int) { shuffledS[i], shuffledS[j] = shuffledS[j], shuffledS[i] })

			shuffled := ComputeBalances(shuffledE, shuffledS, fiveMembers)
			for i := range first.Balances {
				if !first.Balances[i].Balance.Equal(shuffled.Balances[i].Balance) {
					t.Fatalf("round %d: %s = %s after shuffle, want %s", round,
						first.Balances[i].UserID, shuffled.Balances[i].Balance, first.Balances[i].Balance)
				}
			}
		})
	}
}
