package rpc

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/models"
)

func TestCodec_DecimalAmountsAreStrings(t *testing.T) {
	data, err := Codec{}.Marshal(&AddExpenseRequest{
		GroupID:     "g1",
		Description: "Dinner",
		Amount:      decimal.RequireFromString("100.10"),
		PaidBy:      "A",
		SharedBy:    []string{"A", "B"},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"amount":"100.1"`) {
		t.Errorf("expected amount as JSON string, got %s", data)
	}
}

func TestCodec_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "string amount", body: `{"amount":"12.34"}`, want: "12.34"},
		{name: "number amount", body: `{"amount":12.34}`, want: "12.34"},
		{name: "empty body", body: ``, want: "0"},
		{name: "malformed", body: `{"amount":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg RecordSettlementRequest
			err := Codec{}.Unmarshal([]byte(tt.body), &msg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !msg.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("amount = %s, want %s", msg.Amount, tt.want)
			}
		})
	}
}

func TestGroupBalances_FlattensReport(t *testing.T) {
	data, err := Codec{}.Marshal(&GroupBalances{GroupID: "g1"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, key := range []string{`"group_id":"g1"`, `"digest"`, `"balances"`, `"suggestions"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}

func TestGroupBalances_AllSettledEncodesEmptyLists(t *testing.T) {
	report := ledger.Evaluate(ledger.Snapshot{
		Members: []models.Member{{UserID: "A", Name: "Alice"}, {UserID: "B", Name: "Bob"}},
	})
	data, err := Codec{}.Marshal(&GroupBalances{GroupID: "g1", Report: report})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, key := range []string{`"suggestions":[]`, `"creditors":[]`, `"debtors":[]`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("expected no null lists in %s", data)
	}
}

func TestCodec_KeepsEmptyNote(t *testing.T) {
	var msg RecordSettlementRequest
	if err := (Codec{}).Unmarshal([]byte(`{"amount":"5","note":""}`), &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if msg.Note == nil || *msg.Note != "" {
		t.Fatalf("note = %v, want empty string", msg.Note)
	}

	data, err := Codec{}.Marshal(&msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"note":""`) {
		t.Errorf("expected empty note to survive, got %s", data)
	}
}

func TestCodec_Name(t *testing.T) {
	if (Codec{}).Name() != "json" {
		t.Errorf("Name() = %q, want json", Codec{}.Name())
	}
}
