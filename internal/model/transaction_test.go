package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAmountUnmarshalLenient(t *testing.T) {
	tests := []struct {
		in    string
		value float64
		valid bool
	}{
		{`3`, 3, true},
		{`2.5`, 2.5, true},
		{`"4"`, 4, true},
		{`null`, 0, false},
		{`"abc"`, 0, false},
		{`{"x":1}`, 0, false},
		{`true`, 0, false},
	}

	for _, tt := range tests {
		var doc struct {
			Q Amount `json:"q"`
		}
		if err := json.Unmarshal([]byte(`{"q":`+tt.in+`}`), &doc); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if doc.Q.Valid != tt.valid || doc.Q.Value != tt.value {
			t.Errorf("Unmarshal(%s) = %+v, want value=%v valid=%v", tt.in, doc.Q, tt.value, tt.valid)
		}
	}
}

func TestAmountContribution(t *testing.T) {
	if got := NewAmount(-2).Contribution(); got != 0 {
		t.Errorf("negative amount contributed %v", got)
	}
	if got := (Amount{}).Contribution(); got != 0 {
		t.Errorf("missing amount contributed %v", got)
	}
	if got := NewAmount(1.5).Contribution(); got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-05T10:15:00Z", time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC), true},
		{"2024-03-05T10:15:00.123456", time.Date(2024, 3, 5, 10, 15, 0, 123456000, time.UTC), true},
		{"2024-03-05T10:15", time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC), true},
		{"2024-03-05 10:15:00", time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC), true},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"2024-13-01", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.in)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSupplyTransactionRecord(t *testing.T) {
	var tx SupplyTransaction
	body := `{"supplyTransactionId":7,"supplyTransactionType":"CHECK_OUT","quantity":"3",
		"createdAt":"2024-03-05T10:00:00","supply":{"supplyId":12,"name":"Gloves"}}`
	if err := json.Unmarshal([]byte(body), &tx); err != nil {
		t.Fatal(err)
	}

	rec := tx.Record()
	if rec.ID != "7" || rec.Kind != KindCheckOut || rec.SubjectID != "12" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Timestamp != "2024-03-05T10:00:00" {
		t.Errorf("expected createdAt fallback, got %q", rec.Timestamp)
	}
	if rec.Quantity.Contribution() != 3 {
		t.Errorf("expected quantity 3, got %+v", rec.Quantity)
	}
	if tx.Name() != "Gloves" {
		t.Errorf("expected nested supply name, got %q", tx.Name())
	}
}

func TestEquipmentTransactionRecord(t *testing.T) {
	var tx EquipmentTransaction
	body := `{"equipmentTransactionId":3,"transactionType":"CHECK_IN","hoursUsed":4.5,
		"transactionDate":"2024-02-29T08:00:00Z","equipmentId":9,"equipmentName":"Drill"}`
	if err := json.Unmarshal([]byte(body), &tx); err != nil {
		t.Fatal(err)
	}

	rec := tx.Record()
	if rec.Kind != KindCheckIn || rec.SubjectID != "9" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Quantity.Contribution() != 4.5 {
		t.Errorf("expected hoursUsed fallback 4.5, got %+v", rec.Quantity)
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind(" check_in "); !ok || k != KindCheckIn {
		t.Errorf("ParseKind(check_in) = %q, %v", k, ok)
	}
	if _, ok := ParseKind("ALL"); ok {
		t.Error("ALL is not a kind")
	}
	if KindCheckOut.Label() != "CHECK OUT" {
		t.Errorf("unexpected label %q", KindCheckOut.Label())
	}
}
