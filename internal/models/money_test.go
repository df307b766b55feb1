package models

import (
	"encoding/json"
	"testing"
)

func TestParsePrice(t *testing.T) {
	valid := map[string]string{
		"25":     "25.00",
		"25.5":   "25.50",
		"120.75": "120.75",
		" 15 ":   "15.00",
	}
	for raw, want := range valid {
		got, err := ParsePrice(raw)
		if err != nil {
			t.Fatalf("parse %q failed: %v", raw, err)
		}
		if got.String() != want {
			t.Fatalf("parse %q: want %s got %s", raw, want, got.String())
		}
	}

	for _, raw := range []string{"", "-1", "1.234", "abc", "1e3", ".5"} {
		if _, err := ParsePrice(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	price, _ := ParsePrice("25")
	if got := price.MulInt(2).String(); got != "50.00" {
		t.Fatalf("unexpected product %s", got)
	}
	if !price.Add(price).Equal(NewMoneyFromInt(50)) {
		t.Fatalf("expected 25+25 to equal 50")
	}
}

func TestMoneyJSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`12.5`), &m); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if m.String() != "12.50" {
		t.Fatalf("unexpected value %s", m.String())
	}
	if err := json.Unmarshal([]byte(`"7.25"`), &m); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"7.25"` {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestDraftLinesTotal(t *testing.T) {
	lines := DraftLines{
		{ItemID: "1", Name: "Masala Chai", UnitPrice: NewMoneyFromInt(25), Quantity: 2},
		{ItemID: "3", Name: "Veg Samosa", UnitPrice: NewMoneyFromInt(15), Quantity: 1},
	}
	if got := lines.Total().String(); got != "65.00" {
		t.Fatalf("unexpected total %s", got)
	}
}

func TestDefaultStoreSettings(t *testing.T) {
	s := DefaultStoreSettings()
	if !s.CodEnabled || s.UpiEnabled || !s.StoreOpen {
		t.Fatalf("unexpected default toggles: %+v", s)
	}
	if len(s.Timings) != 7 {
		t.Fatalf("expected 7 weekday timings, got %d", len(s.Timings))
	}
	if s.Timings["monday"].Open != "09:00" || s.Timings["sunday"].Close != "22:00" {
		t.Fatalf("unexpected default timings: %+v", s.Timings)
	}
	if !s.PaymentMethodEnabled("COD") || s.PaymentMethodEnabled("UPI") || s.PaymentMethodEnabled("CARD") {
		t.Fatalf("unexpected payment method availability")
	}
}
