package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		err error
	}{
		{"2024-03-01", nil},
		{" 2024-12-31 ", nil},
		{"", ErrEmptyDate},
		{"2024-02-30", ErrInvalidDate},
		{"01/03/2024", ErrInvalidDate},
	}
	for _, tc := range cases {
		_, err := ParseDate(tc.in)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.err, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:    "Coffee",
		Amount:   Money{Value: decimal.RequireFromString("3.50")},
		Date:     NewDate(2024, time.March, 1),
		Category: "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	bads := []struct {
		e   Expense
		err error
	}{
		{Expense{Title: "  ", Date: NewDate(2024, 1, 1)}, ErrEmptyTitle},
		{Expense{Title: "a"}, ErrEmptyDate},
		{Expense{Title: "a", Date: NewDate(2024, 1, 1), Amount: Money{Value: decimal.NewFromInt(-1)}}, ErrNegativeAmount},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestNormalize(t *testing.T) {
	e := Expense{Title: "  Bus ", Notes: " ticket ", Category: " "}.Normalize()
	if e.Title != "Bus" || e.Notes != "ticket" || e.Category != DefaultCategory {
		t.Fatalf("unexpected normalization: %+v", e)
	}
}

func TestExpenseJSONShape(t *testing.T) {
	e := Expense{
		ID:       "abc",
		Title:    "Coffee",
		Amount:   Money{Value: decimal.RequireFromString("3.5")},
		Date:     NewDate(2024, time.March, 1),
		Category: "Food",
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"abc","title":"Coffee","amount":3.5,"date":"2024-03-01","category":"Food","notes":""}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestExpenseJSONLenientFields(t *testing.T) {
	raw := `[
		{"id":"1","title":"a","amount":"oops","date":"2024-03-01","category":"Food"},
		{"id":"2","title":"b","amount":null,"date":"2024-03-02T10:00:00.000Z","category":"Food"},
		{"id":"3","title":"c","date":"not a date","category":"Food"},
		{"id":"4","title":"d","amount":"12.25","date":"2024-03-04","category":"Food"}
	]`
	var list []Expense
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 records, got %d", len(list))
	}
	if !list[0].Amount.Value.IsZero() || !list[1].Amount.Value.IsZero() {
		t.Fatalf("invalid amounts should decode to zero: %v %v", list[0].Amount, list[1].Amount)
	}
	if list[1].Date.String() != "2024-03-02" {
		t.Fatalf("timestamp date not truncated: %q", list[1].Date.String())
	}
	if !list[2].Date.IsZero() {
		t.Fatalf("bad date should decode to zero, got %v", list[2].Date)
	}
	if list[3].Amount.String() != "12.25" {
		t.Fatalf("quoted number should decode, got %s", list[3].Amount)
	}
}

func TestExpenseJSONLenientStrings(t *testing.T) {
	raw := `[
		{"id":42,"title":1234,"amount":2,"date":"2024-03-02","category":true,"notes":{"x":1}},
		{"id":"b","title":null,"category":["Food"],"notes":7.5}
	]`
	var list []Expense
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].ID != "42" || list[0].Title != "1234" || list[0].Category != "true" || list[0].Notes != "" {
		t.Fatalf("unexpected first record: %+v", list[0])
	}
	if list[0].Amount.String() != "2" || list[0].Date.String() != "2024-03-02" {
		t.Fatalf("typed fields lost: %+v", list[0])
	}
	if list[1].ID != "b" || list[1].Title != "" || list[1].Category != "" || list[1].Notes != "7.5" {
		t.Fatalf("unexpected second record: %+v", list[1])
	}
}

func TestExpenseJSONRejectsNonObject(t *testing.T) {
	var e Expense
	if err := json.Unmarshal([]byte(`"coffee"`), &e); err == nil {
		t.Fatal("expected an error for a non-object record")
	}
}

func TestMoneyJSONOutOfRangeDecodesToZero(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`1e300000000`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !m.Value.IsZero() {
		t.Fatalf("out of range amount should decode to zero, got %s", m.Value.String())
	}
}
