package feed

import (
	"reflect"
	"testing"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"42", 42.0},
		{"10.50", 10.5},
		{"-3.2", -3.2},
		{"1,5", 1.5},
		{"1.234,56", 1.234},
		{"$ 99.90", 99.9},
		{"12 pcs", 12.0},
		{float64(7), 7.0},
		{"abc", nil},
		{"", nil},
	}
	for _, tc := range cases {
		if got := Coerce(tc.in, DatatypeNumber); got != tc.want {
			t.Fatalf("Coerce(%v, number): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestCoerceBool(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{true, true},
		{false, false},
		{"1", true},
		{"TRUE", true},
		{"yes", true},
		{"y", true},
		{"0", false},
		{"False", false},
		{"no", false},
		{"n", false},
		{"maybe", nil},
	}
	for _, tc := range cases {
		if got := Coerce(tc.in, DatatypeBool); got != tc.want {
			t.Fatalf("Coerce(%v, bool): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestCoerceDate(t *testing.T) {
	if got := Coerce("2024-03-05", DatatypeDate); got != "2024-03-05T00:00:00Z" {
		t.Fatalf("expected ISO date, got %v", got)
	}
	if got := Coerce("2024-03-05T10:20:30Z", DatatypeDate); got != "2024-03-05T10:20:30Z" {
		t.Fatalf("expected passthrough RFC3339, got %v", got)
	}
	if got := Coerce("not a date", DatatypeDate); got != nil {
		t.Fatalf("expected nil for invalid date, got %v", got)
	}
	if got := Coerce(float64(0), DatatypeDate); got != "1970-01-01T00:00:00Z" {
		t.Fatalf("expected epoch millis handling, got %v", got)
	}
}

func TestCoerceJSON(t *testing.T) {
	obj := map[string]any{"a": 1.0}
	if got := Coerce(obj, DatatypeJSON); !reflect.DeepEqual(got, obj) {
		t.Fatalf("expected object passthrough, got %v", got)
	}
	want := map[string]any{"k": "v"}
	if got := Coerce(`{"k":"v"}`, DatatypeJSON); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected parsed object, got %v", got)
	}
	if got := Coerce("{broken", DatatypeJSON); got != nil {
		t.Fatalf("expected nil for invalid json, got %v", got)
	}
}

func TestCoerceText(t *testing.T) {
	if got := Coerce("hello", DatatypeText); got != "hello" {
		t.Fatalf("expected passthrough, got %v", got)
	}
	if got := Coerce(float64(3), DatatypeText); got != "3" {
		t.Fatalf("expected whole float without decimal point, got %v", got)
	}
	if got := Coerce(map[string]any{"a": 1.0}, DatatypeText); got != `{"a":1}` {
		t.Fatalf("expected json-encoded object, got %v", got)
	}
	if got := Coerce("anything", "unknown-type"); got != "anything" {
		t.Fatalf("unknown datatype should coerce as text, got %v", got)
	}
}

func TestIsAbsent(t *testing.T) {
	absent := []any{nil, "", "  ", "null", "NULL", " undefined "}
	for _, v := range absent {
		if !IsAbsent(v) {
			t.Fatalf("expected %v to be absent", v)
		}
	}
	present := []any{"0", "false", 0.0, false, "n/a"}
	for _, v := range present {
		if IsAbsent(v) {
			t.Fatalf("expected %v to be present", v)
		}
	}
}
