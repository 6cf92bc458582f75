package model

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Amount
		wantErr bool
	}{
		{name: "whole", input: "50", want: 5000},
		{name: "one decimal", input: "50.5", want: 5050},
		{name: "two decimals", input: "50.05", want: 5005},
		{name: "negative", input: "-12.34", want: -1234},
		{name: "leading plus", input: "+7", want: 700},
		{name: "bare fraction", input: ".25", want: 25},
		{name: "whitespace", input: "  9.99 ", want: 999},
		{name: "zero", input: "0", want: 0},
		{name: "three decimals rejected", input: "1.005", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "just a dot", input: ".", wantErr: true},
		{name: "letters", input: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v; want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %d; want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestAmountString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{5000, "50.00"},
		{5005, "50.05"},
		{5, "0.05"},
		{-1234, "-12.34"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := tt.amount.String(); got != tt.want {
			t.Errorf("Amount(%d).String() = %q; want %q", tt.amount, got, tt.want)
		}
	}
}

func TestAmountRoundTripsThroughString(t *testing.T) {
	for _, a := range []Amount{0, 1, 99, 100, -250, 123456} {
		parsed, err := ParseAmount(a.String())
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", a.String(), err)
		}
		if parsed != a {
			t.Errorf("round trip %d -> %q -> %d", a, a.String(), parsed)
		}
	}
}

func TestAmountJSONIsPlainNumber(t *testing.T) {
	data, err := json.Marshal(Amount(5005))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "50.05" {
		t.Errorf("marshal = %s; want unquoted 50.05", data)
	}
}

func TestAmountUnmarshalAcceptsQuotedNumbers(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`"12.50"`), &a); err != nil {
		t.Fatal(err)
	}
	if a != 1250 {
		t.Errorf("got %d; want 1250", a)
	}

	if err := json.Unmarshal([]byte(`12.50`), &a); err != nil {
		t.Fatal(err)
	}
	if a != 1250 {
		t.Errorf("got %d; want 1250", a)
	}

	if err := json.Unmarshal([]byte(`null`), &a); err != nil {
		t.Fatal(err)
	}
	if a != 0 {
		t.Errorf("null should decode to zero, got %d", a)
	}
}
