package money_test

import (
	"testing"

	"github.com/sahabat/attendance-engine/money"
)

func TestFormat_ThousandSeparators(t *testing.T) {
	cases := []struct {
		value int64
		want  string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1000, "Rp 1.000"},
		{100000, "Rp 100.000"},
		{800000, "Rp 800.000"},
		{1500000, "Rp 1.500.000"},
		{1234567890, "Rp 1.234.567.890"},
		{-42000, "-Rp 42.000"},
	}
	for _, c := range cases {
		if got := money.NewFromInt(c.value).Format(); got != c.want {
			t.Errorf("Format(%d): got %q, want %q", c.value, got, c.want)
		}
	}
}

func TestArithmetic_WholeRupiah(t *testing.T) {
	rate := money.NewFromInt(100000)

	total := rate.MulInt(8)
	if !total.Equal(money.NewFromInt(800000)) {
		t.Errorf("8 sessions at 100000: got %s", total)
	}

	sum := money.Zero().Add(rate).Add(rate)
	if !sum.Equal(money.NewFromInt(200000)) {
		t.Errorf("sum: got %s", sum)
	}

	if money.NewFromInt(-1).IsNegative() != true {
		t.Error("expected negative")
	}
	if !money.Zero().IsZero() {
		t.Error("expected zero")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	a, err := money.Parse("111000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.String() != "111000" {
		t.Errorf("got %q", a.String())
	}

	if _, err := money.Parse("not-a-number"); err == nil {
		t.Error("expected parse error")
	}
}
