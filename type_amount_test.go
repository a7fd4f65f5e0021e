package lotfolio

import "testing"

func TestAmount_String(t *testing.T) {
	tests := []struct {
		in   Amount
		want string
	}{
		{A(0), "$0.00"},
		{A(1), "$1.00"},
		{A(1234.5), "$1,234.50"},
		{A(-200), "-$200.00"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String(%s) = %q, want %q", tt.in.Plain(), got, tt.want)
		}
	}
}

func TestAmount_SignedString(t *testing.T) {
	tests := []struct {
		in   Amount
		want string
	}{
		{A(0), "-"},
		{A(200), "+$200.00"},
		{A(-50), "-$50.00"},
	}
	for _, tt := range tests {
		if got := tt.in.SignedString(); got != tt.want {
			t.Errorf("SignedString(%s) = %q, want %q", tt.in.Plain(), got, tt.want)
		}
	}
}

func TestAmount_Plain(t *testing.T) {
	// Plain is the persistence form: it must survive a round trip exactly.
	for _, s := range []string{"0", "100", "62.5", "-0.015", "1000000.000001"} {
		a, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("ParseAmount(%s) error = %v", s, err)
		}
		if got := a.Plain(); got != s {
			t.Errorf("Plain(ParseAmount(%s)) = %q", s, got)
		}
	}
}

func TestAmount_MulDiv(t *testing.T) {
	// price × shares, and back.
	total := A(12.5).Mul(Q(4))
	if !total.Equal(A(50)) {
		t.Errorf("12.5 * 4 = %s, want 50", total.Plain())
	}
	if got := total.DivQ(Q(4)); !got.Equal(A(12.5)) {
		t.Errorf("50 / 4 = %s, want 12.5", got.Plain())
	}
	if got := total.DivQ(Q(0)); !got.IsZero() {
		t.Errorf("50 / 0 = %s, want 0", got.Plain())
	}
}

func TestAmount_Units(t *testing.T) {
	// A cash balance counts as units at a cost price of one.
	if got := A(600).Units(); !got.Equal(Q(600)) {
		t.Errorf("Units(600) = %s, want 600", got)
	}
}
