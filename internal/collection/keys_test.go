package collection

import (
	"errors"
	"testing"
)

func TestMakeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		set     string
		number  string
		foil    bool
		want    string
		wantErr error
	}{
		{name: "standard printing", set: "SOR", number: "042", want: "SOR_042_std"},
		{name: "foil printing", set: "SOR", number: "042", foil: true, want: "SOR_042_foil"},
		{name: "set is uppercased", set: "sor", number: "042", want: "SOR_042_std"},
		{name: "whitespace is trimmed", set: " SHD ", number: " 017 ", want: "SHD_017_std"},
		{name: "non-numeric number passes through", set: "PROMO", number: "P1", want: "PROMO_P1_std"},
		{name: "empty set", set: "", number: "042", wantErr: ErrMissingField},
		{name: "blank set", set: "   ", number: "042", wantErr: ErrMissingField},
		{name: "empty number", set: "SOR", number: "", wantErr: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MakeKey(tt.set, tt.number, tt.foil)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("MakeKey(%q, %q, %v) error = %v, want %v", tt.set, tt.number, tt.foil, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("MakeKey(%q, %q, %v) error: %v", tt.set, tt.number, tt.foil, err)
			}
			if got != tt.want {
				t.Errorf("MakeKey(%q, %q, %v) = %q, want %q", tt.set, tt.number, tt.foil, got, tt.want)
			}
		})
	}
}

// TestMakeKeyDistinguishesSets locks in that two cards sharing a number but
// living in different sets never collide.
func TestMakeKeyDistinguishesSets(t *testing.T) {
	t.Parallel()

	a, err := MakeKey("SHD", "017", false)
	if err != nil {
		t.Fatalf("MakeKey error: %v", err)
	}
	b, err := MakeKey("JTL", "017", false)
	if err != nil {
		t.Fatalf("MakeKey error: %v", err)
	}
	if a == b {
		t.Errorf("keys for different sets collided: %q", a)
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		key        string
		wantSet    string
		wantNumber string
		wantFoil   bool
		wantErr    bool
	}{
		{name: "standard", key: "SOR_042_std", wantSet: "SOR", wantNumber: "042"},
		{name: "foil", key: "SOR_042_foil", wantSet: "SOR", wantNumber: "042", wantFoil: true},
		{name: "underscore inside the number", key: "PROMO_P_1_std", wantSet: "PROMO", wantNumber: "P_1"},
		{name: "unknown variant", key: "SOR_042_hyperfoil", wantErr: true},
		{name: "too few segments", key: "SOR_042", wantErr: true},
		{name: "empty set segment", key: "_042_std", wantErr: true},
		{name: "empty", key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, number, foil, err := ParseKey(tt.key)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKey(%q) = (%q, %q, %v), want error", tt.key, set, number, foil)
				}
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("error = %v, want ErrInvalidKey", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseKey(%q) error: %v", tt.key, err)
			}
			if set != tt.wantSet || number != tt.wantNumber || foil != tt.wantFoil {
				t.Errorf("ParseKey(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.key, set, number, foil, tt.wantSet, tt.wantNumber, tt.wantFoil)
			}
		})
	}
}

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		set    string
		number string
		foil   bool
	}{
		{"SOR", "042", false},
		{"SOR", "042", true},
		{"G25", "003", false},
		{"PROMO", "P_1", true},
	}

	for _, c := range cases {
		key, err := MakeKey(c.set, c.number, c.foil)
		if err != nil {
			t.Fatalf("MakeKey error: %v", err)
		}
		set, number, foil, err := ParseKey(key)
		if err != nil {
			t.Fatalf("ParseKey(%q) error: %v", key, err)
		}
		if set != c.set || number != c.number || foil != c.foil {
			t.Errorf("round trip of (%q, %q, %v) = (%q, %q, %v)",
				c.set, c.number, c.foil, set, number, foil)
		}
	}
}
