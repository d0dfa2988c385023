package cnpj

import (
	"strings"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"digits only", "11222333000181", true},
		{"formatted", "11.222.333/0001-81", true},
		{"another valid", "11444777000161", true},
		{"leading zero", "04252011000110", true},
		{"empty", "", false},
		{"too short", "1122233300018", false},
		{"too long", "112223330001811", false},
		{"letters only", "abcdefghijklmn", false},
		{"wrong first check digit", "11222333000191", false},
		{"wrong second check digit", "11222333000182", false},
		{"swapped check digits", "11222333000118", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.in); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValid_RepeatedDigits(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		in := strings.Repeat(string(d), Length)
		if IsValid(in) {
			t.Errorf("IsValid(%q) = true, want false", in)
		}
	}
}

func TestIsValid_FlippedCheckDigit(t *testing.T) {
	valid := []string{"11222333000181", "11444777000161", "04252011000110"}
	for _, v := range valid {
		for _, pos := range []int{12, 13} {
			for d := byte('0'); d <= '9'; d++ {
				if d == v[pos] {
					continue
				}
				b := []byte(v)
				b[pos] = d
				if IsValid(string(b)) {
					t.Errorf("IsValid(%q) = true after changing position %d", string(b), pos)
				}
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"11.222.333/0001-81", "11222333000181"},
		{" 11 222 333 0001 81 ", "11222333000181"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format("11222333000181"); got != "11.222.333/0001-81" {
		t.Errorf("Format = %q", got)
	}
	if got := Format("123"); got != "123" {
		t.Errorf("Format of short input = %q, want unchanged", got)
	}
}
