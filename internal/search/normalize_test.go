package search

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain lowercase", "cafe", "cafe"},
		{"accented with punctuation", "Café!", "cafe"},
		{"uppercase accented", "CAFÉ", "cafe"},
		{"spaces stripped", "la palanca de emergencia", "lapalancadeemergencia"},
		{"mixed punctuation", "¡¿Hola, mundo?!", "holamundo"},
		{"digits kept", "top 10", "top10"},
		{"pure punctuation", "!!! ... ---", ""},
		{"only whitespace", " \t\n", ""},
		{"empty", "", ""},
		{"tilde n", "mañana", "manana"}, // NFD splits ñ into n + combining tilde
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_EquivalenceClasses(t *testing.T) {
	// Strings a user would consider "the same" must fold identically.
	for _, group := range [][]string{
		{"Café!", "cafe", "CAFÉ", " c a f e "},
		{"adiós", "Adios", "ADIÓS."},
	} {
		want := Normalize(group[0])
		for _, s := range group[1:] {
			if got := Normalize(s); got != want {
				t.Fatalf("Normalize(%q) = %q; want %q (same class as %q)", s, got, want, group[0])
			}
		}
	}
}
