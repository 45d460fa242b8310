package search

import (
	"fmt"
	"testing"

	"github.com/dmcelectrico/SoundsTable/internal/domain"
)

func testCatalog() []domain.Sound {
	return []domain.Sound{
		{ID: "00000001", Filename: "palanca.ogg", Text: "La palanca", Tags: "la palanca de emergencia julio"},
		{ID: "00000002", Filename: "hola.ogg", Text: "Hola", Tags: "hola mundo saludo"},
		{ID: "00000003", Filename: "cafe.ogg", Text: "Café", Tags: "café con leche"},
	}
}

func ids(sounds []domain.Sound) []string {
	out := make([]string, len(sounds))
	for i, s := range sounds {
		out[i] = s.ID
	}
	return out
}

func TestSearch_EmptyQueryListsCatalogOrder(t *testing.T) {
	e := NewEngine(testCatalog(), 10)
	got := e.Search("")
	if len(got) != 3 || got[0].ID != "00000001" || got[2].ID != "00000003" {
		t.Fatalf("unexpected listing: %v", ids(got))
	}
}

func TestSearch_EmptyQueryRespectsCap(t *testing.T) {
	e := NewEngine(testCatalog(), 2)
	if got := e.Search(""); len(got) != 2 {
		t.Fatalf("expected cap of 2, got %v", ids(got))
	}
}

func TestSearch_SubstringMatch(t *testing.T) {
	e := NewEngine(testCatalog(), 10)

	got := e.Search("HOLA")
	if len(got) != 1 || got[0].ID != "00000002" {
		t.Fatalf("case-insensitive match failed: %v", ids(got))
	}

	// Accented query against accented tags.
	got = e.Search("cafe")
	if len(got) != 1 || got[0].ID != "00000003" {
		t.Fatalf("diacritic folding failed: %v", ids(got))
	}

	// Whitespace inside queries is stripped before matching.
	got = e.Search("palanca de emergencia")
	if len(got) != 1 || got[0].ID != "00000001" {
		t.Fatalf("phrase match failed: %v", ids(got))
	}
}

func TestSearch_NoMatch(t *testing.T) {
	e := NewEngine(testCatalog(), 10)
	if got := e.Search("zzz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", ids(got))
	}
}

func TestSearch_PurePunctuationMatchesNothing(t *testing.T) {
	e := NewEngine(testCatalog(), 10)
	// Distinct from the empty-raw listing mode: the raw query is non-empty
	// but its normalization is.
	if got := e.Search("?!..."); len(got) != 0 {
		t.Fatalf("pure punctuation must match nothing, got %v", ids(got))
	}
}

func TestSearch_EmptyCatalog(t *testing.T) {
	e := NewEngine(nil, 10)
	if got := e.Search(""); len(got) != 0 {
		t.Fatalf("expected empty listing, got %v", ids(got))
	}
	if got := e.Search("hola"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", ids(got))
	}
}

func TestSearch_CapTerminatesEarly(t *testing.T) {
	catalog := make([]domain.Sound, 20)
	for i := range catalog {
		catalog[i] = domain.Sound{
			ID:       fmt.Sprintf("%08d", i+1),
			Filename: fmt.Sprintf("s%d.ogg", i+1),
			Tags:     "common tag",
		}
	}
	e := NewEngine(catalog, 5)

	got := e.Search("common")
	if len(got) != 5 {
		t.Fatalf("expected exactly cap results, got %d", len(got))
	}
	// Catalog order, first five.
	for i, s := range got {
		if want := fmt.Sprintf("%08d", i+1); s.ID != want {
			t.Fatalf("result %d = %s; want %s", i, s.ID, want)
		}
	}
}

func TestNewEngine_CapCoercion(t *testing.T) {
	if got := NewEngine(nil, 0).MaxResults(); got != DefaultMaxResults {
		t.Fatalf("cap 0 => %d; want %d", got, DefaultMaxResults)
	}
	if got := NewEngine(nil, TransportResultLimit+1).MaxResults(); got != DefaultMaxResults {
		t.Fatalf("cap above transport limit => %d; want %d", got, DefaultMaxResults)
	}
	if got := NewEngine(nil, 7).MaxResults(); got != 7 {
		t.Fatalf("cap 7 => %d; want 7", got)
	}
}
