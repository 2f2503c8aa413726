package synonym

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestResolveUsesFallbackBeforeFirstRefresh(t *testing.T) {
	r := New(nil, zerolog.Nop())

	if got := r.Resolve("Tee"); got != "t-shirt" {
		t.Errorf("Resolve(Tee) = %q, want t-shirt", got)
	}
	if got := r.Resolve("unknownterm"); got != "unknownterm" {
		t.Errorf("Resolve(unknownterm) = %q, want passthrough", got)
	}
}

func TestResolveTokensPrefersTwoTokenPhrase(t *testing.T) {
	r := New(nil, zerolog.Nop())

	got := r.ResolveTokens([]string{"polo", "shirt", "large"})
	want := []string{"polo", "large"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveTokens = %v, want %v", got, want)
	}
}

func TestResolveTokensFallsBackToSingleToken(t *testing.T) {
	r := New(nil, zerolog.Nop())

	got := r.ResolveTokens([]string{"hoody", "black"})
	want := []string{"hoodie", "black"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveTokens = %v, want %v", got, want)
	}
}
