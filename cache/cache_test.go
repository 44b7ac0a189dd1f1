package cache

import (
	"math"
	"testing"
)

func TestMakeKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []any
		want  string
	}{
		{"single", []any{"people"}, "people"},
		{"strings", []any{"all", "people"}, "all:people"},
		{"mixed", []any{"people", 1, "films"}, "people:1:films"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeKey(tt.parts...); got != tt.want {
				t.Errorf("MakeKey(%v) = %q, want %q", tt.parts, got, tt.want)
			}
		})
	}
}

func TestNamespacedKeys(t *testing.T) {
	url := "https://swapi.dev/api/people/?page=2"
	if got, want := UpstreamKey(url), "upstream:"+url; got != want {
		t.Errorf("UpstreamKey() = %q, want %q", got, want)
	}
	if got, want := AggregateKey("people"), "all:people"; got != want {
		t.Errorf("AggregateKey() = %q, want %q", got, want)
	}
}

func TestHitRate(t *testing.T) {
	tests := []struct {
		hits, misses int64
		want         float64
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 4, 0},
		{1, 3, 25},
		{2, 1, 200.0 / 3},
	}

	for _, tt := range tests {
		if got := HitRate(tt.hits, tt.misses); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("HitRate(%d, %d) = %v, want %v", tt.hits, tt.misses, got, tt.want)
		}
	}
}

func TestPolicy_EffectiveTTL(t *testing.T) {
	p := DefaultPolicy()

	if got := p.EffectiveTTL(TTLShort); got != TTLShort {
		t.Errorf("EffectiveTTL(short) = %v, want %v", got, TTLShort)
	}
	if got := p.EffectiveTTL(2 * TTLLong); got != TTLLong {
		t.Errorf("EffectiveTTL(2*long) = %v, want %v", got, TTLLong)
	}
	if got := p.EffectiveTTL(-1); got != -1 {
		t.Errorf("EffectiveTTL(-1) = %v, want -1", got)
	}
}
