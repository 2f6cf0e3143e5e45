package valkey_test

import (
	"testing"

	"github.com/accuritas/voyagemap/internal/adapters/valkey"
)

func TestOperation(t *testing.T) {
	tests := map[string]string{
		"caption:map-1":   "caption",
		"headers:ASOS":    "headers",
		"map:42":          "map",
		"stations":        "other",
		":leading":        "other",
		"rows:COOP:1:100": "rows",
	}
	for key, want := range tests {
		if got := valkey.Operation(key); got != want {
			t.Errorf("Operation(%q) = %q, want %q", key, got, want)
		}
	}
}
