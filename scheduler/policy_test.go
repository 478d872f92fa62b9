package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePolicy(t *testing.T) {
	cases := map[string]Policy{
		"fifo":        FIFO,
		"FIFO":        FIFO,
		" priority ":  Priority,
		"Backfill":    Backfill,
		"backfill":    Backfill,
		"":            FIFO,
		"round-robin": FIFO,
	}
	for label, want := range cases {
		assert.Equal(t, want, normalizePolicy(label), "label=%q", label)
	}
}
