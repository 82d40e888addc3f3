package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLog_CountsEntries(t *testing.T) {
	log := NewQueryLog(100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, log.Log(ctx, fmt.Sprintf("query %d", i), i))
	}

	total, err := log.TotalQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestQueryLog_DropsOldestBeyondCap(t *testing.T) {
	log := NewQueryLog(5)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, log.Log(ctx, fmt.Sprintf("query %d", i), 0))
	}

	total, err := log.TotalQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	// The retained window is the most recent entries.
	assert.Equal(t, "query 7", log.entries[0])
	assert.Equal(t, "query 11", log.entries[4])
}

func TestQueryLog_ZeroCapFallsBackToDefault(t *testing.T) {
	log := NewQueryLog(0)
	assert.Equal(t, 10000, log.maxEntries)
}
