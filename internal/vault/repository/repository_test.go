package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampFormatSortsChronologically(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	earlier := base.Add(500 * time.Millisecond)
	later := base.Add(520 * time.Millisecond)

	// The stored TEXT form must sort like the timestamps it encodes, since
	// listings order by the raw column value.
	earlierStr := formatTimestamp(earlier)
	laterStr := formatTimestamp(later)
	assert.Less(t, earlierStr, laterStr)

	parsed, err := parseTimestamp(laterStr)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(later))

	// Variable-width fractions from rows written before the fixed-width
	// layout still parse.
	parsed, err = parseTimestamp("2026-08-30T10:00:00.5Z")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(earlier))
}
