package settlementfeed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/coopbank/cashdesk_app/internal/adapters/settlementfeed"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEntries_ParsesWellFormedFeed(t *testing.T) {
	feed := strings.NewReader(
		"REFERENCE_NUMBER|AMOUNT|DATE|STATUS\n" +
			"100000000000000000000000000001|5000.00|2026-08-15|SETTLED\n" +
			"100000000000000000000000000002|120.50|2026-08-15|SETTLED\n")

	entries, skipped, err := settlementfeed.NewReader().ReadEntries(context.Background(), feed)

	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, "100000000000000000000000000001", entries[0].ReferenceNumber)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("5000.00")))
	assert.Equal(t, "2026-08-15", entries[0].Date)
	assert.Equal(t, "SETTLED", entries[0].Status)
}

func TestReadEntries_StatusColumnIsOptional(t *testing.T) {
	feed := strings.NewReader("100000000000000000000000000001|5000.00|2026-08-15\n")

	entries, skipped, err := settlementfeed.NewReader().ReadEntries(context.Background(), feed)

	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Status)
}

func TestReadEntries_SkipsProblemLines(t *testing.T) {
	feed := strings.NewReader(
		"REFERENCE_NUMBER|AMOUNT|DATE\n" +
			"\n" +
			"100000000000000000000000000001|5000.00|2026-08-15\n" +
			"too|short\n" +
			"100000000000000000000000000002|not-a-number|2026-08-15\n" +
			"   \n" +
			"100000000000000000000000000003|75.25|2026-08-16\n")

	entries, skipped, err := settlementfeed.NewReader().ReadEntries(context.Background(), feed)

	require.NoError(t, err)
	// The short line and the bad amount are skipped; header and blank
	// lines are not counted.
	assert.Equal(t, 2, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, "100000000000000000000000000001", entries[0].ReferenceNumber)
	assert.Equal(t, "100000000000000000000000000003", entries[1].ReferenceNumber)
}

func TestReadEntries_HeaderOnlyOnFirstLine(t *testing.T) {
	// A header-looking line later in the file is data and fails amount
	// parsing, so it counts as skipped rather than silently vanishing.
	feed := strings.NewReader(
		"100000000000000000000000000001|5000.00|2026-08-15\n" +
			"REFERENCE_NUMBER|AMOUNT|DATE\n")

	entries, skipped, err := settlementfeed.NewReader().ReadEntries(context.Background(), feed)

	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 1)
}

func TestReadEntries_TrimsWhitespaceInFields(t *testing.T) {
	feed := strings.NewReader("  100000000000000000000000000001 | 5000.00 | 2026-08-15 | SETTLED \n")

	entries, _, err := settlementfeed.NewReader().ReadEntries(context.Background(), feed)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "100000000000000000000000000001", entries[0].ReferenceNumber)
	assert.Equal(t, "SETTLED", entries[0].Status)
}

func TestReadEntries_EmptyFeed(t *testing.T) {
	entries, skipped, err := settlementfeed.NewReader().ReadEntries(context.Background(), strings.NewReader(""))

	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Empty(t, entries)
}

func TestReadEntries_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := settlementfeed.NewReader().ReadEntries(ctx, strings.NewReader("100000000000000000000000000001|5000.00|2026-08-15\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
