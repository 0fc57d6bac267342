package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvanwell/taskbank/internal/model"
)

var today = time.Date(2026, time.March, 2, 14, 30, 0, 0, time.Local)

func entry(minutes int, isAdd bool, ts int64) model.OvertimeEntry {
	return model.OvertimeEntry{
		Username:  "marie",
		Date:      "2026-03-02",
		Minutes:   minutes,
		Comment:   "late patient",
		IsAdd:     isAdd,
		Timestamp: time.Unix(ts, 0),
	}
}

func TestValidateEntryAccepts(t *testing.T) {
	require.NoError(t, ValidateEntry("2026-03-02", 90, "stayed late", today))
	require.NoError(t, ValidateEntry("2026-02-27", 15, "short friday", today))
}

func TestValidateEntryRejectsNonPositiveMinutes(t *testing.T) {
	err := ValidateEntry("2026-03-02", 0, "nothing", today)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = ValidateEntry("2026-03-02", -30, "negative", today)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minutes")
}

func TestValidateEntryRejectsFutureDate(t *testing.T) {
	err := ValidateEntry("2026-03-03", 60, "tomorrow", today)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "future")
}

func TestValidateEntryAllowsToday(t *testing.T) {
	// Today at any time of day is fine; only strictly-later days are rejected.
	require.NoError(t, ValidateEntry("2026-03-02", 60, "today", today))
}

func TestValidateEntryRejectsEmptyComment(t *testing.T) {
	err := ValidateEntry("2026-03-02", 60, "   ", today)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comment")
}

func TestValidateEntryRejectsMalformedDate(t *testing.T) {
	err := ValidateEntry("02-03-2026", 60, "wrong layout", today)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidateEntryReportsAllViolationsTogether(t *testing.T) {
	err := ValidateEntry("2026-03-03", 0, "", today)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 3)
}

func TestBalanceSignsEntries(t *testing.T) {
	entries := []model.OvertimeEntry{
		entry(600, true, 10),
		entry(100, false, 20),
	}
	assert.Equal(t, 500, Balance(entries))
}

func TestTotalsMixedRadix(t *testing.T) {
	entries := []model.OvertimeEntry{
		entry(600, true, 10),
		entry(100, false, 20),
	}

	// 500 minutes = 1 workday (480) + 0 hours + 20 minutes.
	totals := Totals(entries)
	assert.Equal(t, model.OvertimeTotals{Days: 1, Hours: 0, Minutes: 20}, totals)
}

func TestTotalsEmptyLedgerIsZero(t *testing.T) {
	assert.Equal(t, model.OvertimeTotals{}, Totals(nil))
}

func TestTotalsRoundTrip(t *testing.T) {
	cases := [][]model.OvertimeEntry{
		{entry(480, true, 1)},
		{entry(59, true, 1)},
		{entry(480, true, 1), entry(480, true, 2), entry(75, true, 3)},
		{entry(1, true, 1), entry(1, false, 2)},
	}

	for _, entries := range cases {
		balance := Balance(entries)
		tot := Totals(entries)
		assert.Equal(t, balance, tot.Days*WorkdayMinutes+tot.Hours*60+tot.Minutes)
	}
}

// A negative balance decomposes by magnitude with the sign carried on every
// nonzero field, so the round-trip identity holds for deficits too.
func TestTotalsNegativeBalanceKeepsSign(t *testing.T) {
	entries := []model.OvertimeEntry{
		entry(100, true, 10),
		entry(600, false, 20),
	}

	totals := Totals(entries)
	assert.Equal(t, model.OvertimeTotals{Days: -1, Hours: 0, Minutes: -20}, totals)
	assert.Equal(t, -500, totals.Days*WorkdayMinutes+totals.Hours*60+totals.Minutes)
}

func TestLatestPicksMaxTimestamp(t *testing.T) {
	entries := []model.OvertimeEntry{
		entry(10, true, 10),
		entry(30, true, 30),
		entry(20, true, 20),
	}

	latest, ok := Latest(entries)
	require.True(t, ok)
	assert.Equal(t, time.Unix(30, 0), latest.Timestamp)
}

func TestLatestEmpty(t *testing.T) {
	_, ok := Latest(nil)
	assert.False(t, ok)
}

func TestCheckEditTargetOnlyAllowsHead(t *testing.T) {
	entries := []model.OvertimeEntry{
		entry(10, true, 10),
		entry(20, true, 20),
		entry(30, true, 30),
	}

	require.NoError(t, CheckEditTarget(entries, time.Unix(30, 0)))
	assert.ErrorIs(t, CheckEditTarget(entries, time.Unix(20, 0)), ErrNotLatest)
	assert.ErrorIs(t, CheckEditTarget(entries, time.Unix(10, 0)), ErrNotLatest)
	assert.ErrorIs(t, CheckEditTarget(nil, time.Unix(30, 0)), ErrNoEntries)
}
