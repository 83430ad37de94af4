package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampedDate(t *testing.T) {
	assert.Equal(t, "2025-02-28", FormatDate(ClampedDate(2025, time.February, 31)))
	assert.Equal(t, "2024-02-29", FormatDate(ClampedDate(2024, time.February, 31)))
	assert.Equal(t, "2025-06-05", FormatDate(ClampedDate(2025, time.June, 5)))
	assert.Equal(t, "2025-04-30", FormatDate(ClampedDate(2025, time.April, 31)))
}

func TestTodayUsesJakartaCalendar(t *testing.T) {
	// 2025-03-31 20:00 UTC = 2025-04-01 03:00 WIB
	now := time.Date(2025, 3, 31, 20, 0, 0, 0, time.UTC)
	today := Today(now)
	if Location() != time.UTC {
		assert.Equal(t, "2025-04-01", FormatDate(today))
	}
	assert.Equal(t, time.UTC, today.Location())
	assert.Zero(t, today.Hour())
}

func TestAddMonths(t *testing.T) {
	y, m := AddMonths(2025, time.March, -11)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.April, m)

	y, m = AddMonths(2024, time.December, 1)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)
}

func TestParseAndLabels(t *testing.T) {
	d, err := ParseDate(" 2025-01-01 ")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())

	_, err = ParseDate("01/01/2025")
	assert.Error(t, err)

	empty := ""
	p, err := ParseDatePtr(&empty)
	require.NoError(t, err)
	assert.Nil(t, p)

	assert.Equal(t, "Juni 2025", PeriodLabel(6, 2025))
	assert.Equal(t, 31, DaysBetween(ClampedDate(2025, 1, 1), ClampedDate(2025, 2, 1)))
}
