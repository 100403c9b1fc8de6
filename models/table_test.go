package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendActivityNewestFirst(t *testing.T) {
	table := Table{}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	table.AppendActivity("1", "first", base)
	table.AppendActivity("2", "second", base.Add(time.Minute))

	require.Len(t, table.ActivityLogs, 2)
	assert.Equal(t, "second", table.ActivityLogs[0].Message)
	assert.Equal(t, "first", table.ActivityLogs[1].Message)
}

func TestAppendActivityTrimsToLimit(t *testing.T) {
	table := Table{}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < MaxActivityLogs+5; i++ {
		table.AppendActivity(fmt.Sprintf("%d", i), fmt.Sprintf("entry %d", i), base.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, table.ActivityLogs, MaxActivityLogs)
	// The newest entry survives, the oldest five fell off.
	assert.Equal(t, fmt.Sprintf("entry %d", MaxActivityLogs+4), table.ActivityLogs[0].Message)
}

func TestIDListRoundTrip(t *testing.T) {
	list := IDList{3, 7, 11}
	value, err := list.Value()
	require.NoError(t, err)

	var decoded IDList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)
	assert.True(t, decoded.Contains(7))
	assert.False(t, decoded.Contains(8))

	var empty IDList
	value, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestPermissionListWildcard(t *testing.T) {
	admin := PermissionList{"all"}
	assert.True(t, admin.Has("manage_prices"))

	staff := PermissionList{"manage_tables", "manage_queue"}
	assert.True(t, staff.Has("manage_queue"))
	assert.False(t, staff.Has("manage_prices"))
}
