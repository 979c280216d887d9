package dashboard

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ts   string
		want string
	}{
		{"2024-01-06T11:55:00Z", "5m ago"},
		{"2024-01-06T12:00:00Z", "0m ago"},
		{"2024-01-06T09:00:00Z", "3h ago"},
		{"2024-01-04T11:00:00Z", "2d ago"},
		{"2024-01-06T13:00:00Z", "0m ago"},
		{"garbage", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRelative(tt.ts, now), tt.ts)
	}
}

func TestRenderer_Ready(t *testing.T) {
	v := NewView()
	seq := v.beginFetch()
	activity := activityResponse(sampleActivity()...)
	activity.Data[1].RequestID = "0123456789abcdef"
	v.finishFetch(seq, activity, statsResponse(5), nil)
	v.SetPageSize(5)

	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.now = func() time.Time { return time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, r.Render(v.Snapshot()))

	out := buf.String()
	assert.Contains(t, out, "Git Activity Dashboard")
	assert.Contains(t, out, "Total Activities")
	assert.Contains(t, out, "+0 today")
	assert.Contains(t, out, "0.0% this week")
	assert.Contains(t, out, "feature/auth -> main")
	assert.Contains(t, out, "01234567...")
	assert.Contains(t, out, "2h ago")
	assert.Contains(t, out, "Authors: alex, jane.smith, john.doe, merge-bot")
	assert.Contains(t, out, "Showing 1 to 5 of 5 entries")
}

func TestRenderer_Skeletons(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(NewView().Snapshot()))

	out := buf.String()
	assert.Contains(t, out, "Last updated: never")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "Showing")
}

func TestRenderer_Error(t *testing.T) {
	v := NewView()
	seq := v.beginFetch()
	v.finishFetch(seq, nil, nil, errors.New("Failed to fetch git activity"))

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(v.Snapshot()))

	assert.Contains(t, buf.String(), "Error Loading Data")
	assert.Contains(t, buf.String(), "Failed to fetch git activity")
}

func TestRenderer_NoMatches(t *testing.T) {
	v := NewView()
	seq := v.beginFetch()
	v.finishFetch(seq, activityResponse(sampleActivity()...), statsResponse(5), nil)
	v.SetSearch("nothing-matches-this")

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(v.Snapshot()))
	assert.Contains(t, buf.String(), "No activity matches the current filters.")
}

func TestRenderer_KeysOfferRetry(t *testing.T) {
	v := NewView()
	seq := v.beginFetch()
	v.finishFetch(seq, nil, nil, errors.New("Failed to fetch git statistics"))

	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Keys = "r refresh  q quit"
	require.NoError(t, r.Render(v.Snapshot()))

	assert.Contains(t, buf.String(), "Press r to retry now")
	assert.Contains(t, buf.String(), "r refresh  q quit")
	assert.NotContains(t, buf.String(), "Retrying on next refresh.")
}

func TestRenderer_RefreshingMarker(t *testing.T) {
	v := NewView()
	seq := v.beginFetch()
	v.finishFetch(seq, activityResponse(sampleActivity()...), statsResponse(5), nil)
	v.beginFetch()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(v.Snapshot()))
	assert.Contains(t, buf.String(), "(refreshing)")
}
