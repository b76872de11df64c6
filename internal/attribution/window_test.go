package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scenenow/boost-metrics/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestResolveWindowDaily(t *testing.T) {
	c := &models.Campaign{
		ID:           "b1",
		DurationMode: models.DurationModeDaily,
		StartDate:    date(2024, time.March, 10),
		EndDate:      date(2024, time.March, 12),
	}

	w, ok := ResolveWindow(c)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), w.Start)
	// End date is inclusive, so the window runs to the start of the 13th.
	require.Equal(t, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), w.End)

	// Every instant on the first and last day is inside.
	require.True(t, WithinWindow(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), w))
	require.True(t, WithinWindow(time.Date(2024, time.March, 12, 23, 59, 59, 999999999, time.UTC), w))

	// The day before and after are outside.
	require.False(t, WithinWindow(time.Date(2024, time.March, 9, 23, 59, 59, 0, time.UTC), w))
	require.False(t, WithinWindow(time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), w))
}

func TestResolveWindowDailyMissingDates(t *testing.T) {
	c := &models.Campaign{
		ID:           "b1",
		DurationMode: models.DurationModeDaily,
		StartDate:    date(2024, time.March, 10),
	}
	_, ok := ResolveWindow(c)
	require.False(t, ok)

	c = &models.Campaign{ID: "b2", DurationMode: models.DurationModeDaily}
	_, ok = ResolveWindow(c)
	require.False(t, ok)
}

func TestResolveWindowHourly(t *testing.T) {
	created := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	c := &models.Campaign{
		ID:            "b1",
		DurationMode:  models.DurationModeHourly,
		CreatedAt:     created,
		DurationHours: 3,
	}

	w, ok := ResolveWindow(c)
	require.True(t, ok)
	require.Equal(t, created, w.Start)
	require.Equal(t, created.Add(3*time.Hour), w.End)

	require.True(t, WithinWindow(created, w))
	require.True(t, WithinWindow(created.Add(3*time.Hour-time.Millisecond), w))
	require.False(t, WithinWindow(created.Add(3*time.Hour), w))

	// 12:59 attributes, 13:00:01 does not
	require.True(t, WithinWindow(time.Date(2024, time.March, 1, 12, 59, 0, 0, time.UTC), w))
	require.False(t, WithinWindow(time.Date(2024, time.March, 1, 13, 0, 1, 0, time.UTC), w))
}

func TestResolveWindowHourlyInvalidDuration(t *testing.T) {
	c := &models.Campaign{
		ID:           "b1",
		DurationMode: models.DurationModeHourly,
		CreatedAt:    time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
	_, ok := ResolveWindow(c)
	require.False(t, ok)

	c.DurationHours = -4
	_, ok = ResolveWindow(c)
	require.False(t, ok)
}

func TestResolveWindowDeterministic(t *testing.T) {
	c := &models.Campaign{
		ID:            "b1",
		DurationMode:  models.DurationModeHourly,
		CreatedAt:     time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
		DurationHours: 6,
	}
	w1, ok1 := ResolveWindow(c)
	w2, ok2 := ResolveWindow(c)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, w1, w2)
}

func TestEvaluateStatus(t *testing.T) {
	created := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	c := &models.Campaign{
		ID:            "b1",
		Status:        models.CampaignStatusActive,
		DurationMode:  models.DurationModeHourly,
		CreatedAt:     created,
		DurationHours: 3,
	}

	require.Equal(t, models.CampaignStatusActive, EvaluateStatus(c, created.Add(time.Hour)))
	require.Equal(t, models.CampaignStatusCompleted, EvaluateStatus(c, created.Add(3*time.Hour)))

	// Manual states are preserved regardless of the window.
	c.Status = models.CampaignStatusCanceled
	require.Equal(t, models.CampaignStatusCanceled, EvaluateStatus(c, created.Add(time.Hour)))
}
