package attribution

import (
	"fmt"
	"sort"
	"time"
)

// SlotRecommendation is one ranked publish window: a weekday plus a
// two-hour slot rendered as "HH:00–HH:00".
type SlotRecommendation struct {
	Day        time.Weekday `json:"day"`
	StartHour  int          `json:"start_hour"`
	HoursRange string       `json:"hours_range"`
	Count      int          `json:"count"`
}

// defaultRecommendations is returned when there is no history to rank.
// Friday and Saturday evenings are the marketplace's strongest hours
// overall, so a brand-new business still gets two usable suggestions.
var defaultRecommendations = []SlotRecommendation{
	{Day: time.Friday, StartHour: 18, HoursRange: "18:00–20:00"},
	{Day: time.Saturday, StartHour: 20, HoursRange: "20:00–22:00"},
}

// RecommendSlots buckets timestamps into (weekday, two-hour slot) cells
// and returns the top two by count. Callers always receive exactly two
// ranked suggestions: with no input the fixed default pair is returned,
// and with a single populated cell the runner-up comes from the
// defaults.
func RecommendSlots(timestamps []time.Time) []SlotRecommendation {
	type cell struct {
		day  time.Weekday
		slot int
	}
	counts := make(map[cell]int)
	for _, ts := range timestamps {
		if ts.IsZero() {
			continue
		}
		counts[cell{day: ts.Weekday(), slot: (ts.Hour() / 2) * 2}]++
	}

	ranked := make([]SlotRecommendation, 0, len(counts))
	for c, n := range counts {
		ranked = append(ranked, SlotRecommendation{
			Day:        c.day,
			StartHour:  c.slot,
			HoursRange: hoursRange(c.slot),
			Count:      n,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Day != ranked[j].Day {
			return ranked[i].Day < ranked[j].Day
		}
		return ranked[i].StartHour < ranked[j].StartHour
	})

	if len(ranked) >= 2 {
		return ranked[:2]
	}
	for _, def := range defaultRecommendations {
		if len(ranked) == 2 {
			break
		}
		if len(ranked) == 1 && ranked[0].Day == def.Day && ranked[0].StartHour == def.StartHour {
			continue
		}
		ranked = append(ranked, def)
	}
	return ranked
}

// hoursRange renders a slot as "HH:00–HH:00", wrapping past midnight
// for the 22:00 slot.
func hoursRange(startHour int) string {
	return fmt.Sprintf("%02d:00–%02d:00", startHour, (startHour+2)%24)
}
