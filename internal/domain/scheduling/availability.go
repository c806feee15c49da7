package scheduling

import (
	"fmt"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
)

const slotMinutes = 30

// GenerateSlots expands a working window into 30-minute slot labels. The
// start is included, the end is not; inverted or equal windows yield nothing.
func GenerateSlots(start, end string) []string {
	startMin, ok := parseMinutes(start)
	if !ok {
		return nil
	}
	endMin, ok := parseMinutes(end)
	if !ok {
		return nil
	}
	var slots []string
	for m := startMin; m < endMin; m += slotMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

func parseMinutes(s string) (int, bool) {
	if !identity.ValidTimeOfDay(s) {
		return 0, false
	}
	var h, m int
	fmt.Sscanf(s, "%d:%d", &h, &m)
	return h*60 + m, true
}

// defaultRuleFor returns the fallback working window for doctors with no
// stored availability: Monday through Friday 09:00-17:00.
func defaultRuleFor(day string) (identity.DayRule, bool) {
	switch day {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday":
		return identity.DayRule{Day: day, StartTime: "09:00", EndTime: "17:00", IsAvailable: true}, true
	}
	return identity.DayRule{}, false
}

// AvailableSlots computes the open slots for a doctor on a date: the day's
// rule expanded into 30-minute slots, minus the already booked ones,
// preserving generation order. An empty rule list falls back to the default
// weekday window; a day marked unavailable yields nothing.
func AvailableSlots(rules []identity.DayRule, date time.Time, booked []string) []string {
	day := date.Weekday().String()

	var rule identity.DayRule
	found := false
	if len(rules) == 0 {
		rule, found = defaultRuleFor(day)
	} else {
		for _, r := range rules {
			if r.Day == day && r.IsAvailable {
				rule = r
				found = true
				break
			}
		}
	}
	if !found || !rule.IsAvailable {
		return nil
	}

	taken := make(map[string]bool, len(booked))
	for _, s := range booked {
		taken[s] = true
	}

	var open []string
	for _, s := range GenerateSlots(rule.StartTime, rule.EndTime) {
		if !taken[s] {
			open = append(open, s)
		}
	}
	return open
}
