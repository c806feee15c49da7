package scheduling

import (
	"reflect"
	"testing"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
)

func TestGenerateSlots(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{"two hours", "09:00", "11:00", []string{"09:00", "09:30", "10:00", "10:30"}},
		{"end exclusive", "09:00", "09:30", []string{"09:00"}},
		{"equal range", "09:00", "09:00", nil},
		{"inverted range", "17:00", "09:00", nil},
		{"off grid start", "09:15", "10:00", []string{"09:15", "09:45"}},
		{"bad time", "9am", "10:00", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateSlots(tc.start, tc.end)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("GenerateSlots(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

// 2026-01-05 is a Monday, 2026-01-10 a Saturday.
var (
	monday   = time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local)
	saturday = time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local)
)

func TestAvailableSlots_UsesDayRule(t *testing.T) {
	rules := []identity.DayRule{
		{Day: "Monday", StartTime: "10:00", EndTime: "12:00", IsAvailable: true},
	}
	got := AvailableSlots(rules, monday, nil)
	want := []string{"10:00", "10:30", "11:00", "11:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v", got, want)
	}
}

func TestAvailableSlots_SubtractsBooked(t *testing.T) {
	rules := []identity.DayRule{
		{Day: "Monday", StartTime: "10:00", EndTime: "12:00", IsAvailable: true},
	}
	got := AvailableSlots(rules, monday, []string{"10:30", "11:30"})
	want := []string{"10:00", "11:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v", got, want)
	}
}

func TestAvailableSlots_DayMarkedUnavailable(t *testing.T) {
	rules := []identity.DayRule{
		{Day: "Monday", StartTime: "10:00", EndTime: "12:00", IsAvailable: false},
	}
	if got := AvailableSlots(rules, monday, nil); got != nil {
		t.Errorf("slots = %v, want none", got)
	}
}

func TestAvailableSlots_SkipsUnavailableDuplicate(t *testing.T) {
	rules := []identity.DayRule{
		{Day: "Monday", StartTime: "09:00", EndTime: "17:00", IsAvailable: false},
		{Day: "Monday", StartTime: "10:00", EndTime: "11:00", IsAvailable: true},
	}
	got := AvailableSlots(rules, monday, nil)
	want := []string{"10:00", "10:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v", got, want)
	}
}

func TestAvailableSlots_NoRuleForDay(t *testing.T) {
	rules := []identity.DayRule{
		{Day: "Tuesday", StartTime: "10:00", EndTime: "12:00", IsAvailable: true},
	}
	if got := AvailableSlots(rules, monday, nil); got != nil {
		t.Errorf("slots = %v, want none", got)
	}
}

func TestAvailableSlots_EmptyRulesFallBackToWeekdays(t *testing.T) {
	got := AvailableSlots(nil, monday, nil)
	if len(got) != 16 {
		t.Fatalf("weekday fallback slots = %d, want 16", len(got))
	}
	if got[0] != "09:00" || got[len(got)-1] != "16:30" {
		t.Errorf("slots span %s..%s", got[0], got[len(got)-1])
	}

	if got := AvailableSlots(nil, saturday, nil); got != nil {
		t.Errorf("weekend fallback slots = %v, want none", got)
	}
}
