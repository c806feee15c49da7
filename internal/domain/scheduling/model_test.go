package scheduling

import "testing"

func TestIsValidStatus(t *testing.T) {
	for _, s := range Statuses {
		if !IsValidStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if IsValidStatus("rescheduled") {
		t.Error("rescheduled should not be valid")
	}
	if IsValidStatus("Pending") {
		t.Error("status match should be case sensitive")
	}
}
