package enrollment

import "testing"

func TestAttendancePercentage(t *testing.T) {
	tests := []struct {
		name            string
		attended, total int
		want            int
	}{
		{name: "no classes held yet", attended: 0, total: 0, want: 100},
		{name: "negative total", attended: 0, total: -1, want: 100},
		{name: "none attended", attended: 0, total: 10, want: 0},
		{name: "all attended", attended: 10, total: 10, want: 100},
		{name: "rounds up", attended: 2, total: 3, want: 67},
		{name: "rounds down", attended: 1, total: 3, want: 33},
		{name: "rounds half up", attended: 1, total: 8, want: 13},
		{name: "clamped above", attended: 12, total: 10, want: 100},
		{name: "clamped below", attended: -2, total: 10, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttendancePercentage(tt.attended, tt.total); got != tt.want {
				t.Errorf("AttendancePercentage(%d, %d) = %d, want %d", tt.attended, tt.total, got, tt.want)
			}
		})
	}
}
