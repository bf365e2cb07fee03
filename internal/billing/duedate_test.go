package billing

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name   string
		dueDay int
		ref    time.Time
		want   time.Time
	}{
		{
			name:   "reference before due day stays in same month",
			dueDay: 15,
			ref:    date(2024, time.March, 10),
			want:   date(2024, time.March, 15),
		},
		{
			name:   "reference after due day rolls to next month",
			dueDay: 5,
			ref:    date(2024, time.March, 10),
			want:   date(2024, time.April, 5),
		},
		{
			name:   "reference exactly on due day selects today",
			dueDay: 10,
			ref:    date(2024, time.March, 10),
			want:   date(2024, time.March, 10),
		},
		{
			name:   "day 31 clamps to leap-year February",
			dueDay: 31,
			ref:    date(2024, time.February, 1),
			want:   date(2024, time.February, 29),
		},
		{
			name:   "day 31 clamps to non-leap February",
			dueDay: 31,
			ref:    date(2023, time.February, 1),
			want:   date(2023, time.February, 28),
		},
		{
			name:   "day 30 clamps to February",
			dueDay: 30,
			ref:    date(2023, time.February, 5),
			want:   date(2023, time.February, 28),
		},
		{
			name:   "day 1 always valid",
			dueDay: 1,
			ref:    date(2024, time.June, 1),
			want:   date(2024, time.June, 1),
		},
		{
			name:   "day 1 after the first rolls over",
			dueDay: 1,
			ref:    date(2024, time.June, 2),
			want:   date(2024, time.July, 1),
		},
		{
			name:   "last day of long month rolling into short month clamps",
			dueDay: 31,
			ref:    date(2024, time.January, 31),
			want:   date(2024, time.January, 31),
		},
		{
			name:   "rollover from end of January lands on clamped February",
			dueDay: 30,
			ref:    date(2024, time.January, 31),
			want:   date(2024, time.February, 29),
		},
		{
			name:   "december rollover crosses the year",
			dueDay: 5,
			ref:    date(2024, time.December, 20),
			want:   date(2025, time.January, 5),
		},
		{
			name:   "time of day on reference is ignored",
			dueDay: 15,
			ref:    time.Date(2024, time.March, 10, 23, 59, 59, 0, time.UTC),
			want:   date(2024, time.March, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(tt.dueDay, tt.ref)
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate(%d, %s) = %s; want %s",
					tt.dueDay, tt.ref.Format(time.DateOnly),
					got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}
