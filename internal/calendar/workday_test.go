package calendar

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/workday-reminder-bot/internal/apperror"
	"github.com/username/workday-reminder-bot/pkg/dateutil"
)

func TestLastValidWorkday(t *testing.T) {
	tests := []struct {
		name     string
		holidays HolidaySet
		year     int
		month    time.Month
		want     string
	}{
		{
			name:  "February 2024 leap day is a Thursday",
			year:  2024,
			month: time.February,
			want:  "2024-02-29",
		},
		{
			name:  "June 2025 ends on a Monday",
			year:  2025,
			month: time.June,
			want:  "2025-06-30",
		},
		{
			name:     "May 2025 Friday holiday after Saturday month end",
			holidays: NewHolidaySet(NewDate(2025, time.May, 30)),
			year:     2025,
			month:    time.May,
			want:     "2025-05-29",
		},
		{
			name:  "August 2025 ends on a Sunday",
			year:  2025,
			month: time.August,
			want:  "2025-08-29",
		},
		{
			name: "holidays outside the month are ignored",
			holidays: NewHolidaySet(
				NewDate(2025, time.July, 31),
				NewDate(2025, time.May, 30),
			),
			year:  2025,
			month: time.June,
			want:  "2025-06-30",
		},
		{
			name: "consecutive holidays before a weekend",
			holidays: NewHolidaySet(
				NewDate(2025, time.October, 31),
				NewDate(2025, time.October, 30),
			),
			year:  2025,
			month: time.October,
			want:  "2025-10-29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LastValidWorkday(tt.holidays, tt.year, tt.month)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLastValidWorkday_EmptyHolidaysEveryMonth(t *testing.T) {
	for year := 2000; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
			want := last
			switch last.Weekday() {
			case time.Saturday:
				want = last.AddDate(0, 0, -1)
			case time.Sunday:
				want = last.AddDate(0, 0, -2)
			}

			got, err := LastValidWorkday(HolidaySet{}, year, month)
			if err != nil {
				t.Fatalf("LastValidWorkday(%d, %v) error = %v", year, month, err)
			}
			if got != DateOf(want, time.UTC) {
				t.Errorf("LastValidWorkday(%d, %v) = %v, want %v", year, month, got, want.Format(dateutil.ISODate))
			}
		}
	}
}

func TestLastValidWorkday_RandomHolidays(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		year := 2020 + rng.Intn(10)
		month := time.Month(1 + rng.Intn(12))
		days := dateutil.DaysInMonth(year, month)

		holidays := HolidaySet{}
		for n := rng.Intn(8); n > 0; n-- {
			holidays.Add(Date{Year: year, Month: month, Day: 1 + rng.Intn(days)})
		}

		got, err := LastValidWorkday(holidays, year, month)
		require.NoError(t, err)

		assert.Equal(t, year, got.Year)
		assert.Equal(t, month, got.Month)
		assert.LessOrEqual(t, got.Day, days)
		assert.GreaterOrEqual(t, got.Day, 1)
		assert.True(t, IsWorkday(got, holidays), "result %v is not a workday", got)

		for day := got.Day + 1; day <= days; day++ {
			after := Date{Year: year, Month: month, Day: day}
			assert.False(t, IsWorkday(after, holidays), "%v is a later workday than %v", after, got)
		}

		again, err := LastValidWorkday(holidays, year, month)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestLastValidWorkday_InvalidArgument(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
	}{
		{"month zero", 2025, 0},
		{"month thirteen", 2025, 13},
		{"year zero", 0, time.January},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LastValidWorkday(nil, tt.year, tt.month)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.InvalidArgument))
		})
	}
}

func TestLastValidWorkday_WholeMonthHoliday(t *testing.T) {
	holidays := HolidaySet{}
	for day := 1; day <= 28; day++ {
		holidays.Add(NewDate(2026, time.February, day))
	}

	_, err := LastValidWorkday(holidays, 2026, time.February)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoWorkday)
	assert.ErrorIs(t, err, apperror.InvalidArgument)
}

func TestWorkdaysInMonth(t *testing.T) {
	holidays := NewHolidaySet(NewDate(2025, time.May, 30), NewDate(2025, time.May, 1))

	days, err := WorkdaysInMonth(holidays, 2025, time.May)
	require.NoError(t, err)

	// May 2025: 22 weekdays, two of them holidays.
	assert.Len(t, days, 20)
	assert.Equal(t, "2025-05-02", days[0].String())
	assert.Equal(t, "2025-05-29", days[len(days)-1].String())
}

func TestDate(t *testing.T) {
	taipei := time.FixedZone("Asia/Taipei", 8*60*60)

	// 2025-05-29 20:00 UTC is already the 30th in Taipei.
	d := DateOf(time.Date(2025, 5, 29, 20, 0, 0, 0, time.UTC), taipei)
	assert.Equal(t, "2025-05-30", d.String())
	assert.Equal(t, time.Friday, d.Weekday())
	assert.Equal(t, "2025-06-02", d.AddDays(3).String())
	assert.True(t, d.Before(d.AddDays(1)))

	parsed, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), parsed)

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
}

func TestHolidaySet(t *testing.T) {
	var empty HolidaySet
	assert.False(t, empty.Contains(NewDate(2025, time.January, 1)))

	set := NewHolidaySet(NewDate(2025, time.October, 10), NewDate(2025, time.January, 1))
	assert.True(t, set.Contains(NewDate(2025, time.October, 10)))
	assert.Equal(t, []string{"2025-01-01", "2025-10-10"}, set.Keys())
}
