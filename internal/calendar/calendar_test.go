package calendar

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBack(t *testing.T) {
	tests := []struct {
		n     int
		today time.Time
		want  string
	}{
		{1, date(2024, time.June, 15), "20240515"},
		{3, date(2024, time.May, 31), "20240229"},  // leap-year clamp
		{1, date(2023, time.March, 31), "20230228"}, // non-leap clamp
		{1, date(2024, time.January, 31), "20231231"},
		{2, date(2024, time.January, 10), "20231110"},
		{12, date(2024, time.February, 29), "20230228"},
		{24, date(2024, time.June, 15), "20220615"},
		{13, date(2024, time.March, 31), "20230228"},
		{6, date(2024, time.January, 2), "20230702"},
	}

	for _, tt := range tests {
		got := MonthsBack(tt.n, tt.today)
		if got != tt.want {
			t.Errorf("MonthsBack(%d, %s) = %s, want %s",
				tt.n, tt.today.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestMonthsBackStaysInTargetMonth(t *testing.T) {
	// Stepping back n months never overflows into the following month
	// (the Jan 31 - 1 month != Mar 3 property).
	start := date(2022, time.January, 1)
	for d := 0; d < 365*3; d++ {
		today := start.AddDate(0, 0, d)
		for _, n := range []int{1, 2, 3, 6, 12, 24} {
			got := MonthsBack(n, today)
			parsed, err := Parse(got)
			if err != nil {
				t.Fatalf("MonthsBack(%d, %s) produced unparseable date %q", n, today, got)
			}
			wantMonth := int(today.Month()) - n
			wantYear := today.Year()
			for wantMonth <= 0 {
				wantMonth += 12
				wantYear--
			}
			if int(parsed.Month()) != wantMonth || parsed.Year() != wantYear {
				t.Fatalf("MonthsBack(%d, %s) = %s, landed outside target month %d-%02d",
					n, today.Format("2006-01-02"), got, wantYear, wantMonth)
			}
		}
	}
}

func TestLastCompletedTradingDay(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  string
	}{
		{"midweek", date(2024, time.June, 13), "20240612"},
		{"monday skips weekend", date(2024, time.January, 8), "20240105"},
		{"sunday skips saturday", date(2024, time.January, 7), "20240105"},
		{"holiday", date(2024, time.December, 26), "20241224"},
		{"holiday adjacent to weekend", date(2024, time.January, 16), "20240112"},
		{"new year plus weekend", date(2024, time.January, 2), "20231229"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LastCompletedTradingDay(tt.today)
			if err != nil {
				t.Fatalf("LastCompletedTradingDay(%s) error: %v", tt.today, err)
			}
			if got != tt.want {
				t.Errorf("LastCompletedTradingDay(%s) = %s, want %s",
					tt.today.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestLastCompletedTradingDayNeverWeekendOrHoliday(t *testing.T) {
	start := date(2022, time.February, 1)
	for d := 0; d < 365*4; d++ {
		today := start.AddDate(0, 0, d)
		got, err := LastCompletedTradingDay(today)
		if err != nil {
			t.Fatalf("LastCompletedTradingDay(%s) error: %v", today, err)
		}
		parsed, err := Parse(got)
		if err != nil {
			t.Fatalf("unparseable result %q for today=%s", got, today)
		}
		if wd := parsed.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("LastCompletedTradingDay(%s) = %s, a %s", today, got, wd)
		}
		if IsHoliday(parsed) {
			t.Fatalf("LastCompletedTradingDay(%s) = %s, a holiday", today, got)
		}
		if !parsed.Before(today) {
			t.Fatalf("LastCompletedTradingDay(%s) = %s, not strictly before today", today, got)
		}
	}
}

func TestLastCompletedTradingDayWalkBound(t *testing.T) {
	// Malformed holiday data: a solid block of closures longer than the
	// walk bound must fail loudly instead of walking forever.
	var fake []string
	for d := 0; d < 20; d++ {
		fake = append(fake, date(1999, time.March, 1).AddDate(0, 0, d).Format("20060102"))
	}
	for _, f := range fake {
		holidays[f] = struct{}{}
	}
	defer func() {
		for _, f := range fake {
			delete(holidays, f)
		}
	}()

	_, err := LastCompletedTradingDay(date(1999, time.March, 20))
	if !errors.Is(err, ErrWalkExceeded) {
		t.Errorf("expected ErrWalkExceeded, got %v", err)
	}
}

func TestAddSubtractDay(t *testing.T) {
	tests := []struct {
		in      string
		add     string
		sub     string
	}{
		{"20240115", "20240116", "20240114"},
		{"20240229", "20240301", "20240228"}, // leap day
		{"20231231", "20240101", "20231230"}, // year boundary
		{"20240301", "20240302", "20240229"},
	}

	for _, tt := range tests {
		got, err := AddDay(tt.in)
		if err != nil {
			t.Fatalf("AddDay(%s) error: %v", tt.in, err)
		}
		if got != tt.add {
			t.Errorf("AddDay(%s) = %s, want %s", tt.in, got, tt.add)
		}

		got, err = SubtractDay(tt.in)
		if err != nil {
			t.Fatalf("SubtractDay(%s) error: %v", tt.in, err)
		}
		if got != tt.sub {
			t.Errorf("SubtractDay(%s) = %s, want %s", tt.in, got, tt.sub)
		}
	}
}

func TestAddDayRoundTrip(t *testing.T) {
	d := "20240610"
	up, err := AddDay(d)
	if err != nil {
		t.Fatal(err)
	}
	back, err := SubtractDay(up)
	if err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip %s -> %s -> %s", d, up, back)
	}
}

func TestAddDayInvalid(t *testing.T) {
	for _, bad := range []string{"", "2024-01-15", "notadate", "2024011"} {
		if _, err := AddDay(bad); err == nil {
			t.Errorf("AddDay(%q) should fail", bad)
		}
		if _, err := SubtractDay(bad); err == nil {
			t.Errorf("SubtractDay(%q) should fail", bad)
		}
	}
}

func TestIsTradingDay(t *testing.T) {
	tests := []struct {
		day  time.Time
		want bool
	}{
		{date(2024, time.June, 12), true},   // Wednesday
		{date(2024, time.June, 15), false},  // Saturday
		{date(2024, time.June, 16), false},  // Sunday
		{date(2024, time.July, 4), false},   // holiday
		{date(2024, time.December, 24), true}, // half day still trades
	}

	for _, tt := range tests {
		if got := IsTradingDay(tt.day); got != tt.want {
			t.Errorf("IsTradingDay(%s) = %v, want %v", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}
