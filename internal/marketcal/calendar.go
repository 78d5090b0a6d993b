// Package marketcal maps UTC instants to NYSE trading days and the session
// windows news should be attributed to.
package marketcal

import "time"

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NYSE full-day holidays for 2026.
var holidays = map[time.Time]bool{
	date(2026, time.January, 1):    true, // New Year's Day
	date(2026, time.January, 19):   true, // MLK Jr. Day
	date(2026, time.February, 16):  true, // Presidents Day
	date(2026, time.April, 3):      true, // Good Friday
	date(2026, time.May, 25):       true, // Memorial Day
	date(2026, time.June, 19):      true, // Juneteenth
	date(2026, time.July, 3):       true, // Independence Day (observed)
	date(2026, time.September, 7):  true, // Labor Day
	date(2026, time.November, 26):  true, // Thanksgiving
	date(2026, time.December, 25):  true, // Christmas
}

// NYSE 1 PM early-close days for 2026.
var earlyCloses = map[time.Time]bool{
	date(2026, time.July, 2):      true,
	date(2026, time.November, 27): true,
	date(2026, time.December, 24): true,
}

// US Eastern DST boundaries for 2026, half-open [start, end).
var (
	dstStart = date(2026, time.March, 8)
	dstEnd   = date(2026, time.November, 1)
)

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return date(t.Year(), t.Month(), t.Day())
}

// IsTradingDay reports whether d is an NYSE trading day.
func IsTradingDay(d time.Time) bool {
	d = DateOf(d)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !holidays[d]
}

// IsEarlyClose reports whether d is an NYSE early-close day. Informational
// only; early closes do not move session boundaries.
func IsEarlyClose(d time.Time) bool {
	return earlyCloses[DateOf(d)]
}

// IsUSDST reports whether d falls within US Eastern daylight saving time.
func IsUSDST(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(dstStart) && d.Before(dstEnd)
}

// PremarketSwitchHourUTC returns the UTC hour at which pre-market opens:
// 9 (4 AM EST) in standard time, 8 (4 AM EDT) during DST.
func PremarketSwitchHourUTC(d time.Time) int {
	if IsUSDST(d) {
		return 8
	}
	return 9
}

// PrevTradingDay returns the most recent trading day strictly before d.
func PrevTradingDay(d time.Time) time.Time {
	cur := DateOf(d).AddDate(0, 0, -1)
	for !IsTradingDay(cur) {
		cur = cur.AddDate(0, 0, -1)
	}
	return cur
}

// NextTradingDay returns the next trading day strictly after d.
func NextTradingDay(d time.Time) time.Time {
	cur := DateOf(d).AddDate(0, 0, 1)
	for !IsTradingDay(cur) {
		cur = cur.AddDate(0, 0, 1)
	}
	return cur
}

// CurrentOrPrevTradingDay returns d if it is a trading day, otherwise the
// last trading day before it.
func CurrentOrPrevTradingDay(d time.Time) time.Time {
	cur := DateOf(d)
	for !IsTradingDay(cur) {
		cur = cur.AddDate(0, 0, -1)
	}
	return cur
}

// CurrentOrNextTradingDay returns d if it is a trading day, otherwise the
// first trading day after it.
func CurrentOrNextTradingDay(d time.Time) time.Time {
	cur := DateOf(d)
	for !IsTradingDay(cur) {
		cur = cur.AddDate(0, 0, 1)
	}
	return cur
}
