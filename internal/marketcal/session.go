package marketcal

import "time"

// AnchorHourUTC is the UTC hour at which one trading session's news window
// rolls over into the next. An instant at exactly the anchor belongs to the
// new session.
const AnchorHourUTC = 1

// Session is the news-attribution window for a single trading day. The
// window is half-open: [LookbackStart, LookbackEnd). For a mid-session
// resolve, LookbackEnd is clamped to the current instant.
type Session struct {
	TargetDate    time.Time
	LookbackStart time.Time
	LookbackEnd   time.Time
}

func anchor(d time.Time) time.Time {
	d = DateOf(d)
	return time.Date(d.Year(), d.Month(), d.Day(), AnchorHourUTC, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the session window.
func (s Session) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(s.LookbackStart) && t.Before(s.LookbackEnd)
}

// ResolveTradingSession maps now to the trading day it belongs to and that
// day's news window. On a non-trading day (or before the anchor rollover of
// a trading day) the window stretches back across the whole closed gap, so
// every instant of an unbroken non-trading stretch resolves identically.
func ResolveTradingSession(now time.Time) Session {
	now = now.UTC()
	today := DateOf(now)

	var target time.Time
	var start time.Time
	switch {
	case !IsTradingDay(today):
		target = NextTradingDay(today)
		start = anchor(PrevTradingDay(target))
	case now.Before(anchor(today)):
		target = PrevTradingDay(today)
		start = anchor(target)
	default:
		target = today
		start = anchor(target)
	}

	end := anchor(NextTradingDay(target))
	if now.Before(end) {
		end = now
	}
	return Session{TargetDate: target, LookbackStart: start, LookbackEnd: end}
}

// ResolveSessionForDate resolves the session for an explicitly requested
// date, clamping the window end to now. A non-trading date resolves to the
// next trading day, with the window opening at the previous trading day's
// anchor so the closed gap is covered.
func ResolveSessionForDate(d, now time.Time) Session {
	now = now.UTC()
	d = DateOf(d)

	var target time.Time
	var start time.Time
	if !IsTradingDay(d) {
		target = NextTradingDay(d)
		start = anchor(PrevTradingDay(target))
	} else {
		target = d
		start = anchor(target)
	}

	end := anchor(NextTradingDay(target))
	if now.Before(end) {
		end = now
	}
	return Session{TargetDate: target, LookbackStart: start, LookbackEnd: end}
}
