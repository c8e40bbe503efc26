package utils

import (
	"strings"
	"time"

	"market-assistant/src/logger"

	"github.com/scmhub/calendar"
)

// Session hours used when no exchange calendar can be loaded.
const (
	fallbackOpenMinute  = 9*60 + 15
	fallbackCloseMinute = 15*60 + 30
)

// TradingCalendar answers market-hours questions for one exchange.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForSymbol maps a provider symbol to its exchange MIC. Bombay listings and
// the Sensex go to xbom, everything else to the National Stock Exchange.
func MICForSymbol(symbol string) string {
	s := strings.ToUpper(symbol)
	if strings.HasSuffix(s, ".BO") || s == "^BSESN" {
		return "xbom"
	}
	return "xnse"
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string, l *logger.Logger) *TradingCalendar {
	mic := MICForSymbol(symbol)

	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}

	if l != nil {
		l.Warning("No calendar for MIC '%s'. Using fallback (Mon-Fri 09:15-15:30 IST).", mic)
	}
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		ist = time.FixedZone("IST", 5*3600+1800)
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: ist}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minute := t.Hour()*60 + t.Minute()
		return minute >= fallbackOpenMinute && minute < fallbackCloseMinute
	}

	return tc.Calendar.IsOpen(t)
}
