// Package format renders amounts and dates for the project pages.
package format

import (
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	Gregorian = "gregorian"
	Persian   = "persian"
)

var printer = message.NewPrinter(language.English)

// Amount groups thousands and keeps at most two decimals: 1234.5 -> "1,234.5".
func Amount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Date is the long form shown on the detail page, e.g. "March 5, 2024".
// The persian calendar prints yyyy/MM/dd.
func Date(t time.Time, calendar string) string {
	if t.IsZero() {
		return ""
	}
	if calendar == Persian {
		return ptime.New(t).Format("yyyy/MM/dd")
	}
	return t.Format("January 2, 2006")
}

// DateTime adds the clock to Date, used for comment timestamps.
func DateTime(t time.Time, calendar string) string {
	if t.IsZero() {
		return ""
	}
	if calendar == Persian {
		return ptime.New(t).Format("yyyy/MM/dd HH:mm")
	}
	return t.Format("January 2, 2006 15:04")
}

// Formatter binds a calendar so templates can call it without arguments.
type Formatter struct {
	Calendar string
}

func (f Formatter) Amount(v float64) string     { return Amount(v) }
func (f Formatter) Date(t time.Time) string     { return Date(t, f.Calendar) }
func (f Formatter) DateTime(t time.Time) string { return DateTime(t, f.Calendar) }
