// Package locale provides the day and month names shown by the letter
// clock.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locale formats date lines for one language.
type Locale struct {
	Name   string
	tag    language.Tag
	days   [7]string
	months [12]string
}

var locales = map[string]*Locale{
	"en_US": {
		Name:   "en_US",
		tag:    language.AmericanEnglish,
		days:   [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"},
		months: [12]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"},
	},
	"it_IT": {
		Name:   "it_IT",
		tag:    language.Italian,
		days:   [7]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"},
		months: [12]string{"gen", "feb", "mar", "apr", "mag", "giu", "lug", "ago", "set", "ott", "nov", "dic"},
	},
}

// Default is the locale used when none is configured.
const Default = "it_IT"

// Lookup returns a locale by name. Both "it_IT" and "it-IT" are accepted.
func Lookup(name string) (*Locale, error) {
	if name == "" {
		name = Default
	}
	l, ok := locales[strings.ReplaceAll(name, "-", "_")]
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", name)
	}
	return l, nil
}

// Names lists the supported locale names.
func Names() []string {
	names := make([]string, 0, len(locales))
	for name := range locales {
		names = append(names, name)
	}
	return names
}

// DateLine formats t as "DAY D MON", e.g. "LUN 15 DIC".
func (l *Locale) DateLine(t time.Time) string {
	line := fmt.Sprintf("%s %d %s", l.days[t.Weekday()], t.Day(), l.months[t.Month()-1])
	return cases.Upper(l.tag).String(line)
}

// TimeLine formats t as 24-hour "HH:MM:SS".
func (l *Locale) TimeLine(t time.Time) string {
	return t.Format("15:04:05")
}
