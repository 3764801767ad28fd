package coerce

import (
	"strings"
	"time"
)

var (
	_dateLayouts = []string{"2006-01-02"}
	_timeLayouts = []string{"15:04:05"}
	// Layouts carrying an explicit offset. Fractional seconds are accepted by
	// time.Parse after the seconds field even when the layout omits them.
	_zonedLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05Z0700",
	}
	_naiveLayouts = []string{"2006-01-02T15:04:05"}
)

// parseISO parses s against date or datetime layouts, supporting a leading
// '-' for negative years. Space separated datetimes ("2006-01-02 15:04:05") are accepted.
func parseISO(s string, layouts []string) (time.Time, bool) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, l := range layouts {
		t, err := time.Parse(l, s)
		if err != nil {
			continue
		}
		if neg {
			t = time.Date(-t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		}
		return t, true
	}
	return time.Time{}, false
}

func wholeSeconds(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func toDate(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		if d, ok := parseISO(t, _dateLayouts); ok {
			return d, nil
		}
		return nil, invalid(Date, v)
	}
	return fromComponents(Date, v)
}

func toTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	case string:
		s := strings.TrimPrefix(t, "T")
		if strings.HasPrefix(s, "-") {
			return nil, invalid(Time, v)
		}
		if c, ok := parseISO(s, _timeLayouts); ok {
			return time.Date(0, 1, 1, c.Hour(), c.Minute(), c.Second(), 0, time.UTC), nil
		}
		return nil, invalid(Time, v)
	}
	return fromComponents(Time, v)
}

func toDateTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return wholeSeconds(t.UTC(), time.UTC), nil
	case string:
		if z, ok := parseISO(t, _zonedLayouts); ok {
			return wholeSeconds(z.UTC(), time.UTC), nil
		}
		// no explicit offset: assume UTC
		if n, ok := parseISO(t, _naiveLayouts); ok {
			return wholeSeconds(n, time.UTC), nil
		}
		return nil, invalid(DateTime, v)
	}
	return fromComponents(DateTime, v)
}

func toNaiveDateTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return wholeSeconds(t, time.UTC), nil
	case string:
		if z, ok := parseISO(t, _zonedLayouts); ok {
			// the offset is dropped, the wall clock kept
			return wholeSeconds(z, time.UTC), nil
		}
		if n, ok := parseISO(t, _naiveLayouts); ok {
			return wholeSeconds(n, time.UTC), nil
		}
		return nil, invalid(NaiveDateTime, v)
	}
	return fromComponents(NaiveDateTime, v)
}

var _components = []string{"year", "month", "day", "hour", "minute", "second"}

// fromComponents builds a time from a {year, month, day, hour, minute,
// second} map. A map carrying component keys whose values are all empty
// yields nil; a map without any component key is invalid.
func fromComponents(k Kind, v any) (any, error) {
	m, ok := AsMap(v)
	if !ok {
		return nil, invalid(k, v)
	}
	vals := map[string]int{}
	seen := false
	for _, name := range _components {
		raw, present := m[name]
		seen = seen || present
		if !present || raw == nil || raw == "" {
			continue
		}
		n, err := toInt(raw)
		if err != nil {
			return nil, invalid(k, v)
		}
		vals[name] = n.(int)
	}
	if !seen {
		return nil, invalid(k, v)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	var need []string
	switch k {
	case Date:
		need = []string{"year", "month", "day"}
	case Time:
		need = []string{"hour", "minute"}
	default:
		need = []string{"year", "month", "day", "hour", "minute"}
	}
	for _, name := range need {
		if _, ok := vals[name]; !ok {
			return nil, invalid(k, v)
		}
	}

	year, month, day := vals["year"], vals["month"], vals["day"]
	if k == Time {
		year, month, day = 0, 1, 1
	}
	hour, minute, second := vals["hour"], vals["minute"], vals["second"]
	if month < 1 || month > 12 || hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return nil, invalid(k, v)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day {
		// day overflowed into the next month
		return nil, invalid(k, v)
	}
	if k == Date {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
	}
	return t, nil
}
