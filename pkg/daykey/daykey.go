package daykey

import "time"

// Layout is the format of a calendar-day key.
const Layout = "2006-01-02"

// Of returns the calendar-day key of t in t's own location.
// Callers that want the user's local day should pass a time in time.Local.
func Of(t time.Time) string {
	return t.Format(Layout)
}

// Yesterday returns the key of the day before t.
func Yesterday(t time.Time) string {
	y, m, d := t.Date()
	// noon avoids DST transitions moving the date
	return Of(time.Date(y, m, d-1, 12, 0, 0, 0, t.Location()))
}

// Valid reports whether key is a well formed calendar-day key.
func Valid(key string) bool {
	_, err := time.Parse(Layout, key)
	return err == nil
}
