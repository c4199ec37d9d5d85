package widget

import "time"

// NeedsRefresh reports whether the widget's data has gone stale at the given
// instant: either it was never refreshed, or its refresh interval has elapsed
// since the last refresh. Pure; the caller fetches the data and stamps the
// widget afterwards.
func NeedsRefresh(w *Widget, now time.Time) bool {
	if w.LastRefreshedAt == nil {
		return true
	}
	return now.Sub(*w.LastRefreshedAt) >= time.Duration(w.RefreshInterval)*time.Second
}
