package web

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/gt7-dashboard/internal/analysis"
	"github.com/yourusername/gt7-dashboard/internal/refdata"
	"github.com/yourusername/gt7-dashboard/internal/store"
	"github.com/yourusername/gt7-dashboard/internal/telemetry"
)

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #fafafa; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #eee; }
iframe { border: 1px solid #ccc; margin: 1em 0; }
.notice { color: #666; font-style: italic; margin: 2em 0; }
nav a { margin-right: 1em; }
</style>
</head>
<body>
<nav><a href="/">Sessions</a><a href="/leaderboard">Leaderboard</a><a href="/reference/cars">Cars</a><a href="/reference/tracks">Tracks</a></nav>
<h1>%s</h1>
%s
</body>
</html>`

func (s *Server) writePage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, pageShell, html.EscapeString(title), html.EscapeString(title), body)
}

// writeNotice renders the inline "no data" style messaging used for every
// locally recovered failure; nothing the viewer does is fatal.
func (s *Server) writeNotice(w http.ResponseWriter, status int, title, msg string) {
	body := fmt.Sprintf(`<p class="notice">%s</p>`, html.EscapeString(msg))
	s.writePage(w, status, title, body)
}

// loadSession maps the error taxonomy onto viewer-facing pages. It returns
// nil when a page has already been written.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request, key string) *telemetry.Session {
	session, err := s.viewer.LoadSession(r.Context(), key)
	if err == nil {
		return session
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeNotice(w, http.StatusNotFound, "Session", "No data available for "+key)
	case errors.Is(err, telemetry.ErrMalformedSession):
		s.logger.WithError(err).WithField("key", key).Warn("Malformed session")
		s.writeNotice(w, http.StatusOK, "Session", "No data available: telemetry file could not be decoded")
	default:
		s.logger.WithError(err).WithField("key", key).Error("Failed to load session")
		s.writeNotice(w, http.StatusBadGateway, "Session", "No data available: telemetry store unreachable")
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	keys, err := s.viewer.ListSessions(r.Context(), "")
	if err != nil {
		s.logger.WithError(err).Error("Failed to list sessions")
		s.writeNotice(w, http.StatusBadGateway, "GT7 Telemetry Dashboard", "No data available: telemetry store unreachable")
		return
	}

	var b strings.Builder
	if len(keys) == 0 {
		b.WriteString(`<p class="notice">No telemetry files found.</p>`)
	} else {
		b.WriteString("<table><tr><th>Session</th><th></th></tr>")
		for _, key := range keys {
			escaped := url.QueryEscape(key)
			fmt.Fprintf(&b, `<tr><td><a href="/session?key=%s">%s</a></td><td><a href="/charts/speed?key=%s">speed</a></td></tr>`,
				escaped, html.EscapeString(key), escaped)
		}
		b.WriteString("</table>")
	}

	b.WriteString(`<h2>Compare sessions</h2>
<form action="/compare" method="get">
<input type="text" name="keys" size="80" placeholder="keyA.json,keyB.json (max 4)">
<input type="submit" value="Compare">
</form>`)

	s.writePage(w, http.StatusOK, "GT7 Telemetry Dashboard", b.String())
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeNotice(w, http.StatusOK, "Session", "No session selected.")
		return
	}

	session := s.loadSession(w, r, key)
	if session == nil {
		return
	}

	catalog := s.viewer.Catalog()
	carLabel := catalog.Cars.Lookup(session.CarCode).Label("car")
	trackLabel := catalog.Tracks.Lookup(session.TrackCode).Label("track")

	var b strings.Builder
	fmt.Fprintf(&b, "<table><tr><th>Car</th><td>%s</td></tr><tr><th>Track</th><td>%s</td></tr><tr><th>Samples</th><td>%d</td></tr>",
		html.EscapeString(carLabel), html.EscapeString(trackLabel), session.SampleCount())
	if best, ok := analysis.BestLap(session); ok {
		fmt.Fprintf(&b, "<tr><th>Best lap</th><td>%s</td></tr>", formatLapTime(best))
	}
	b.WriteString("</table>")

	b.WriteString("<h2>Laps</h2><table><tr><th>Lap</th><th>Samples</th><th>Top speed</th><th>Mean speed</th><th>Mean throttle</th><th>Full brake</th><th></th></tr>")
	escaped := url.QueryEscape(key)
	for _, lap := range analysis.SummarizeLaps(session) {
		fmt.Fprintf(&b, `<tr><td>%d</td><td>%d</td><td>%.1f km/h</td><td>%.1f km/h</td><td>%.0f%%</td><td>%.0f%%</td><td><a href="/charts/speed?key=%s&lap=%d">speed</a> <a href="/charts/line?key=%s&lap=%d">line</a> <a href="/charts/inputs?key=%s&lap=%d">inputs</a></td></tr>`,
			lap.Index, lap.SampleCount, lap.TopSpeed, lap.MeanSpeed, lap.MeanThrottle,
			lap.FullBrakeShare*100, escaped, lap.Index, escaped, lap.Index, escaped, lap.Index)
	}
	b.WriteString("</table>")

	fmt.Fprintf(&b, `<h2>Charts</h2>
<p>Current lap only: <a href="/charts/speed?key=%s&lap=current">speed</a> <a href="/charts/line?key=%s&lap=current">line</a> <a href="/charts/inputs?key=%s&lap=current">inputs</a></p>
<iframe src="/charts/speed?key=%s" width="960" height="540"></iframe>
<iframe src="/charts/line?key=%s" width="700" height="700"></iframe>
<iframe src="/charts/inputs?key=%s" width="960" height="420"></iframe>`, escaped, escaped, escaped, escaped, escaped, escaped)

	s.writePage(w, http.StatusOK, "Session "+key, b.String())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, agg, err := s.viewer.Leaderboard(r.Context(), "")
	if err != nil {
		s.logger.WithError(err).Error("Failed to compute leaderboard")
		s.writeNotice(w, http.StatusBadGateway, "Leaderboard", "No data available: telemetry store unreachable")
		return
	}

	if len(entries) == 0 {
		s.writeNotice(w, http.StatusOK, "Leaderboard", "No sessions with a valid lap time.")
		return
	}

	if r.URL.Query().Get("view") == "chart" {
		s.renderLeaderboardChart(w, entries)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>%d ranked sessions, fastest %s, mean %s</p>",
		agg.Sessions, formatLapTime(agg.MinBest), formatLapTime(agg.MeanBest))
	b.WriteString("<table><tr><th>#</th><th>Session</th><th>Car</th><th>Track</th><th>Best lap</th></tr>")
	for i, e := range entries {
		fmt.Fprintf(&b, `<tr><td>%d</td><td><a href="/session?key=%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			i+1, url.QueryEscape(e.SessionKey), html.EscapeString(e.SessionKey),
			html.EscapeString(e.CarName), html.EscapeString(e.TrackName), formatLapTime(e.BestLap))
	}
	b.WriteString("</table>")
	b.WriteString(`<iframe src="/leaderboard?view=chart" width="960" height="540"></iframe>`)

	s.writePage(w, http.StatusOK, "Leaderboard", b.String())
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var keys []string
	for _, k := range strings.Split(r.URL.Query().Get("keys"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		s.writeNotice(w, http.StatusOK, "Compare", "No sessions selected.")
		return
	}

	overlays, err := s.viewer.CompareSessions(r.Context(), keys)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrTooManySessions):
			s.writeNotice(w, http.StatusBadRequest, "Compare",
				fmt.Sprintf("At most %d sessions can be compared; %d were selected.", analysis.MaxCompareSessions, len(keys)))
		case errors.Is(err, store.ErrNotFound):
			s.writeNotice(w, http.StatusNotFound, "Compare", "No data available: one of the selected sessions does not exist")
		case errors.Is(err, telemetry.ErrMalformedSession):
			s.writeNotice(w, http.StatusOK, "Compare", "No data available: one of the selected sessions could not be decoded")
		default:
			s.logger.WithError(err).Error("Failed to build comparison")
			s.writeNotice(w, http.StatusBadGateway, "Compare", "No data available: telemetry store unreachable")
		}
		return
	}

	s.renderCompareChart(w, overlays)
}

func (s *Server) handleCarsPreview(w http.ResponseWriter, r *http.Request) {
	s.renderReferencePreview(w, "Cars", s.viewer.Catalog().Cars)
}

func (s *Server) handleTracksPreview(w http.ResponseWriter, r *http.Request) {
	s.renderReferencePreview(w, "Tracks", s.viewer.Catalog().Tracks)
}

func (s *Server) renderReferencePreview(w http.ResponseWriter, title string, table *refdata.Table) {
	columns := table.Columns()

	var b strings.Builder
	fmt.Fprintf(&b, "<p>%d rows, columns: %s</p>", table.Len(), html.EscapeString(strings.Join(columns, ", ")))
	b.WriteString("<table><tr><th>Code</th><th>Name</th>")
	for _, col := range columns[2:] {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(col))
	}
	b.WriteString("</tr>")

	for _, row := range table.Rows() {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td>", html.EscapeString(row.Code), html.EscapeString(row.DisplayName))
		for _, col := range columns[2:] {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(row.Attrs[col]))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")

	s.writePage(w, http.StatusOK, title, b.String())
}

func (s *Server) handleReferenceReload(w http.ResponseWriter, r *http.Request) {
	if err := s.viewer.ReloadReference(r.Context()); err != nil {
		s.logger.WithError(err).Error("Manual reference reload failed")
		s.writeNotice(w, http.StatusBadGateway, "Reference reload", "Reload failed; previous tables kept.")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formatLapTime renders a lap time as m:ss.mmm.
func formatLapTime(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := d.Seconds() - float64(minutes)*60
	return fmt.Sprintf("%d:%06.3f", minutes, seconds)
}
