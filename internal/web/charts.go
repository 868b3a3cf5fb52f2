package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/yourusername/gt7-dashboard/internal/analysis"
	"github.com/yourusername/gt7-dashboard/internal/metrics"
	"github.com/yourusername/gt7-dashboard/internal/service"
	"github.com/yourusername/gt7-dashboard/internal/telemetry"
)

// inputHeatmapBins is the number of distance buckets on the input heatmap's
// x-axis.
const inputHeatmapBins = 60

// chartSamples resolves the key/lap query parameters into the sample slice a
// chart should plot: the whole session, one lap when lap= is numeric, or the
// trailing lap when lap=current.
func (s *Server) chartSamples(w http.ResponseWriter, r *http.Request) ([]telemetry.Sample, string) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeNotice(w, http.StatusOK, "Chart", "No session selected.")
		return nil, ""
	}

	session := s.loadSession(w, r, key)
	if session == nil {
		return nil, ""
	}

	subtitle := key
	samples := session.Samples
	switch lapStr := r.URL.Query().Get("lap"); lapStr {
	case "":
	case "current":
		laps := telemetry.SplitByLap(session)
		lap, ok := telemetry.CurrentLap(laps, samples[len(samples)-1].LapIndex)
		if !ok {
			s.writeNotice(w, http.StatusOK, "Chart", "No data available for the current lap")
			return nil, ""
		}
		samples = lap.Samples
		subtitle = fmt.Sprintf("%s lap %d (current)", key, lap.Index)
	default:
		lap, err := strconv.Atoi(lapStr)
		if err != nil {
			s.writeNotice(w, http.StatusBadRequest, "Chart", "Invalid lap selection.")
			return nil, ""
		}
		samples = filterLap(samples, lap)
		if len(samples) == 0 {
			s.writeNotice(w, http.StatusOK, "Chart", fmt.Sprintf("No data available for lap %d", lap))
			return nil, ""
		}
		subtitle = fmt.Sprintf("%s lap %d", key, lap)
	}
	return samples, subtitle
}

func filterLap(samples []telemetry.Sample, lap int) []telemetry.Sample {
	var out []telemetry.Sample
	for _, sample := range samples {
		if sample.LapIndex == lap {
			out = append(out, sample)
		}
	}
	return out
}

// handleSpeedChart renders the speed trace: speed over distance along track.
func (s *Server) handleSpeedChart(w http.ResponseWriter, r *http.Request) {
	samples, subtitle := s.chartSamples(w, r)
	if samples == nil {
		return
	}

	data := make([]opts.LineData, 0, len(samples))
	for _, sample := range samples {
		data = append(data, opts.LineData{Value: []interface{}{sample.Distance, sample.CarSpeed}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Speed Trace", Width: "940px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Speed Trace", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Speed (km/h)"}),
	)
	line.AddSeries("speed", data)

	s.renderChart(w, "speed", line)
}

// handleDrivingLineChart renders the driving line: world X/Z scatter colored
// by speed.
func (s *Server) handleDrivingLineChart(w http.ResponseWriter, r *http.Request) {
	samples, subtitle := s.chartSamples(w, r)
	if samples == nil {
		return
	}

	data := make([]opts.ScatterData, 0, len(samples))
	maxAbs, maxSpeed := 0.0, 0.0
	for _, sample := range samples {
		if abs(sample.PositionX) > maxAbs {
			maxAbs = abs(sample.PositionX)
		}
		if abs(sample.PositionZ) > maxAbs {
			maxAbs = abs(sample.PositionZ)
		}
		if sample.CarSpeed > maxSpeed {
			maxSpeed = sample.CarSpeed
		}
		data = append(data, opts.ScatterData{Value: []interface{}{sample.PositionX, sample.PositionZ, sample.CarSpeed}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxSpeed == 0 {
		maxSpeed = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Driving Line", Width: "680px", Height: "680px"}),
		charts.WithTitleOpts(opts.Title{Title: "Driving Line", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Z (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSpeed),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("position", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	s.renderChart(w, "line", scatter)
}

// handleInputsChart renders a throttle/brake heatmap over distance buckets.
func (s *Server) handleInputsChart(w http.ResponseWriter, r *http.Request) {
	samples, subtitle := s.chartSamples(w, r)
	if samples == nil {
		return
	}

	minDist, maxDist := samples[0].Distance, samples[0].Distance
	for _, sample := range samples {
		if sample.Distance < minDist {
			minDist = sample.Distance
		}
		if sample.Distance > maxDist {
			maxDist = sample.Distance
		}
	}
	span := maxDist - minDist
	if span == 0 {
		span = 1
	}

	// Mean pedal input per distance bucket
	throttleSum := make([]float64, inputHeatmapBins)
	brakeSum := make([]float64, inputHeatmapBins)
	counts := make([]int, inputHeatmapBins)
	for _, sample := range samples {
		bin := int((sample.Distance - minDist) / span * float64(inputHeatmapBins))
		if bin >= inputHeatmapBins {
			bin = inputHeatmapBins - 1
		}
		throttleSum[bin] += sample.Throttle
		brakeSum[bin] += sample.Brake
		counts[bin]++
	}

	xLabels := make([]string, inputHeatmapBins)
	heatData := make([]opts.HeatMapData, 0, 2*inputHeatmapBins)
	for i := 0; i < inputHeatmapBins; i++ {
		xLabels[i] = fmt.Sprintf("%.0f", minDist+(float64(i)+0.5)*span/float64(inputHeatmapBins))
		if counts[i] == 0 {
			continue
		}
		heatData = append(heatData,
			opts.HeatMapData{Value: [3]interface{}{i, 0, throttleSum[i] / float64(counts[i])}},
			opts.HeatMapData{Value: [3]interface{}{i, 1, brakeSum[i] / float64(counts[i])}},
		)
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pedal Inputs", Width: "940px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pedal Inputs", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Distance (m)", NameLocation: "middle", NameGap: 30, Data: xLabels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: []string{"Throttle", "Brake"}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			InRange:    &opts.VisualMapInRange{Color: []string{"#f6efa6", "#d88273", "#bf444c"}},
		}),
	)
	heatmap.AddSeries("inputs", heatData)

	s.renderChart(w, "inputs", heatmap)
}

// renderCompareChart overlays the speed series of up to four sessions on the
// shared distance axis, at native sampling rate.
func (s *Server) renderCompareChart(w http.ResponseWriter, overlays []analysis.Overlay) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Session Comparison", Width: "940px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Session Comparison", Subtitle: fmt.Sprintf("%d sessions", len(overlays))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Speed (km/h)"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	for _, overlay := range overlays {
		data := make([]opts.LineData, 0, len(overlay.Series))
		for _, pt := range overlay.Series {
			data = append(data, opts.LineData{Value: []interface{}{pt.Distance, pt.Speed}})
		}
		name := fmt.Sprintf("%s @ %s (%s)", overlay.CarName, overlay.TrackName, overlay.SessionKey)
		line.AddSeries(name, data)
	}

	s.renderChart(w, "compare", line)
}

// renderLeaderboardChart renders best lap times as a bar chart, fastest first.
func (s *Server) renderLeaderboardChart(w http.ResponseWriter, entries []service.LeaderboardEntry) {
	x := make([]string, 0, len(entries))
	y := make([]opts.BarData, 0, len(entries))
	for _, e := range entries {
		x = append(x, e.SessionKey)
		y = append(y, opts.BarData{Value: e.BestLap.Seconds(), Name: e.CarName})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Leaderboard", Width: "940px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: "Best Lap Times", Subtitle: "seconds, fastest first"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("best lap", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	s.renderChart(w, "leaderboard", bar)
}

// renderer is the piece of every go-echarts chart type this package uses.
type renderer interface {
	Render(w io.Writer) error
}

func (s *Server) renderChart(w http.ResponseWriter, name string, chart renderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		s.logger.WithError(err).WithField("chart", name).Error("Failed to render chart")
		s.writeNotice(w, http.StatusInternalServerError, "Chart", "No data available: chart could not be rendered")
		return
	}

	metrics.ChartRendersTotal.WithLabelValues(name).Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
