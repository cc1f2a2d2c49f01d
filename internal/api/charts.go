package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/httputil"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleCaptureChart renders a quick line chart (HTML) of one capture using
// go-echarts. This is a debugging-only endpoint to eyeball the inverted
// gyro-Y and acc-X traces without pulling the JSON into a notebook.
// Query params:
//   - id (optional; defaults to the most recent capture)
func (s *Server) handleCaptureChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	var c *gesture.Capture
	if id := r.URL.Query().Get("id"); id != "" {
		c = s.rt.History().Get(id)
		if c == nil {
			httputil.NotFound(w, "no capture with that ID in history")
			return
		}
	} else if recent := s.rt.History().Recent(1); len(recent) > 0 {
		c = recent[0]
	}
	if c == nil {
		httputil.NotFound(w, "no captures recorded yet")
		return
	}

	x := make([]string, c.Len())
	gyro := make([]opts.LineData, c.Len())
	acc := make([]opts.LineData, c.Len())
	for i := 0; i < c.Len(); i++ {
		x[i] = strconv.Itoa(i)
		gyro[i] = opts.LineData{Value: c.GyroY[i]}
		acc[i] = opts.LineData{Value: c.AccX[i]}
	}

	subtitle := fmt.Sprintf("id=%s samples=%d opened=%s",
		c.ID, c.Len(), c.OpenedAt.UTC().Format(time.RFC3339))

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Gesture Capture", Theme: "dark", Width: "1200px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Gesture Capture", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)
	line.SetXAxis(x).
		AddSeries("gyro_y", gyro).
		AddSeries("acc_x", acc)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
