package http

import (
	"net/http"

	"finman/internal/gateway"
	"finman/internal/viewmodel"
)

type chartSliceData struct {
	Category string
	Amount   string
	Percent  int
}

type chartBarData struct {
	Label  string
	Amount string
	Width  int
}

type chartData struct {
	Slices   []chartSliceData
	Bars     []chartBarData
	Selected string
	Ranges   []string
	Status   viewmodel.Status
	Error    string
	Empty    bool
}

// handleChart renders the category and monthly charts for the selected
// range. Bars are scaled against the biggest month.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	rng := sanitizeInput(r.URL.Query().Get("range"))
	err := s.chart.Load(r.Context(), rng)
	if err != nil && gateway.IsUnauthorized(err) {
		SessionExpiredResponse().Write(w)
		return
	}

	slices, months, selected, status, errMsg := s.chart.Snapshot()
	data := chartData{
		Selected: selected,
		Ranges:   viewmodel.RangeOptions,
		Status:   status,
		Error:    errMsg,
		Empty:    status == viewmodel.StatusLoaded && len(slices) == 0 && len(months) == 0,
	}

	var catTotal int64
	for _, sl := range slices {
		cents := sl.Total.Cents
		if cents < 0 {
			cents = -cents
		}
		catTotal += cents
	}
	for _, sl := range slices {
		cents := sl.Total.Cents
		if cents < 0 {
			cents = -cents
		}
		pct := 0
		if catTotal > 0 {
			pct = int(cents * 100 / catTotal)
		}
		data.Slices = append(data.Slices, chartSliceData{
			Category: sl.Category,
			Amount:   sl.Total.Dollars(),
			Percent:  pct,
		})
	}

	var maxMonth int64
	for _, m := range months {
		cents := m.Total.Cents
		if cents < 0 {
			cents = -cents
		}
		if cents > maxMonth {
			maxMonth = cents
		}
	}
	for _, m := range months {
		cents := m.Total.Cents
		if cents < 0 {
			cents = -cents
		}
		width := 0
		if maxMonth > 0 && cents > 0 {
			width = int((cents*100 + maxMonth/2) / maxMonth)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Bars = append(data.Bars, chartBarData{
			Label:  m.Label,
			Amount: m.Total.Dollars(),
			Width:  width,
		})
	}

	s.render(w, r, "chart.html", data)
}
