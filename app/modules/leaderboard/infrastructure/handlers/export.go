package leaderboardhandlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleExport streams the requested top-N as a spreadsheet.
func (h *LeaderboardHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	rows, q, ok := h.top(w, r)
	if !ok {
		return
	}

	data, err := BuildWorkbook(rows)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build leaderboard workbook", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, "Failed to export leaderboard")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName(q, h.clock.NowUTC())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleChart renders the requested top-N as a PNG bar chart.
func (h *LeaderboardHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	rows, q, ok := h.top(w, r)
	if !ok {
		return
	}

	data, err := RenderChart(rows, chartTitle(q))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render leaderboard chart", slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, "Failed to render leaderboard")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func exportName(q topQuery, now time.Time) string {
	if q.scope == leaderboarddomain.ScopeWeekly {
		week := q.week
		if week.IsZero() {
			week = leaderboarddomain.WeekOf(now)
		}
		return fmt.Sprintf("leaderboard-weekly-%s.xlsx", week.Format(time.DateOnly))
	}
	return "leaderboard-global.xlsx"
}

func chartTitle(q topQuery) string {
	if q.scope == leaderboarddomain.ScopeWeekly {
		return "Weekly Top Scores"
	}
	return "All-Time Top Scores"
}

// BuildWorkbook writes rows to a single-sheet workbook.
func BuildWorkbook(rows []Row) ([]byte, error) {
	const sheet = "Leaderboard"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	header := []any{"Rank", "Username", "Score", "Opti Earned", "Game Date"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{row.Rank, row.Username, row.Score, row.OptiEarned, row.GameDate.Format(time.RFC3339)}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	chartBackground = drawing.ColorFromHex("101820")
	chartBar        = drawing.ColorFromHex("F2AA4C")
	chartText       = drawing.ColorFromHex("F5F5F5")
)

// RenderChart draws one bar per row. An empty board renders a placeholder.
func RenderChart(rows []Row, title string) ([]byte, error) {
	if len(rows) == 0 {
		return renderNoDataPlaceholder()
	}

	top := 1.0
	bars := make([]chart.Value, len(rows))
	for i, row := range rows {
		top = max(top, float64(row.Score))
		bars[i] = chart.Value{
			Label: fmt.Sprintf("#%d %s", row.Rank, row.Username),
			Value: float64(row.Score),
			Style: chart.Style{FillColor: chartBar, StrokeColor: chartBar},
		}
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      max(400, 90*len(rows)),
		Height:     400,
		BarWidth:   50,
		Background: chart.Style{FillColor: chartBackground, Padding: chart.Box{Top: 40}},
		Canvas:     chart.Style{FillColor: chartBackground},
		XAxis:      chart.Style{FontColor: chartText},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}

	buf := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderNoDataPlaceholder() ([]byte, error) {
	const msg = "No scores yet"

	// Chart refuses to render without a series, so draw an invisible one.
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: chartBackground},
		Canvas:     chart.Style{FillColor: chartBackground},
		XAxis:      chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis:      chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{Hidden: true},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}

	buf := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
