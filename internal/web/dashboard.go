package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/zaloga/internal/aggregate"
	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/chart"
	"github.com/erazemk/zaloga/internal/model"
)

// seriesQuery is the dashboard's chart filter.
type seriesQuery struct {
	Source backend.Source
	Filter aggregate.Filter
	Metric chart.Metric
}

var errBadFilter = errors.New("invalid filter")

// parseSeriesQuery reads the chart filter from the query string. Month and
// year default to the current month.
func (s *Server) parseSeriesQuery(r *http.Request) (seriesQuery, error) {
	q := r.URL.Query()
	now := s.Now()

	source, err := backend.ParseSource(q.Get("source"))
	if err != nil {
		return seriesQuery{}, fmt.Errorf("%w: %w", errBadFilter, err)
	}

	f := aggregate.Filter{
		Month:   int(now.Month()),
		Year:    now.Year(),
		Subject: q.Get("subject"),
	}
	if strings.EqualFold(f.Subject, "ALL") {
		f.Subject = aggregate.All
	}
	if v := q.Get("month"); v != "" {
		if f.Month, err = strconv.Atoi(v); err != nil {
			return seriesQuery{}, fmt.Errorf("%w: month must be a number", errBadFilter)
		}
	}
	if v := q.Get("year"); v != "" {
		if f.Year, err = strconv.Atoi(v); err != nil {
			return seriesQuery{}, fmt.Errorf("%w: year must be a number", errBadFilter)
		}
	}
	if v := q.Get("type"); v != "" && !strings.EqualFold(v, "ALL") {
		kind, ok := model.ParseKind(v)
		if !ok {
			return seriesQuery{}, fmt.Errorf("%w: unknown transaction type", errBadFilter)
		}
		f.Kind = kind
	}
	if err := f.Validate(); err != nil {
		return seriesQuery{}, fmt.Errorf("%w: %w", errBadFilter, err)
	}

	return seriesQuery{Source: source, Filter: f, Metric: chart.ParseMetric(q.Get("metric"))}, nil
}

// values encodes the query back into URL parameters.
func (q seriesQuery) values() url.Values {
	v := url.Values{}
	v.Set("source", string(q.Source))
	v.Set("month", strconv.Itoa(q.Filter.Month))
	v.Set("year", strconv.Itoa(q.Filter.Year))
	if q.Filter.Kind != aggregate.All {
		v.Set("type", string(q.Filter.Kind))
	}
	if q.Filter.Subject != aggregate.All {
		v.Set("subject", q.Filter.Subject)
	}
	v.Set("metric", string(q.Metric))
	return v
}

// series fetches the month and aggregates it per day.
func (s *Server) series(r *http.Request, q seriesQuery) ([]aggregate.Day, error) {
	records, err := s.Backend.MonthRecords(r.Context(), token(r), q.Source, q.Filter.Month, q.Filter.Year)
	if err != nil {
		return nil, err
	}
	return aggregate.Daily(records, q.Filter), nil
}

// subject is an option of the chart's subject picker.
type subject struct {
	ID   string
	Name string
}

type dashboardPage struct {
	PageData

	LowStock []model.Supply
	Counts   aggregate.EquipmentCounts
	Alerts   []aggregate.MaintenanceAlert

	Query         seriesQuery
	Subjects      []subject
	Days          []aggregate.Day
	TotalCount    int
	TotalQuantity float64
	ChartQuery    template.URL
	Months        []int
	Kinds         []model.Kind
}

// Dashboard handles GET /dashboard. Supplies, equipment and the month's
// transactions are fetched concurrently; a failed fetch leaves its section
// empty and shows a notification.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := &dashboardPage{
		PageData: s.page(w, r, "Dashboard"),
		Months:   []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Kinds:    model.Kinds,
	}

	query, queryErr := s.parseSeriesQuery(r)
	if queryErr != nil {
		data.Errors = append(data.Errors, queryErr.Error())
		now := s.Now()
		query = seriesQuery{
			Source: backend.SourceSupply,
			Filter: aggregate.Filter{Month: int(now.Month()), Year: now.Year()},
			Metric: chart.MetricCount,
		}
	}
	data.Query = query

	var (
		supplies                []model.Supply
		equipment               []model.Equipment
		days                    []aggregate.Day
		supplyErr, eqErr, txErr error
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		supplies, supplyErr = s.Backend.ListSupplies(ctx, token(r))
		return nil
	})
	g.Go(func() error {
		equipment, eqErr = s.Backend.ListEquipment(ctx, token(r), "")
		return nil
	})
	g.Go(func() error {
		days, txErr = s.series(r.WithContext(ctx), query)
		return nil
	})
	_ = g.Wait()

	var failures []string
	if supplyErr != nil {
		failures = append(failures, loadError(supplyErr, "supplies"))
	}
	if eqErr != nil {
		failures = append(failures, loadError(eqErr, "equipment"))
	}
	if txErr != nil {
		failures = append(failures, loadError(txErr, "transactions"))
		days = aggregate.Daily(nil, query.Filter)
	}
	if len(failures) > 0 {
		data.Error = failures[0]
		data.Errors = append(data.Errors, failures[1:]...)
	}

	data.LowStock = aggregate.LowStock(supplies)
	data.Counts = aggregate.CountEquipment(equipment)
	data.Alerts = aggregate.MaintenanceAlerts(equipment)

	data.Days = days
	data.TotalCount, data.TotalQuantity = aggregate.Totals(days)
	data.ChartQuery = template.URL(query.values().Encode())

	if query.Source == backend.SourceEquipment {
		for _, eq := range equipment {
			data.Subjects = append(data.Subjects, subject{ID: strconv.FormatInt(eq.ID, 10), Name: eq.Name})
		}
	} else {
		for _, sup := range supplies {
			data.Subjects = append(data.Subjects, subject{ID: strconv.FormatInt(sup.ID, 10), Name: sup.Name})
		}
	}

	s.Templates.Render(w, "dashboard.html", data)
}

// seriesResponse is the JSON form of a daily series.
type seriesResponse struct {
	Source        backend.Source  `json:"source"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Type          string          `json:"type"`
	Subject       string          `json:"subject"`
	Days          []aggregate.Day `json:"days"`
	TotalCount    int             `json:"totalCount"`
	TotalQuantity float64         `json:"totalQuantity"`
}

// DashboardSeries handles GET /dashboard/series.
func (s *Server) DashboardSeries(w http.ResponseWriter, r *http.Request) {
	query, err := s.parseSeriesQuery(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	days, err := s.series(r, query)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, loadError(err, "transactions"))
		return
	}

	resp := seriesResponse{
		Source:  query.Source,
		Month:   query.Filter.Month,
		Year:    query.Filter.Year,
		Type:    orDefault(string(query.Filter.Kind), "ALL"),
		Subject: orDefault(query.Filter.Subject, "ALL"),
		Days:    days,
	}
	resp.TotalCount, resp.TotalQuantity = aggregate.Totals(days)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write series", "error", err)
	}
}

// DashboardChart handles GET /dashboard/chart.png.
func (s *Server) DashboardChart(w http.ResponseWriter, r *http.Request) {
	query, err := s.parseSeriesQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days, err := s.series(r, query)
	if err != nil {
		http.Error(w, loadError(err, "transactions"), http.StatusBadGateway)
		return
	}

	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	height, _ := strconv.Atoi(r.URL.Query().Get("height"))
	title := string(query.Source) + " transactions, " + strconv.Itoa(query.Filter.Year) + "-" + twoDigits(query.Filter.Month)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if err := chart.Render(w, days, chart.Options{Title: title, Metric: query.Metric, Width: width, Height: height}); err != nil {
		slog.Error("failed to render chart", "error", err)
	}
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "message": message})
}
