package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/zaloga/internal/aggregate"
	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/chart"
	"github.com/erazemk/zaloga/internal/model"
)

// selection is the chart filter of the terminal client.
type selection struct {
	source backend.Source
	filter aggregate.Filter
}

func currentMonth(now time.Time) selection {
	return selection{
		source: backend.SourceSupply,
		filter: aggregate.Filter{Month: int(now.Month()), Year: now.Year()},
	}
}

// set changes one field of the selection.
func (s selection) set(key, value string) (selection, error) {
	var err error
	switch key {
	case "source":
		if s.source, err = backend.ParseSource(value); err != nil {
			return s, err
		}
	case "month":
		if s.filter.Month, err = strconv.Atoi(value); err != nil {
			return s, errors.New("month must be a number")
		}
	case "year":
		if s.filter.Year, err = strconv.Atoi(value); err != nil {
			return s, errors.New("year must be a number")
		}
	case "type":
		if value == "" || strings.EqualFold(value, "ALL") {
			s.filter.Kind = aggregate.All
			break
		}
		kind, ok := model.ParseKind(value)
		if !ok {
			return s, fmt.Errorf("unknown transaction type %q", value)
		}
		s.filter.Kind = kind
	case "subject":
		if strings.EqualFold(value, "ALL") {
			value = aggregate.All
		}
		s.filter.Subject = value
	default:
		return s, fmt.Errorf("unknown filter %q", key)
	}
	return s, nil
}

// apply reads "key=value" changes from line and validates the result.
func (s selection) apply(line string) (selection, error) {
	for _, field := range strings.Fields(line) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return s, fmt.Errorf("expected key=value, got %q", field)
		}
		var err error
		if s, err = s.set(strings.ToLower(key), value); err != nil {
			return s, err
		}
	}
	return s, s.filter.Validate()
}

func (s selection) String() string {
	kind, subject := string(s.filter.Kind), s.filter.Subject
	if kind == aggregate.All {
		kind = "ALL"
	}
	if subject == aggregate.All {
		subject = "ALL"
	}
	return fmt.Sprintf("%s transactions %04d-%02d, type %s, subject %s",
		s.source, s.filter.Year, s.filter.Month, kind, subject)
}

func printSeries(w io.Writer, s selection, days []aggregate.Day) {
	fmt.Fprintln(w, s)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tCOUNT\tQUANTITY")
	for _, d := range days {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", d.Day, d.Count, strconv.FormatFloat(d.Quantity, 'f', -1, 64))
	}
	tw.Flush()
	count, quantity := aggregate.Totals(days)
	fmt.Fprintf(w, "Total: %d transactions, quantity %s\n", count, strconv.FormatFloat(quantity, 'f', -1, 64))
}

// seriesFlags maps series flag names, short aliases included, to filter
// keys.
var seriesFlags = map[string]string{
	"source":  "source",
	"month":   "month",
	"m":       "month",
	"year":    "year",
	"y":       "year",
	"type":    "type",
	"t":       "type",
	"subject": "subject",
}

func cmdSeries(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("series", flag.ContinueOnError)
	for name := range seriesFlags {
		fs.String(name, "", "")
	}
	var pngPath string
	fs.StringVar(&pngPath, "png", "", "")

	closeLog, err := e.parse(fs, args, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeLog()

	sel := currentMonth(e.now())
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		key, ok := seriesFlags[f.Name]
		if !ok || flagErr != nil {
			return
		}
		sel, flagErr = sel.set(key, f.Value.String())
	})
	if flagErr == nil {
		flagErr = sel.filter.Validate()
	}
	if flagErr != nil {
		return fmt.Errorf("invalid filter: %w", flagErr)
	}

	sess, closeState, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer closeState()
	if err := requireLogin(sess); err != nil {
		return err
	}

	records, err := e.backend().MonthRecords(ctx, sess.Credential(), sel.source, sel.filter.Month, sel.filter.Year)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %s", backend.Message(err, err.Error()))
	}
	days := aggregate.Daily(records, sel.filter)
	printSeries(e.stdout, sel, days)

	if pngPath != "" {
		if err := writeChart(pngPath, sel, days); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Chart written to %s\n", pngPath)
	}
	return nil
}

func writeChart(path string, s selection, days []aggregate.Day) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	if err := chart.Render(f, days, chart.Options{Title: s.String()}); err != nil {
		f.Close()
		return fmt.Errorf("rendering chart: %w", err)
	}
	return f.Close()
}

// cmdWatch reads filter changes from stdin. Every accepted change starts a
// fetch right away; a series is printed only if no newer change was made
// while it was loading.
func cmdWatch(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	closeLog, err := e.parse(fs, args, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, closeState, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer closeState()
	if err := requireLogin(sess); err != nil {
		return err
	}

	client := e.backend()
	credential := sess.Credential()
	w := &watcher{
		out: e.stdout,
		fetch: func(ctx context.Context, s selection) ([]aggregate.Day, error) {
			records, err := client.MonthRecords(ctx, credential, s.source, s.filter.Month, s.filter.Year)
			if err != nil {
				return nil, err
			}
			return aggregate.Daily(records, s.filter), nil
		},
	}

	w.printf("Enter filter changes as key=value (source, month, year, type, subject).\n")
	sel := currentMonth(e.now())
	w.show(ctx, sel)

	scanner := bufio.NewScanner(e.stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		next, err := sel.apply(line)
		if err != nil {
			w.printf("Invalid filter: %v\n", err)
			continue
		}
		sel = next
		w.show(ctx, sel)
	}

	w.wait()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading filters: %w", err)
	}
	return nil
}

// seriesResult is the outcome of one fetch, failed or not.
type seriesResult struct {
	days []aggregate.Day
	err  error
}

// watcher fetches selections concurrently and prints only the outcome of
// the newest one.
type watcher struct {
	out   io.Writer
	fetch func(ctx context.Context, s selection) ([]aggregate.Day, error)

	mu     sync.Mutex
	latest aggregate.Latest[seriesResult]
	g      errgroup.Group
}

func (w *watcher) printf(format string, a ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, a...)
}

func (w *watcher) show(ctx context.Context, s selection) {
	ticket := w.latest.Issue()
	w.g.Go(func() error {
		days, err := w.fetch(ctx, s)

		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.latest.Offer(ticket, seriesResult{days: days, err: err}) {
			return nil
		}
		if err != nil {
			slog.Warn("failed to load transactions", "selection", s.String(), "error", err)
			fmt.Fprintf(w.out, "Failed to load transactions: %s\n", backend.Message(err, err.Error()))
			return nil
		}
		printSeries(w.out, s, days)
		return nil
	})
}

func (w *watcher) wait() {
	_ = w.g.Wait()
}
