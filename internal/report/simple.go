package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to list are shown.
	showEmpty bool

	// verbose lists collisions in addition to problems.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCrawl(&sb, summary)
	w.writeProblems(&sb, summary)
	w.writeDatabase(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        GUIDECRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Generated:      %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if s.HasRun() {
		fmt.Fprintf(sb, "Run:            %s\n", s.RunID)
		fmt.Fprintf(sb, "Seed:           %s\n", s.SeedURL)
		fmt.Fprintf(sb, "Steps:          %s\n", strings.Join(s.Steps, ", "))
		fmt.Fprintf(sb, "Duration:       %s\n", s.Duration.Round(time.Millisecond))

		switch s.Status {
		case StatusCanceled:
			sb.WriteString("Status:         CANCELED (partial results)\n")
		case StatusError:
			fmt.Fprintf(sb, "Status:         ERROR - %s\n", s.Error)
		default:
			sb.WriteString("Status:         Complete\n")
		}
	}
	if s.DatabasePath != "" {
		fmt.Fprintf(sb, "Database:       %s\n", s.DatabasePath)
	}
	sb.WriteString("\n")
}

// writeCrawl writes crawl and load counters.
func (w *SimpleWriter) writeCrawl(sb *strings.Builder, s *Summary) {
	if s.Crawl == nil && s.Load == nil {
		return
	}

	section(sb, "RUN SUMMARY")

	if c := s.Crawl; c != nil {
		fmt.Fprintf(sb, "  Pages:        %d\n", c.Pages)
		fmt.Fprintf(sb, "  Listings:     %d\n", c.Listings)
		fmt.Fprintf(sb, "  Enriched:     %d\n", c.Enriched)
		fmt.Fprintf(sb, "  Restaurants:  %d\n", c.Restaurants)
		fmt.Fprintf(sb, "  Collisions:   %d\n", len(c.Collisions))
	}
	if l := s.Load; l != nil {
		fmt.Fprintf(sb, "  Loaded:       %d\n", l.Restaurants)
		fmt.Fprintf(sb, "  Duplicates:   %d\n", len(l.Duplicates))
	}
	sb.WriteString("\n")
}

// writeProblems lists rejected records, unreachable pages and duplicates.
func (w *SimpleWriter) writeProblems(sb *strings.Builder, s *Summary) {
	if s.Problems() == 0 && !(w.verbose && s.Crawl != nil && len(s.Crawl.Collisions) > 0) {
		if w.showEmpty && s.HasRun() {
			section(sb, "PROBLEMS")
			sb.WriteString("  None\n\n")
		}
		return
	}

	section(sb, "PROBLEMS")

	if c := s.Crawl; c != nil {
		for _, r := range c.Rejected {
			fmt.Fprintf(sb, "  [rejected] %s (%s): %s\n", r.Record, r.Field, r.Reason)
			if w.verbose {
				fmt.Fprintf(sb, "      page: %s\n", r.Page)
			}
		}
		for _, u := range c.Unreachable {
			if u.StatusCode != 0 {
				fmt.Fprintf(sb, "  [unreachable] %s (HTTP %d)\n", u.URL, u.StatusCode)
			} else {
				fmt.Fprintf(sb, "  [unreachable] %s: %s\n", u.URL, u.Reason)
			}
		}
		if w.verbose {
			for _, col := range c.Collisions {
				fmt.Fprintf(sb, "  [collision] %s -> %s (%s)\n", col.Name, col.Key, col.Outcome)
			}
		}
	}
	if s.Load != nil {
		for _, d := range s.Load.Duplicates {
			fmt.Fprintf(sb, "  [duplicate] %s: %s %q already loaded\n", d.Name, d.Column, d.Value)
		}
	}
	sb.WriteString("\n")
}

// writeDatabase writes table counts and the per-city and per-cuisine tallies.
func (w *SimpleWriter) writeDatabase(sb *strings.Builder, s *Summary) {
	if s.Counts == nil {
		return
	}

	section(sb, "DATABASE")

	fmt.Fprintf(sb, "  City:         %d\n", s.Counts.Cities)
	fmt.Fprintf(sb, "  Cost:         %d\n", s.Counts.Costs)
	fmt.Fprintf(sb, "  Cuisine:      %d\n", s.Counts.Cuisines)
	fmt.Fprintf(sb, "  Restaurant:   %d\n", s.Counts.Restaurants)
	sb.WriteString("\n")

	if len(s.Cities) > 0 || w.showEmpty {
		sb.WriteString("By city:\n")
		for _, gc := range s.Cities {
			fmt.Fprintf(sb, "  %-40s %4d\n", gc.Value, gc.Count)
		}
		sb.WriteString("\n")
	}
	if len(s.Cuisines) > 0 || w.showEmpty {
		sb.WriteString("By cuisine:\n")
		for _, gc := range s.Cuisines {
			fmt.Fprintf(sb, "  %-40s %4d\n", gc.Value, gc.Count)
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by guidecrawl\n")
	sb.WriteString("https://github.com/nao1215/guidecrawl\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
