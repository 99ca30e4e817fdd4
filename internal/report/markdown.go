package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeRun(md, summary)
	w.writeProblems(md, summary)
	w.writeDatabase(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("guidecrawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Generated", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if s.HasRun() {
		rows = append(rows,
			[]string{"Run", "`" + s.RunID + "`"},
			[]string{"Seed", s.SeedURL},
			[]string{"Duration", s.Duration.Round(time.Millisecond).String()},
			[]string{"Status", w.statusText(s)},
		)
	}
	if s.DatabasePath != "" {
		rows = append(rows, []string{"Database", "`" + s.DatabasePath + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(s *Summary) string {
	switch s.Status {
	case StatusCanceled:
		return "⚠️ Canceled (partial results)"
	case StatusError:
		return "❌ Error - " + s.Error
	default:
		return "✅ Complete"
	}
}

// writeRun writes the crawl and load counters.
func (w *MarkdownWriter) writeRun(md *markdown.Markdown, s *Summary) {
	if s.Crawl == nil && s.Load == nil {
		return
	}

	md.H2("Run Summary")
	md.PlainText("")

	var rows [][]string
	if c := s.Crawl; c != nil {
		rows = append(rows,
			[]string{"Listing pages", strconv.Itoa(c.Pages)},
			[]string{"Listings", strconv.Itoa(c.Listings)},
			[]string{"Enriched", strconv.Itoa(c.Enriched)},
			[]string{"Restaurants", strconv.Itoa(c.Restaurants)},
			[]string{"Name collisions", strconv.Itoa(len(c.Collisions))},
		)
	}
	if l := s.Load; l != nil {
		rows = append(rows,
			[]string{"Loaded", strconv.Itoa(l.Restaurants)},
			[]string{"Duplicates", strconv.Itoa(len(l.Duplicates))},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case s.Status == StatusError:
		md.Cautionf("The run failed: %s", s.Error)
	case s.Problems() > 0:
		md.Warningf("%d record(s) or page(s) need attention. See Problems below.", s.Problems())
	default:
		md.Tip("Every listing was extracted and loaded.")
	}
	md.PlainText("")
}

// writeProblems writes the rejected, unreachable and duplicate tables.
func (w *MarkdownWriter) writeProblems(md *markdown.Markdown, s *Summary) {
	if s.Problems() == 0 {
		return
	}

	md.H2("Problems")
	md.PlainText("")

	if c := s.Crawl; c != nil && len(c.Rejected) > 0 {
		md.H3("Rejected records")
		md.PlainText("")
		rows := make([][]string, len(c.Rejected))
		for i, r := range c.Rejected {
			rows[i] = []string{r.Record, r.Field, truncateString(r.Reason, 60), r.Page}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Record", "Field", "Reason", "Page"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if c := s.Crawl; c != nil && len(c.Unreachable) > 0 {
		md.H3("Unreachable pages")
		md.PlainText("")
		rows := make([][]string, len(c.Unreachable))
		for i, u := range c.Unreachable {
			status := "-"
			if u.StatusCode != 0 {
				status = strconv.Itoa(u.StatusCode)
			}
			rows[i] = []string{u.URL, status, truncateString(u.Reason, 60)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Status", "Reason"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if s.Load != nil && len(s.Load.Duplicates) > 0 {
		md.H3("Duplicates")
		md.PlainText("")
		rows := make([][]string, len(s.Load.Duplicates))
		for i, d := range s.Load.Duplicates {
			rows[i] = []string{d.Name, d.Column, d.Value}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Column", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeDatabase writes the table counts and per-city and per-cuisine tables.
func (w *MarkdownWriter) writeDatabase(md *markdown.Markdown, s *Summary) {
	if s.Counts == nil {
		return
	}

	md.H2("Database")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Table", "Rows"},
		Rows: [][]string{
			{"City", strconv.Itoa(s.Counts.Cities)},
			{"Cost", strconv.Itoa(s.Counts.Costs)},
			{"Cuisine", strconv.Itoa(s.Counts.Cuisines)},
			{"Restaurant", strconv.Itoa(s.Counts.Restaurants)},
		},
	})
	md.PlainText("")

	if len(s.Cities) > 0 {
		md.H3("Restaurants by city")
		md.PlainText("")
		md.Table(groupTable("City", s.Cities))
		md.PlainText("")
	}

	if len(s.Cuisines) > 0 {
		md.H3("Restaurants by cuisine")
		md.PlainText("")
		md.Table(groupTable("Cuisine", s.Cuisines))
		md.PlainText("")
		w.writePieChart(md, s)
	}
}

// writePieChart writes a mermaid pie chart of the cuisine distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Cuisine Distribution"),
		piechart.WithShowData(true),
	)

	for _, gc := range s.Cuisines {
		if gc.Count > 0 {
			chart.LabelAndIntValue(gc.Value, uint64(gc.Count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [guidecrawl](https://github.com/nao1215/guidecrawl)*")
}
