package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/odysseus0/aidigest/internal/fetch"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	skipMark = color.New(color.FgYellow).Sprint("-")
)

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(out io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func renderTable(out io.Writer, header []string, rows [][]string) error {
	t := newTable(out)
	t.Header(header)
	if err := t.Bulk(rows); err != nil {
		return err
	}
	return t.Render()
}

func writeRunReportTable(out io.Writer, rep RunReport) error {
	rows := make([][]string, 0, len(rep.Feeds))
	for _, f := range rep.Feeds {
		mark := okMark
		if f.Failed() {
			mark = failMark
		} else if f.Kept == 0 {
			mark = skipMark
		}
		rows = append(rows, []string{
			mark,
			compactText(f.Name, 30),
			strconv.Itoa(f.Attempts),
			strconv.Itoa(f.Fetched),
			strconv.Itoa(f.Promotional),
			strconv.Itoa(f.Kept),
			compactText(f.Error, 70),
		})
	}
	if err := renderTable(out, []string{"", "feed", "attempts", "recent", "promo", "kept", "error"}, rows); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, d := range rep.Deliveries {
		mark := okMark
		switch {
		case d.Skipped:
			mark = skipMark
		case d.Error != "":
			mark = failMark
		}
		line := fmt.Sprintf("%s %s: %s", mark, d.Channel, d.Status)
		if d.Sent > 0 && !d.Skipped {
			line += fmt.Sprintf(" (%d)", d.Sent)
		}
		if d.Error != "" {
			line += " - " + d.Error
		}
		fmt.Fprintln(out, line)
	}
	for _, w := range rep.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	fmt.Fprintf(out, "run %s finished in %s\n", rep.RunID, formatDuration(rep.EndedAt.Sub(rep.StartedAt)))
	return nil
}

func writeSourcesTable(out io.Writer, sources []FeedSource) error {
	rows := make([][]string, 0, len(sources))
	for i, s := range sources {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Name, s.URL})
	}
	return renderTable(out, []string{"#", "name", "url"}, rows)
}

func writeCheckTable(out io.Writer, results []fetch.CheckResult) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		mark := okMark
		if r.Error != "" {
			mark = failMark
		}
		rows = append(rows, []string{
			mark,
			compactText(r.Name, 30),
			compactText(fallback(r.Title, "-"), 30),
			strconv.Itoa(r.Items),
			strconv.Itoa(r.Recent),
			compactText(fallback(r.Error, r.FeedURL), 70),
		})
	}
	return renderTable(out, []string{"", "source", "title", "items", "recent", "feed / error"}, rows)
}

type dryRunOutput struct {
	Report RunReport   `json:"report"`
	Email  dryRunEmail `json:"email"`
	Chat   []string    `json:"chat"`
}

type dryRunEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func writeDryRunText(out io.Writer, d dryRunOutput) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "Subject: "+d.Email.Subject)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, d.Email.Body)
	for i, m := range d.Chat {
		fmt.Fprintln(out, rule)
		fmt.Fprintf(out, "chat message %d/%d\n", i+1, len(d.Chat))
		fmt.Fprintln(out, rule)
		fmt.Fprintln(out, m)
	}
}
