// Package report renders a summary.Summary as a console listing, an HTML page
// of thumbnails and machine readable JSON.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/klauspost/compress/gzip"
	"github.com/olekukonko/tablewriter"

	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/util"
	"go.skia.org/imgdiff/imgdiff/go/summary"
	"go.skia.org/imgdiff/imgdiff/go/types"
)

// TextOptions controls WriteText.
type TextOptions struct {
	// Verbose adds a listing of every item that is not equal, grouped by
	// state.
	Verbose bool
	// Color uses terminal colors for state names.
	Color bool
	// ArtifactPath maps an artifact key to the path printed for it. If nil
	// the key itself is printed.
	ArtifactPath func(key string) string
}

func (o TextOptions) artifact(key string) string {
	if key == "" || o.ArtifactPath == nil {
		return key
	}
	return o.ArtifactPath(key)
}

// errWriter remembers the first error from the underlying writer so callers
// that ignore write errors, such as tablewriter, can still report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func stateColor(state types.State, enabled bool) *color.Color {
	var c *color.Color
	switch state {
	case types.ByteEqual, types.PixelEqual:
		c = color.New(color.FgGreen)
	case types.Missing:
		c = color.New(color.FgYellow)
	case types.Incomparable:
		c = color.New(color.FgMagenta)
	default:
		c = color.New(color.FgRed, color.Bold)
	}
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// formatPercent matches the diff column of the HTML report.
func formatPercent(item *types.WorkItem) string {
	return fmt.Sprintf("%5.2f%%", item.PixelDiffPercent())
}

// WriteText writes one row per differing pair, most severe first, with the
// paths of its mask and delta images, followed by
// a count per state. With opts.Verbose every pair that is not equal is then
// listed under its state together with its number of differing pixels.
func WriteText(w io.Writer, s *summary.Summary, opts TextOptions) error {
	ew := &errWriter{w: w}

	if diffs := s.Diffs(); len(diffs) > 0 {
		table := tablewriter.NewWriter(ew)
		table.SetHeader([]string{"Diff", "Max", "Good", "Bad", "Mask", "Delta"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		for i := range diffs {
			table.Append([]string{
				formatPercent(&diffs[i]),
				fmt.Sprintf("%d", diffs[i].MaxChannelDelta),
				diffs[i].GoodPath,
				diffs[i].BadPath,
				opts.artifact(diffs[i].MaskKey),
				opts.artifact(diffs[i].DiffKey),
			})
		}
		table.Render()
	}

	counts := tablewriter.NewWriter(ew)
	counts.SetHeader([]string{"State", "Count"})
	counts.SetBorder(false)
	for _, state := range types.AllStates {
		counts.Append([]string{
			stateColor(state, opts.Color).Sprint(state.String()),
			humanize.Comma(int64(s.Count(state))),
		})
	}
	counts.SetFooter([]string{"Total", humanize.Comma(int64(s.Total))})
	counts.Render()

	if opts.Verbose {
		for _, state := range types.AllStates {
			if state == types.ByteEqual || state == types.PixelEqual || s.Count(state) == 0 {
				continue
			}
			fmt.Fprintf(ew, "%s:\n", stateColor(state, opts.Color).Sprint(state.String()))
			for _, item := range s.Items(state) {
				fmt.Fprintf(ew, "\t%s\t%s\n", humanize.Comma(int64(item.NumDiffPixels)), item.GoodPath)
			}
		}
	}
	return skerr.Wrap(ew.err)
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>imgdiff</title>
<style>
body {
  background-size: 16px 16px;
  background-color: rgb(230,230,230);
  background-image: linear-gradient(45deg, rgba(255,255,255,.2) 25%, transparent 25%, transparent 50%,
    rgba(255,255,255,.2) 50%, rgba(255,255,255,.2) 75%, transparent 75%, transparent);
}
table { table-layout: fixed; width: 100%; }
img { max-width: 100%; max-height: 320px; }
</style>
</head>
<body>
<table>
{{- range .}}
<tr><th>{{.Percent}}</th><th>{{.MaxDelta}}</th><th>{{.Good}}</th><th>{{.Bad}}</th></tr>
<tr>
{{- range .Images}}
<td>{{if .}}<a href="{{.}}"><img src="{{.}}"></a>{{end}}</td>
{{- end}}
</tr>
{{- end}}
</table>
</body>
</html>
`

var pageTemplate = template.Must(template.New("ugly").Parse(htmlTemplate))

// htmlRow is one differing pair on the HTML page.
type htmlRow struct {
	Percent  string
	MaxDelta uint8
	Good     string
	Bad      string
	// Images are the mask, delta, good and bad images, in that order. An
	// empty entry leaves its cell blank.
	Images [4]string
}

// WriteHTML writes a page with two rows per differing pair: a header with the
// share of differing pixels, the largest channel delta and both paths, then
// links to the mask, the delta image and the two inputs. artifactPath maps an
// artifact key to the location the page should link to.
func WriteHTML(w io.Writer, s *summary.Summary, artifactPath func(key string) string) error {
	diffs := s.Diffs()
	rows := make([]htmlRow, 0, len(diffs))
	for i := range diffs {
		item := &diffs[i]
		row := htmlRow{
			Percent:  formatPercent(item),
			MaxDelta: item.MaxChannelDelta,
			Good:     item.GoodPath,
			Bad:      item.BadPath,
		}
		if item.MaskKey != "" {
			row.Images[0] = artifactPath(item.MaskKey)
		}
		if item.DiffKey != "" {
			row.Images[1] = artifactPath(item.DiffKey)
		}
		row.Images[2] = item.GoodPath
		row.Images[3] = item.BadPath
		rows = append(rows, row)
	}
	if err := pageTemplate.Execute(w, rows); err != nil {
		return skerr.Wrapf(err, "rendering HTML report")
	}
	return nil
}

// JSONReport is the document written by WriteJSON.
type JSONReport struct {
	Total  int              `json:"total"`
	Counts map[string]int   `json:"counts"`
	Items  []types.WorkItem `json:"items"`
}

// WriteJSON writes every item, grouped by state in report order, together with
// the count of each state.
func WriteJSON(w io.Writer, s *summary.Summary) error {
	doc := JSONReport{
		Total:  s.Total,
		Counts: make(map[string]int, len(types.AllStates)),
		Items:  make([]types.WorkItem, 0, s.Total),
	}
	for _, state := range types.AllStates {
		doc.Counts[state.String()] = s.Count(state)
		doc.Items = append(doc.Items, s.Items(state)...)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return skerr.Wrapf(err, "encoding JSON report")
	}
	return nil
}

// WriteFile atomically replaces path with what fn writes. If path ends in
// ".gz" the output is gzip compressed.
func WriteFile(path string, fn func(io.Writer) error) error {
	return util.WithWriteFile(path, func(w io.Writer) error {
		if !strings.HasSuffix(path, ".gz") {
			return fn(w)
		}
		gz := gzip.NewWriter(w)
		if err := fn(gz); err != nil {
			return err
		}
		return skerr.Wrap(gz.Close())
	})
}
