package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/plms/internal/model"
)

// None is printed for absent values.
const None = "-"

// MaxTags is how many tags an item row shows.
const MaxTags = 3

// Label humanises an enum value: "AVAILABLE" becomes "Available" and
// "OPEN_LIBRARY" becomes "Open Library".
func Label(s string) string {
	if s == "" {
		return None
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(s), "_", " "))
}

// TypeLabel names a media type. DVD stays upper case.
func TypeLabel(t model.MediaType) string {
	if t == model.MediaDVD {
		return "DVD"
	}
	return Label(string(t))
}

// ProgressBar draws percent as a bar of width cells, e.g. "[#####-----]".
func ProgressBar(percent, width int) string {
	percent = clampPercent(percent)
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func clampPercent(p int) int {
	return max(0, min(100, p))
}

// Tags joins up to MaxTags tags, noting how many were left out.
func Tags(tags []string) string {
	if len(tags) == 0 {
		return None
	}
	if len(tags) <= MaxTags {
		return strings.Join(tags, ", ")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(tags[:MaxTags], ", "), len(tags)-MaxTags)
}

func orNone(s string) string {
	if s == "" {
		return None
	}
	return s
}

func intOrNone(p *int) string {
	if p == nil {
		return None
	}
	return strconv.Itoa(*p)
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return None
	}
	return strings.Join(values, ", ")
}

func timestamp(t *time.Time) string {
	if t == nil {
		return None
	}
	return t.UTC().Format(time.RFC3339)
}

// table is a tabwriter that remembers the first write error.
type table struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(w io.Writer) *table {
	return &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// row writes cells separated by tabs.
func (t *table) row(cells ...string) {
	t.line(strings.Join(cells, "\t"))
}

// line writes one raw line.
func (t *table) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = io.WriteString(t.tw, s+"\n")
}

func (t *table) linef(format string, args ...any) {
	t.line(fmt.Sprintf(format, args...))
}

func (t *table) flush() error {
	if t.err != nil {
		return t.err
	}
	return t.tw.Flush()
}
