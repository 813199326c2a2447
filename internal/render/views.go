package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/view"
)

// Banner prints a view's inline message, if any. The error text is shown
// as a sentence.
func Banner(w io.Writer, b view.Banner) error {
	var err error
	switch {
	case b.Error != "":
		_, err = fmt.Fprintf(w, "Error: %s\n", sentence(b.Error))
	case b.Success != "":
		_, err = fmt.Fprintf(w, "%s\n", b.Success)
	}
	return err
}

// sentence upper-cases the first letter of s.
func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ItemTable lists items one per row.
func ItemTable(w io.Writer, items []model.Item) error {
	t := newTable(w)
	writeItems(t, items)
	return t.flush()
}

func writeItems(t *table, items []model.Item) {
	if len(items) == 0 {
		t.line("No items.")
		return
	}
	t.row("ID", "TYPE", "TITLE", "YEAR", "STATUS", "TAGS")
	for _, it := range items {
		t.row(
			strconv.FormatInt(it.ID, 10),
			TypeLabel(it.Type),
			it.Title,
			strconv.Itoa(it.Year),
			Label(string(it.Status)),
			Tags(it.Tags),
		)
	}
}

// Dashboard prints totals, the overdue list and the newest books and DVDs.
func Dashboard(w io.Writer, s view.DashboardSummary) error {
	t := newTable(w)
	t.row("Total items:", strconv.Itoa(s.Total))
	t.row("Books:", strconv.Itoa(s.Books))
	t.row("DVDs:", strconv.Itoa(s.DVDs))
	t.row("Loaned:", strconv.Itoa(s.Loaned))
	t.row("Overdue:", strconv.Itoa(len(s.OverdueLoans)))

	if len(s.OverdueLoans) > 0 {
		t.line("")
		t.line("Overdue loans")
		writeLoans(t, s.OverdueLoans, nil)
	}
	t.line("")
	t.line("Books")
	writeItems(t, s.RecentBooks)
	t.line("")
	t.line("DVDs")
	writeItems(t, s.RecentDVDs)
	return t.flush()
}

// SearchPage prints one page of results with its position.
func SearchPage(w io.Writer, items []model.Item, page int, total int64, size int) error {
	t := newTable(w)
	writeItems(t, items)
	pages := max(1, int((total+int64(size)-1)/int64(size)))
	t.linef("Page %d of %d (%d results)", page+1, pages, total)
	return t.flush()
}

// LoanTitle names the loaned item, falling back to its id.
func LoanTitle(l model.Loan) string {
	if l.ItemTitle != "" {
		return l.ItemTitle
	}
	return fmt.Sprintf("Item #%d", l.ItemID)
}

// Loans lists loans. Loans whose id is in overdue are flagged.
func Loans(w io.Writer, loans []model.Loan, overdue map[int64]bool) error {
	t := newTable(w)
	writeLoans(t, loans, overdue)
	return t.flush()
}

func writeLoans(t *table, loans []model.Loan, overdue map[int64]bool) {
	if len(loans) == 0 {
		t.line("No loans.")
		return
	}
	t.row("LOAN", "ITEM", "BORROWER", "START", "DUE", "STATUS")
	for _, l := range loans {
		status := Label(string(l.Status))
		if overdue[l.ID] {
			status += " (overdue)"
		}
		if l.ReturnedAt != "" {
			status += " " + l.ReturnedAt
		}
		t.row(strconv.FormatInt(l.ID, 10), LoanTitle(l), l.ToWhom, l.StartDate, l.DueDate, status)
	}
}

// ItemDetail prints one item with its loan and progress history. today
// decides whether the loan is overdue.
func ItemDetail(w io.Writer, it *model.Item, loan *model.Loan, history []model.ProgressLog, today string) error {
	t := newTable(w)
	t.linef("%s (%s, %d)", it.Title, TypeLabel(it.Type), it.Year)
	t.row("ID:", strconv.FormatInt(it.ID, 10))
	t.row("Status:", Label(string(model.DeriveStatus(loan))))
	t.row("Condition:", orNone(it.Condition))
	t.row("Location:", orNone(it.Location))
	t.row("Tags:", listOrNone(it.Tags))
	if b := it.BookInfo; b != nil {
		t.row("Authors:", listOrNone(b.Authors))
		t.row("ISBN:", orNone(b.ISBN))
		t.row("Publisher:", orNone(b.Publisher))
		t.row("Pages:", intOrNone(b.Pages))
	}
	if d := it.DvdInfo; d != nil {
		t.row("Director:", orNone(d.Director))
		t.row("Cast:", listOrNone(d.Cast))
		t.row("Runtime:", intOrNone(d.Runtime))
	}
	percent := clampPercent(it.ProgressPercent)
	t.row("Progress:", fmt.Sprintf("%s %d%% (%d/%d)", ProgressBar(percent, 20), percent, it.ProgressValue, it.TotalValue))
	if loan != nil {
		desc := fmt.Sprintf("to %s, %s -> %s", loan.ToWhom, loan.StartDate, loan.DueDate)
		if loan.IsOverdue(today) {
			desc += " (overdue)"
		}
		t.row("Loan:", desc)
	} else {
		t.row("Loan:", None)
	}

	t.line("")
	t.line("Progress history")
	if len(history) == 0 {
		t.line("No progress logged.")
	} else {
		t.row("ID", "DATE", "VALUE", "PERCENT", "MINUTES", "READER")
		for _, p := range history {
			reader := p.ReaderName
			if reader == "" {
				reader = "Reader unknown"
			}
			t.row(
				strconv.FormatInt(p.ID, 10),
				p.Date,
				strconv.Itoa(p.PageOrMinute),
				strconv.Itoa(clampPercent(p.Percent))+"%",
				intOrNone(p.DurationMinutes),
				reader,
			)
		}
	}

	if len(it.ExternalLinks) > 0 {
		t.line("")
		t.line("External links")
		t.row("PROVIDER", "ID", "RATING", "SYNCED", "URL")
		for _, l := range it.ExternalLinks {
			rating := None
			if l.Rating != nil {
				rating = strconv.FormatFloat(*l.Rating, 'f', 1, 64)
			}
			t.row(model.ProviderLabel(l.Provider), orNone(l.ExternalID), rating, timestamp(l.LastSyncAt), orNone(l.URL))
		}
	}
	return t.flush()
}

// Trash lists soft-deleted items.
func Trash(w io.Writer, items []model.Item) error {
	t := newTable(w)
	if len(items) == 0 {
		t.line("Trash is empty.")
		return t.flush()
	}
	t.row("ID", "TYPE", "TITLE", "DELETED")
	for _, it := range items {
		t.row(strconv.FormatInt(it.ID, 10), TypeLabel(it.Type), it.Title, timestamp(it.DeletedAt))
	}
	return t.flush()
}

// Lists prints every list with its size.
func Lists(w io.Writer, lists []model.MediaList) error {
	t := newTable(w)
	if len(lists) == 0 {
		t.line("No lists.")
		return t.flush()
	}
	t.row("ID", "NAME", "ITEMS")
	for _, l := range lists {
		t.row(strconv.FormatInt(l.ID, 10), l.Name, strconv.Itoa(len(l.Items)))
	}
	return t.flush()
}

// List prints one list's entries in order. meta resolves entries against
// the catalog; entries it cannot resolve are shown as trashed.
func List(w io.Writer, l *model.MediaList, meta func(int64) (model.Item, bool)) error {
	t := newTable(w)
	t.linef("%s (%d items)", l.Name, len(l.Items))
	if len(l.Items) == 0 {
		return t.flush()
	}
	t.row("#", "ID", "TITLE", "TYPE", "YEAR", "STATUS")
	for i, e := range l.Items {
		it, ok := meta(e.ItemID)
		title := orNone(e.Title)
		typ, year, status := None, None, "In trash"
		if ok {
			title = it.Title
			typ, year, status = TypeLabel(it.Type), strconv.Itoa(it.Year), Label(string(it.Status))
		}
		t.row(strconv.Itoa(i), strconv.FormatInt(e.ItemID, 10), title, typ, year, status)
	}
	return t.flush()
}

// Candidates numbers the lookup candidates for picking.
func Candidates(w io.Writer, isbn string, cands []model.ExternalCandidate) error {
	t := newTable(w)
	if len(cands) == 0 {
		t.linef("No matches for ISBN %s.", isbn)
		return t.flush()
	}
	t.row("#", "PROVIDER", "TITLE", "AUTHORS", "YEAR", "PAGES")
	for i, c := range cands {
		t.row(strconv.Itoa(i), model.ProviderLabel(c.Provider), c.Title, listOrNone(c.Authors), intOrNone(c.Year), intOrNone(c.PageCount))
	}
	return t.flush()
}

// Diffs prints refreshed metadata differences with their selection.
func Diffs(w io.Writer, diffs []model.DiffField, selected func(string) bool) error {
	t := newTable(w)
	if len(diffs) == 0 {
		t.line("Metadata is up to date.")
		return t.flush()
	}
	for _, d := range diffs {
		mark := "[ ]"
		if selected(d.Field) {
			mark = "[x]"
		}
		t.row(mark, d.Field+":", orNone(d.CurrentValue), "->", orNone(d.NewValue))
	}
	return t.flush()
}

// ImportSummary prints import counts followed by row errors.
func ImportSummary(w io.Writer, s *model.ImportSummary) error {
	t := newTable(w)
	t.row("Added:", strconv.Itoa(s.Added))
	t.row("Updated:", strconv.Itoa(s.Updated))
	t.row("Skipped:", strconv.Itoa(s.Skipped))
	if len(s.Errors) > 0 {
		t.line("Errors:")
		for _, e := range s.Errors {
			t.line("  " + e)
		}
	}
	return t.flush()
}

// Settings prints the sync indicator. A nil status renders as unknown.
func Settings(w io.Writer, st *model.SyncStatus, note string) error {
	t := newTable(w)
	enabled := "Disabled"
	lastStatus, lastSync := "unknown", "never"
	if st != nil {
		if st.Enabled {
			enabled = "Enabled"
		}
		if st.LastStatus != "" {
			lastStatus = st.LastStatus
		}
		if st.LastSyncAt != nil {
			lastSync = timestamp(st.LastSyncAt)
		}
	}
	t.row("Sync:", enabled)
	t.row("Status:", lastStatus)
	t.row("Last Sync:", lastSync)
	t.row("Conflicts:", strconv.Itoa(st.ConflictCount()))
	if note != "" {
		t.line(note)
	}
	return t.flush()
}

// User prints the signed-in profile.
func User(w io.Writer, u *model.User) error {
	t := newTable(w)
	name := u.DisplayName
	if strings.TrimSpace(name) == "" {
		name = u.Email
	}
	t.row("Signed in as:", name)
	t.row("Email:", u.Email)
	t.row("Member since:", u.CreatedAt.UTC().Format(model.DateLayout))
	return t.flush()
}
