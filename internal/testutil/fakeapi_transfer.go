package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/roach88/plms/internal/model"
)

// exportDocument is the JSON export body.
type exportDocument struct {
	Items []model.Item `json:"items"`
}

var csvHeader = []string{
	"id", "type", "title", "year", "condition", "location", "tags",
	"isbn", "pages", "publisher", "authors", "runtime", "director", "cast",
}

func optionalInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func itemRecord(it model.Item) []string {
	rec := []string{
		strconv.FormatInt(it.ID, 10), string(it.Type), it.Title, strconv.Itoa(it.Year),
		it.Condition, it.Location, strings.Join(it.Tags, ";"),
		"", "", "", "", "", "", "",
	}
	if b := it.BookInfo; b != nil {
		rec[7], rec[8], rec[9], rec[10] = b.ISBN, optionalInt(b.Pages), b.Publisher, strings.Join(b.Authors, ";")
	}
	if d := it.DvdInfo; d != nil {
		rec[11], rec[12], rec[13] = optionalInt(d.Runtime), d.Director, strings.Join(d.Cast, ";")
	}
	return rec
}

// WriteCSVExport writes items as the zip archive the CSV export produces:
// one items.csv entry.
func WriteCSVExport(w io.Writer, items []model.Item) error {
	zw := zip.NewWriter(w)
	entry, err := zw.Create("items.csv")
	if err != nil {
		return err
	}
	cw := csv.NewWriter(entry)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write(itemRecord(it)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return zw.Close()
}

func (f *FakeAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	items := f.liveItems()
	f.mu.Unlock()

	switch r.URL.Query().Get("format") {
	case "json":
		writeJSON(w, http.StatusOK, exportDocument{Items: items})
	case "csv":
		var buf bytes.Buffer
		if err := WriteCSVExport(&buf, items); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, "Unsupported export format")
	}
}

func splitField(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseOptional(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func readCSVArchive(data []byte) ([]model.Item, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, file := range zr.File {
		if file.Name != "items.csv" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		records, err := csv.NewReader(rc).ReadAll()
		if err != nil {
			return nil, err
		}
		var items []model.Item
		for _, rec := range records[min(1, len(records)):] {
			if len(rec) != len(csvHeader) {
				return nil, fmt.Errorf("row has %d columns, want %d", len(rec), len(csvHeader))
			}
			id, _ := strconv.ParseInt(rec[0], 10, 64)
			year, _ := strconv.Atoi(rec[3])
			it := model.Item{
				ID: id, Type: model.MediaType(rec[1]), Title: rec[2], Year: year,
				Condition: rec[4], Location: rec[5], Tags: splitField(rec[6]),
			}
			switch it.Type {
			case model.MediaBook:
				it.BookInfo = &model.BookInfo{ISBN: rec[7], Pages: parseOptional(rec[8]), Publisher: rec[9], Authors: splitField(rec[10])}
			case model.MediaDVD:
				it.DvdInfo = &model.DvdInfo{Runtime: parseOptional(rec[11]), Director: rec[12], Cast: splitField(rec[13])}
			}
			items = append(items, it)
		}
		return items, nil
	}
	return nil, fmt.Errorf("archive has no items.csv")
}

// handleImport merges items by id: known ids update, unknown ids are added
// and invalid rows are reported. A file where every row fails answers 400
// with the summary.
func (f *FakeAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing import file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var items []model.Item
	switch r.URL.Query().Get("format") {
	case "json":
		var doc exportDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid import file")
			return
		}
		items = doc.Items
	case "csv":
		if items, err = readCSVArchive(data); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid import file")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Unsupported import format")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	summary := model.ImportSummary{Errors: []string{}}
	for i, it := range items {
		if msg := validPayload(it.Type, it.Title, it.BookInfo != nil, it.DvdInfo != nil); msg != "" {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %s", i+1, msg))
			continue
		}
		if existing, ok := f.items[it.ID]; ok {
			existing.Title, existing.Year = it.Title, it.Year
			existing.Condition, existing.Location = it.Condition, it.Location
			existing.Tags = append([]string{}, it.Tags...)
			existing.BookInfo, existing.DvdInfo = it.BookInfo, it.DvdInfo
			summary.Updated++
			continue
		}
		f.insertItem(model.ItemCreateRequest{
			Type: it.Type, Title: it.Title, Year: it.Year,
			Condition: it.Condition, Location: it.Location, Tags: it.Tags,
			BookInfo: it.BookInfo, DvdInfo: it.DvdInfo,
		})
		summary.Added++
	}
	status := http.StatusOK
	if len(summary.Errors) > 0 && summary.Added+summary.Updated == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, summary)
}

// Sync

func (f *FakeAPI) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.sync)
}

func (f *FakeAPI) handleSyncEnable(w http.ResponseWriter, r *http.Request) {
	var req model.SyncEnableRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sync.Enabled = req.Enabled
	writeJSON(w, http.StatusOK, f.sync)
}

func (f *FakeAPI) handleSyncRun(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sync.Enabled {
		writeError(w, http.StatusConflict, "Sync is disabled")
		return
	}
	now := f.now()
	conflicts := f.conflicts
	f.sync.LastSyncAt = &now
	f.sync.LastConflictCount = &conflicts
	f.sync.LastStatus = "SUCCESS"
	if conflicts > 0 {
		f.sync.LastStatus = "CONFLICTS"
	}
	writeJSON(w, http.StatusOK, f.sync)
}
