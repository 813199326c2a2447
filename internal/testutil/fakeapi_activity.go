package testutil

import (
	"net/http"
	"sort"

	"github.com/roach88/plms/internal/model"
)

// Progress

func progressTotal(it *model.Item) int {
	switch {
	case it.BookInfo != nil && it.BookInfo.Pages != nil:
		return *it.BookInfo.Pages
	case it.DvdInfo != nil && it.DvdInfo.Runtime != nil:
		return *it.DvdInfo.Runtime
	}
	return 0
}

func (f *FakeAPI) handleListProgress(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.lookupItem(w, pathID(r, "id"))
	if it == nil {
		return
	}
	out := append([]model.ProgressLog{}, f.progress[it.ID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) handleLogProgress(w http.ResponseWriter, r *http.Request) {
	var req model.ProgressRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.lookupItem(w, pathID(r, "id"))
	if it == nil {
		return
	}
	loan := f.activeLoan(it.ID)
	if loan == nil {
		writeError(w, http.StatusConflict, "Progress logging requires an active loan")
		return
	}
	total := progressTotal(it)
	entry := model.ProgressLog{
		ID:              f.id(),
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		PageOrMinute:    req.PageOrMinute,
		Percent:         model.ProgressPercent(req.PageOrMinute, total),
		ReaderName:      loan.ToWhom,
	}
	f.progress[it.ID] = append(f.progress[it.ID], entry)
	it.ProgressValue = req.PageOrMinute
	it.TotalValue = total
	it.ProgressPercent = entry.Percent
	writeJSON(w, http.StatusCreated, entry)
}

func (f *FakeAPI) handleDeleteProgress(w http.ResponseWriter, r *http.Request) {
	itemID, logID := pathID(r, "id"), pathID(r, "logId")
	f.mu.Lock()
	defer f.mu.Unlock()
	logs := f.progress[itemID]
	for i := range logs {
		if logs[i].ID == logID {
			f.progress[itemID] = append(logs[:i:i], logs[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Progress entry not found")
}

// Loans

func (f *FakeAPI) handleActiveLoan(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loan := f.activeLoan(pathID(r, "id"))
	if loan == nil {
		writeError(w, http.StatusNotFound, "No active loan")
		return
	}
	writeJSON(w, http.StatusOK, f.presentLoan(loan))
}

func (f *FakeAPI) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req model.LoanRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.lookupItem(w, pathID(r, "id"))
	if it == nil {
		return
	}
	if it.IsDeleted() {
		writeError(w, http.StatusConflict, "Item is in the trash")
		return
	}
	if f.activeLoan(it.ID) != nil {
		writeError(w, http.StatusConflict, "Item is already on loan")
		return
	}
	if req.DueDate < req.StartDate {
		writeError(w, http.StatusBadRequest, "Due date must not be before start date")
		return
	}
	loan := &model.Loan{
		ID:        f.id(),
		ItemID:    it.ID,
		ToWhom:    req.ToWhom,
		StartDate: req.StartDate,
		DueDate:   req.DueDate,
		Status:    model.LoanActive,
	}
	f.loans[loan.ID] = loan
	writeJSON(w, http.StatusCreated, f.presentLoan(loan))
}

func (f *FakeAPI) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loan, ok := f.loans[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Loan not found")
		return
	}
	if loan.Status != model.LoanActive {
		writeError(w, http.StatusConflict, "Loan already returned")
		return
	}
	loan.Status = model.LoanReturned
	loan.ReturnedAt = f.today()
	writeJSON(w, http.StatusOK, f.presentLoan(loan))
}

func (f *FakeAPI) sortedLoans(keep func(*model.Loan) bool) []model.Loan {
	out := []model.Loan{}
	for _, l := range f.loans {
		if keep(l) {
			out = append(out, f.presentLoan(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *FakeAPI) handleListLoans(w http.ResponseWriter, r *http.Request) {
	status := model.LoanStatus(r.URL.Query().Get("status"))
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.sortedLoans(func(l *model.Loan) bool {
		return status == "" || l.Status == status
	}))
}

func (f *FakeAPI) handleOverdue(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	today := f.today()
	writeJSON(w, http.StatusOK, f.sortedLoans(func(l *model.Loan) bool {
		return l.IsOverdue(today)
	}))
}
