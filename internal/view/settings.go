package view

import (
	"context"
	"io"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/model"
)

// ConflictNote is shown when the last sync resolved conflicts.
const ConflictNote = "Conflicts detected. Latest changes kept (LWW)."

// Settings drives import, export and sync.
type Settings struct {
	base
	api     API
	sync    *model.SyncStatus
	summary *model.ImportSummary
}

// NewSettings returns a settings view with unknown sync status.
func NewSettings(a API) *Settings {
	return &Settings{api: a}
}

// ExportFilename is the file name an export in format f is saved under.
func (v *Settings) ExportFilename(f api.Format) string {
	return api.ExportFilename(f)
}

// Export downloads the full export in format f into w.
func (v *Settings) Export(ctx context.Context, f api.Format, w io.Writer) (int64, error) {
	gen := v.reset()
	n, err := v.api.Export(ctx, f, w)
	if err != nil {
		return n, v.fail(gen, err)
	}
	return n, nil
}

// Import uploads r and keeps the server's summary, including the partial
// summary of a rejected file.
func (v *Settings) Import(ctx context.Context, f api.Format, filename string, r io.Reader) (*model.ImportSummary, error) {
	gen := v.reset()
	summary, err := v.api.Import(ctx, f, filename, r)
	_ = v.commit(gen, func() { v.summary = summary })
	if err != nil {
		return summary, v.fail(gen, err)
	}
	return summary, nil
}

// Summary returns the last import summary.
func (v *Settings) Summary() *model.ImportSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.summary
}

// LoadSync fetches the sync status. On failure the status becomes unknown;
// the banner is left alone.
func (v *Settings) LoadSync(ctx context.Context) error {
	gen := v.generation()
	st, err := v.api.SyncStatus(ctx)
	if cerr := v.commit(gen, func() { v.sync = st }); cerr != nil {
		return cerr
	}
	return err
}

// SyncStatus returns the last fetched status, or nil when unknown.
func (v *Settings) SyncStatus() *model.SyncStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sync
}

// SetSyncEnabled toggles sync, then re-fetches the status.
func (v *Settings) SetSyncEnabled(ctx context.Context, enabled bool) error {
	gen := v.reset()
	if _, err := v.api.SetSyncEnabled(ctx, enabled); err != nil {
		return v.fail(gen, err)
	}
	_ = v.LoadSync(ctx)
	return nil
}

// RunSync triggers a sync pass, then re-fetches the status.
func (v *Settings) RunSync(ctx context.Context) error {
	gen := v.reset()
	if _, err := v.api.RunSync(ctx); err != nil {
		return v.fail(gen, err)
	}
	_ = v.LoadSync(ctx)
	return nil
}

// ConflictNote returns the last-write-wins note when the last sync had
// conflicts, or "".
func (v *Settings) ConflictNote() string {
	if v.SyncStatus().ConflictCount() > 0 {
		return ConflictNote
	}
	return ""
}
