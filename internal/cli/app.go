package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/config"
	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/lookup"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/session"
	"github.com/roach88/plms/internal/store"
	"github.com/roach88/plms/internal/view"
)

// app is everything one command invocation works with.
type app struct {
	cfg     *config.Config
	store   *store.Store
	client  *api.Client
	session *session.Session
	out     *OutputFormatter
	prompt  *Prompter
	clock   model.Clock
	user    *model.User
}

// open wires state, client and session for cmd.
func (o *RootOptions) open(cmd *cobra.Command) (*app, error) {
	cfg := o.config
	if cfg == nil {
		return nil, NewExitError(ExitCommandError, "configuration not loaded")
	}

	st, err := store.Open(cfg.StatePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open state", err)
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	if o.HTTPClient != nil {
		cp := *o.HTTPClient
		cp.Timeout = cfg.Timeout
		hc = &cp
	}

	logger := slog.Default()
	var sess *session.Session
	clientOpts := []api.Option{
		api.WithHTTPClient(hc),
		api.WithLogger(logger),
		api.WithTokenSource(api.TokenFunc(func() string { return sess.Token() })),
	}
	if o.RequestIDs != nil {
		clientOpts = append(clientOpts, api.WithRequestIDs(o.RequestIDs))
	}
	client, err := api.New(cfg.APIBaseURL, clientOpts...)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "configure client", err)
	}

	clock := o.clock()
	sess = session.New(st, client, session.WithClock(clock), session.WithLogger(logger))
	if err := sess.Init(cmd.Context()); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "load session", err)
	}

	out := o.formatter(cmd)
	return &app{
		cfg:     cfg,
		store:   st,
		client:  client,
		session: sess,
		out:     out,
		prompt:  NewPrompter(cmd.InOrStdin(), out.GetErrWriter(), o.Yes),
		clock:   clock,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close state", "error", err)
	}
}

// today is the current local date.
func (a *app) today() string {
	return model.Today(a.clock.Now())
}

// gate runs fn for cmd. With authed set, fn only runs once the session gate
// has confirmed the credential. Every failure is reported through the
// formatter exactly once.
func (o *RootOptions) gate(cmd *cobra.Command, authed bool, fn func(ctx context.Context, a *app) error) error {
	a, err := o.open(cmd)
	if err != nil {
		return report(o.formatter(cmd), err)
	}
	defer a.close()

	ctx := cmd.Context()
	if authed {
		user, err := a.session.Require(ctx)
		if err != nil {
			return report(a.out, err)
		}
		a.user = user
	}
	if err := fn(ctx, a); err != nil {
		return report(a.out, err)
	}
	return nil
}

// run gates fn behind the session.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return o.gate(cmd, true, fn)
}

// report writes err in the configured format and returns it as a reported
// ExitError.
func report(out *OutputFormatter, err error) error {
	if IsReported(err) {
		return err
	}
	code, exit := classify(err)
	_ = out.Error(code, err.Error(), nil)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		exitErr.Reported = true
		return exitErr
	}
	return &ExitError{Code: exit, Err: err, Reported: true}
}

// classify maps err to its envelope code and exit code.
func classify(err error) (string, int) {
	var apiErr *api.Error
	var exitErr *ExitError
	switch {
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrSessionExpired):
		return CodeAuth, ExitAuthRequired
	case errors.As(err, &apiErr):
		if api.IsUnauthorized(err) {
			return CodeAuth, ExitAuthRequired
		}
		return CodeAPI, ExitFailure
	case errors.Is(err, form.ErrInvalidField),
		errors.Is(err, form.ErrSchema),
		errors.Is(err, lookup.ErrNoCandidate),
		errors.Is(err, lookup.ErrUnknownField),
		errors.Is(err, view.ErrUnknownList):
		return CodeInput, ExitCommandError
	case errors.As(err, &exitErr):
		return CodeCommand, exitErr.Code
	}
	return CodeCommand, ExitFailure
}

