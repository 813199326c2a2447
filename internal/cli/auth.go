package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
)

// AuthOptions holds flags for login and register.
type AuthOptions struct {
	*RootOptions
	Email       string
	DisplayName string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the credential",
		Long: `Sign in with email and password. The password is read from the
terminal without echo; when stdin is not a terminal it is read as one line.

Example:
  plms login --email me@example.com`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.gate(cmd, false, func(ctx context.Context, a *app) error {
				email, password, err := opts.credentials(a)
				if err != nil {
					return err
				}
				user, err := a.session.Login(ctx, email, password)
				if err != nil {
					return err
				}
				return emitSignedIn(a, user)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (prompted when empty)")
	return cmd
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "register",
		Short:         "Create an account and sign in",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.gate(cmd, false, func(ctx context.Context, a *app) error {
				email, password, err := opts.credentials(a)
				if err != nil {
					return err
				}
				user, err := a.session.Register(ctx, email, password, strings.TrimSpace(opts.DisplayName))
				if err != nil {
					return err
				}
				return emitSignedIn(a, user)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&opts.DisplayName, "name", "", "display name")
	return cmd
}

func (o *AuthOptions) credentials(a *app) (string, string, error) {
	email := strings.TrimSpace(o.Email)
	if email == "" {
		var err error
		if email, err = a.prompt.Line("Email"); err != nil {
			return "", "", err
		}
	}
	password, err := a.prompt.Password("Password")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func emitSignedIn(a *app, user *model.User) error {
	return a.out.Emit(user, func(w io.Writer) error {
		return render.User(w, user)
	})
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "Forget the saved credential",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.gate(cmd, false, func(ctx context.Context, a *app) error {
				if err := a.session.Logout(ctx); err != nil {
					return err
				}
				return a.out.Emit(map[string]bool{"signedOut": true}, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, "Signed out.")
					return err
				})
			})
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "whoami",
		Short:         "Show the signed-in profile",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				return a.out.Emit(a.user, func(w io.Writer) error {
					return render.User(w, a.user)
				})
			})
		},
	}
}
