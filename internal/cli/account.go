package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"alfredoptarigan/resumeai/internal/auth"
)

type LoginOptions struct {
	GlobalOptions

	Email    string
	Password string
}

func NewCmdLogin() *cobra.Command {
	o := &LoginOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session on this machine.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *LoginOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.Email, "email", "", "Account email")
	fs.StringVar(&o.Password, "password", "", "Account password")
}

func (o *LoginOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return displayError(auth.LoginForm{Email: o.Email, Password: o.Password}.Validate())
}

func (o *LoginOptions) Run(ctx context.Context, out io.Writer) error {
	c, err := o.Client()
	if err != nil {
		return err
	}
	session, err := c.Login(ctx, o.Email, o.Password)
	if err != nil {
		return displayError(err)
	}
	fmt.Fprintf(out, "Login successful! Welcome back, %s.\n", session.User.Name)
	return nil
}

type RegisterOptions struct {
	GlobalOptions

	Name     string
	Email    string
	Password string
	Confirm  string
}

func NewCmdRegister() *cobra.Command {
	o := &RegisterOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *RegisterOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.Name, "name", "", "Full name")
	fs.StringVar(&o.Email, "email", "", "Account email")
	fs.StringVar(&o.Password, "password", "", "Password: at least 6 characters with a letter and a number")
	fs.StringVar(&o.Confirm, "confirm", "", "Password again")
}

func (o *RegisterOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	form := auth.RegisterForm{Name: o.Name, Email: o.Email, Password: o.Password, Confirm: o.Confirm}
	return displayError(form.Validate())
}

func (o *RegisterOptions) Run(ctx context.Context, out io.Writer) error {
	c, err := o.Client()
	if err != nil {
		return err
	}
	if _, err := c.Register(ctx, o.Name, o.Email, o.Password); err != nil {
		return displayError(err)
	}
	fmt.Fprintln(out, "Account created! You are signed in.")
	return nil
}

func NewCmdWhoami() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			c, err := o.Client()
			if err != nil {
				return err
			}
			user, err := c.CurrentUser(cmd.Context())
			if errors.Is(err, auth.ErrNotAuthenticated) {
				return errors.New("not signed in, run `resumeai login` first")
			}
			if err != nil {
				return displayError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			return nil
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func NewCmdLogout() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the session stored on this machine.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			c, err := o.Client()
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}
