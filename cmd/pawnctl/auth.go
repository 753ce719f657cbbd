package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/notify"
)

// readPassword prompts on a terminal and otherwise reads one line from in.
func readPassword(cmd *cobra.Command) (string, error) {
	if in, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(in) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCommand(a *app) *cobra.Command {
	var phoneNumber, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the tokens for later commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if password == "" {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}
			claims, err := a.auth.SignIn(ctx, phoneNumber, password)
			if err != nil {
				a.notify.Emit(notify.Error, notify.FromError(err, notify.General))
				return err
			}
			a.notify.Successf(notify.SignedIn)
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", claims.PhoneNumber, claims.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&phoneNumber, "phone", "u", "", "staff phone number")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			if err := a.auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			a.notify.Successf(notify.SignedOut)
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			c, err := a.auth.Whoami(time.Now())
			if errors.Is(err, errs.ErrUnauthorized) {
				a.notify.Errorf(notify.SessionExpired)
				return err
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "subject: %s\nphone:   %s\nrole:    %s\nexpires: %s\n",
				c.Subject, c.PhoneNumber, c.Role, time.Unix(c.ExpiresAt, 0).Format(time.RFC3339))
			return nil
		},
	}
}

func newRegisterCommand(a *app) *cobra.Command {
	var phoneNumber, password, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if password == "" {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}
			msg, err := a.auth.Register(ctx, phoneNumber, password, role)
			if err != nil {
				a.notify.Emit(notify.Error, notify.FromError(err, notify.General))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&phoneNumber, "phone", "u", "", "phone number of the new account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&role, "role", "", "account role, e.g. admin")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}
