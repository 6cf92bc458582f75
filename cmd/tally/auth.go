package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mhartley/tally/internal/cli"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and out of the ledger service",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authWhoamiCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in with your ledger account",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAuthLogin,
	}
	cmd.Flags().String("password", "", "password (prompted interactively when omitted)")
	return cmd
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	email := ""
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			return fmt.Errorf("failed to read email: %w", readErr)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		fmt.Print("Password: ")
		raw, readErr := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if readErr != nil {
			return fmt.Errorf("failed to read password: %w", readErr)
		}
		password = string(raw)
	}

	cred, err := a.client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	name := cred.FullName
	if name == "" {
		name = cred.Email
	}
	fmt.Println(cli.FormatSuccess("Signed in as " + name))
	return nil
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.session.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Println(cli.FormatSuccess("Signed out."))
			return nil
		},
	}
}

func authWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			cred := a.session.Credential()
			if cred == nil {
				fmt.Println(cli.FormatInfo("Not signed in."))
				return nil
			}
			fmt.Printf("%s <%s> (user %s)\n", cred.FullName, cred.Email, cred.UserID)
			return nil
		},
	}
}
