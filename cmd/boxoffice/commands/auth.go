package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/theatre-booking/cmd/boxoffice/output"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/session"
)

var (
	username string
	password string
	email    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and load the starter catalogue",
	Long: `Create the schema and, when no admin account exists yet, seed the
admin account, three shows with six performances and the concessions
menu. Running it again changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		output.Success("Database ready (%s)", a.Config.DBPath)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a customer account and log in",
	Long: `Create a customer account and log in.

Examples:
  boxoffice register --username ana --email ana@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		pw, err := readPassword()
		if err != nil {
			return err
		}
		u, err := a.Session.Register(cmd.Context(), session.RegisterInput{Username: username, Password: pw, Email: email})
		if err != nil {
			return err
		}
		output.Success("Welcome, %s! You are now logged in.", u.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		pw, err := readPassword()
		if err != nil {
			return err
		}
		u, err := a.Session.Login(cmd.Context(), username, pw)
		if err != nil {
			return err
		}
		output.Success("Logged in as %s (%s)", u.Username, u.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if !a.Session.IsAuthenticated() {
			output.Info("Not logged in")
			return nil
		}
		if err := a.Session.Logout(cmd.Context()); err != nil {
			output.Warning("Logged out, but the logout could not be recorded")
			return nil
		}
		output.Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		u := a.CurrentUser()
		if u == nil {
			return model.ErrAuthenticationRequired
		}
		output.Info("%s <%s> (%s)", u.Username, u.Email, u.Role)
		return nil
	},
}

// readPassword uses --password when given and otherwise reads one line
// from stdin.
func readPassword() (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&username, "username", "u", "", "Username")
		c.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
		_ = c.MarkFlagRequired("username")
	}
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	_ = registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(initCmd, registerCmd, loginCmd, logoutCmd, whoamiCmd)
}
