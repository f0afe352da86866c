package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to HandyPro Connect",
		Long: `Log in with your email and password. The session is kept in the
token file and reused by later commands until it expires or you log out.

Examples:
  handyctl login --email me@example.com --password-stdin < password.txt
  handyctl login --email me@example.com --password secret123`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/login", annotationNoResume: "true"},
		RunE:        a.runLogin,
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	cmd.Flags().String("from", "", "route to continue to after login")
	return cmd
}

func (a *app) runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	from, _ := cmd.Flags().GetString("from")

	if fromStdin {
		p, err := readSecret(cmd.InOrStdin())
		if err != nil {
			return err
		}
		password = p
	}

	target, err := a.flow.Login(cmd.Context(), email, password, from)
	if err != nil {
		return err
	}
	user := a.store.Snapshot().User

	if ok, err := a.structured(map[string]any{
		"user":   user,
		"target": target,
	}); ok {
		return err
	}

	fmt.Fprintf(a.out, "%s Logged in as %s (%s)\n", colorGreen("✓"), user.DisplayName(), user.Role.Label())
	fmt.Fprintf(a.out, "  Continue at: %s\n", target)
	return nil
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "End the current session",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoResume: "true"},
		RunE:        a.runLogout,
	}
}

func (a *app) runLogout(cmd *cobra.Command, args []string) error {
	a.flow.Logout()

	if ok, err := a.structured(map[string]string{"status": "logged_out"}); ok {
		return err
	}
	fmt.Fprintf(a.out, "%s Logged out\n", colorGreen("✓"))
	return nil
}

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create a homeowner (customer) or professional account. Registration
does not log you in.

Examples:
  handyctl register --email me@example.com --name "Jane Doe" --password-stdin
  handyctl register --email pro@example.com --name "Pat Pro" --role professional --phone 0700000000`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/register", annotationNoResume: "true"},
		RunE:        a.runRegister,
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("password", "", "password (at least 8 characters)")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().String("role", string(models.RoleCustomer), "account type (customer, professional)")
	return cmd
}

func (a *app) runRegister(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	phone, _ := cmd.Flags().GetString("phone")
	roleFlag, _ := cmd.Flags().GetString("role")

	role, err := models.ParseRole(roleFlag)
	if err != nil {
		return models.NewValidationError("role", "must be one of: customer, professional")
	}
	if fromStdin {
		if password, err = readSecret(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	user, err := a.flow.Register(cmd.Context(), models.RegisterRequest{
		Email:    email,
		FullName: name,
		Password: password,
		Phone:    strings.TrimSpace(phone),
		Role:     role,
	})
	if err != nil {
		return err
	}

	if ok, err := a.structured(user); ok {
		return err
	}
	fmt.Fprintf(a.out, "%s Account created for %s (%s)\n", colorGreen("✓"), user.Email, user.Role.Label())
	fmt.Fprintf(a.out, "  Log in with: handyctl login --email %s\n", user.Email)
	return nil
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE:  a.runWhoami,
	}
}

func (a *app) runWhoami(cmd *cobra.Command, args []string) error {
	snap := a.store.Snapshot()
	if !snap.Authenticated() {
		return errLoginRequired
	}
	user := snap.User

	if ok, err := a.structured(user); ok {
		return err
	}
	fmt.Fprintf(a.out, "ID:       %d\n", user.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", user.DisplayName())
	fmt.Fprintf(a.out, "Email:    %s\n", user.Email)
	fmt.Fprintf(a.out, "Account:  %s\n", user.Role.Label())
	if user.Phone != "" {
		fmt.Fprintf(a.out, "Phone:    %s\n", user.Phone)
	}
	return nil
}
