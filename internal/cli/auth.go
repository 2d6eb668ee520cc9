package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/e0as/mobile-bridge/internal/browser"
	"github.com/e0as/mobile-bridge/internal/session"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the hosted-UI login flow",
		Long: "Opens the backend login entry point, which redirects into the\n" +
			"provider's hosted login page. Navigation URLs are read from stdin,\n" +
			"one per line, until the flow reaches a terminal redirect.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthFlow(cmd, func(a *app) string { return a.hosted.LoginURL() })
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Run the hosted-UI registration flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthFlow(cmd, func(a *app) string { return a.hosted.SignupURL() })
		},
	}
}

func runAuthFlow(cmd *cobra.Command, entry func(*app) string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	surface := browser.NewScriptSurface(cmd.InOrStdin())
	user, err := a.bridge.Run(cmd.Context(), surface, entry(a))
	if err != nil {
		if errors.Is(err, session.ErrVerificationFailed) {
			fmt.Fprintln(os.Stderr, "Authentication completed but the session could not be verified. Try again.")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as %s (%s)\n", user.DisplayName(), user.Role)
	if !user.ProfileComplete() {
		fmt.Fprintln(cmd.OutOrStdout(), "Profile is incomplete. Run 'mobile-bridge profile complete' to finish it.")
	}
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.manager.Logout(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Backend logout failed; local session cleared.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.manager.Initialize(cmd.Context()); err != nil {
				return err
			}

			state := a.manager.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\n", state)
			if user := a.manager.User(); user != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "User: %s (%s)\n", user.DisplayName(), user.Role)
				fmt.Fprintf(cmd.OutOrStdout(), "Profile complete: %t\n", user.ProfileComplete())
			}
			return nil
		},
	}
}
