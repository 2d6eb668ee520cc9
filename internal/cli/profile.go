package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/e0as/mobile-bridge/internal/profile"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or complete the user profile",
	}
	cmd.AddCommand(newProfileShowCmd(), newProfileCompleteCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the authenticated user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			user, err := a.client.MyProfile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, user)
		},
	}
}

func newProfileCompleteCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Submit the role-specific profile data",
		Long: "Reads the full profile payload from a JSON file and submits it.\n" +
			"The payload replaces the profile wholesale; partial updates are not\n" +
			"supported by the backend.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading profile payload: %w", err)
			}

			var payload profile.User
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("parsing profile payload: %w", err)
			}
			if err := payload.Validate(); err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.manager.Initialize(cmd.Context()); err != nil {
				return err
			}

			user, err := a.manager.CompleteProfile(cmd.Context(), &payload)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile completed for %s\n", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the profile payload")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
