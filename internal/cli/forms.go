package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/e0as/mobile-bridge/internal/api"
)

func newFormsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Work with assigned forms",
	}
	cmd.AddCommand(
		newFormsListCmd(),
		newFormsMineCmd(),
		newFormsOpenCmd(),
		newFormsSubmitCmd(),
	)
	return cmd
}

func newFormsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			forms, err := a.client.Forms(cmd.Context())
			if err != nil {
				return err
			}

			for _, f := range forms {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", f.ID, f.FormType, f.Title)
			}
			return nil
		},
	}
}

func newFormsMineCmd() *cobra.Command {
	var formType, status string

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List my form responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			filter := &api.ResponsesFilter{
				FormType: api.FormType(formType),
				Status:   api.ResponseStatus(status),
			}
			responses, err := a.client.MyResponses(cmd.Context(), filter)
			if err != nil {
				return err
			}

			for _, r := range responses {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.FormIDString(), r.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formType, "type", "", "filter by form type (injury, wellness, training-load)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft, submitted, validated)")
	return cmd
}

func newFormsOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <form-id>",
		Short: "Open a form, assigning it first if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			response, created, err := a.client.GetOrCreateFormResponse(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Assigned form, response %s\n", response.ID)
			}
			return printJSON(cmd, response)
		},
	}
}

func newFormsSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <response-id>",
		Short: "Submit a draft form response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			response, err := a.client.SubmitForm(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Response %s is now %s\n", response.ID, response.Status)
			return nil
		},
	}
}
