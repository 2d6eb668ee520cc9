package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/e0as/mobile-bridge/internal/api"
)

func newWellnessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wellness",
		Short: "Daily wellness check-ins",
	}
	cmd.AddCommand(newWellnessSubmitCmd(), newWellnessRecordsCmd())
	return cmd
}

func newWellnessSubmitCmd() *cobra.Command {
	var (
		sleep, pain, fatigue, stress int
		notes, date                  string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit today's wellness check-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range []int{sleep, pain, fatigue, stress} {
				if v < 1 || v > 5 {
					return fmt.Errorf("wellness scores must be between 1 and 5")
				}
			}
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			record, err := a.client.SubmitWellness(cmd.Context(), &api.WellnessEntry{
				SleepQuality: sleep,
				MusclePain:   pain,
				Fatigue:      fatigue,
				Stress:       stress,
				Notes:        notes,
				Date:         date,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded check-in %s for %s\n", record.ID, record.Date)
			return nil
		},
	}

	cmd.Flags().IntVar(&sleep, "sleep", 0, "sleep quality, 1-5")
	cmd.Flags().IntVar(&pain, "pain", 0, "muscle pain, 1-5")
	cmd.Flags().IntVar(&fatigue, "fatigue", 0, "fatigue, 1-5")
	cmd.Flags().IntVar(&stress, "stress", 0, "stress, 1-5")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&date, "date", "", "check-in date, YYYY-MM-DD (default today)")
	for _, required := range []string{"sleep", "pain", "fatigue", "stress"} {
		_ = cmd.MarkFlagRequired(required)
	}
	return cmd
}

func newWellnessRecordsCmd() *cobra.Command {
	var (
		userID        string
		limit, offset int
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List wellness check-in history",
		Long: "Lists the caller's own check-in history, or another user's when\n" +
			"--user is set and the caller has health-team or trainer access.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			var records []api.WellnessRecord
			if userID != "" {
				records, err = a.client.WellnessRecords(cmd.Context(), userID, limit, offset)
			} else {
				records, err = a.client.MyWellnessRecords(cmd.Context(), limit, offset)
			}
			if err != nil {
				return err
			}

			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tsleep=%d pain=%d fatigue=%d stress=%d\n",
					r.Date, r.SleepQuality, r.MusclePain, r.Fatigue, r.Stress)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID to inspect (health team and trainers only)")
	cmd.Flags().IntVar(&limit, "limit", 30, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newAthletesCmd() *cobra.Command {
	var dashboard string

	cmd := &cobra.Command{
		Use:   "athletes",
		Short: "List visible athletes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if dashboard != "" {
				raw, err := a.client.AthleteDashboard(cmd.Context(), dashboard)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			}

			athletes, err := a.client.Athletes(cmd.Context())
			if err != nil {
				return err
			}
			for _, ath := range athletes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\t%s\n", ath.ID, ath.FirstName, ath.LastName, ath.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dashboard, "dashboard", "", "print the dashboard for the given athlete ID instead")
	return cmd
}
