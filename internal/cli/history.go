package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [profile]",
	Short: "Show past sync runs",
	Long: `List recorded sync runs, newest first, optionally for one profile.

Use --run to print the errors of a single run and --prune to keep only the
newest runs of the given profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyLimit int
	historyRunID string
	historyPrune int
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Show the errors of one run")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "Keep only the newest N runs of the profile")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)
	ctx := cmd.Context()

	var profileName string
	if len(args) == 1 {
		profileName = args[0]
	}

	db, err := openHistory()
	if err != nil {
		return out.Fail("history", err, utils.ErrCodeUnknown)
	}
	defer db.Close()

	if historyRunID != "" {
		run, err := db.GetRun(ctx, historyRunID)
		if errors.Is(err, sql.ErrNoRows) {
			return out.WriteError("history", utils.NewCLIError(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("No run with id %s", historyRunID)).Build())
		}
		if err != nil {
			return out.Fail("history", err, utils.ErrCodeUnknown)
		}
		messages, err := db.RunErrors(ctx, run.ID)
		if err != nil {
			return out.Fail("history", err, utils.ErrCodeUnknown)
		}
		return out.WriteSuccess("history.run", runErrorsView{Run: *run, Errors: messages})
	}

	if historyPrune > 0 {
		if profileName == "" {
			return out.WriteError("history", utils.NewCLIError(utils.ErrCodeInvalidArgument,
				"--prune needs a profile").Build())
		}
		removed, err := db.Prune(ctx, profileName, historyPrune)
		if err != nil {
			return out.Fail("history", err, utils.ErrCodeUnknown)
		}
		out.Log("Removed %d runs of %s", removed, profileName)
		return out.WriteSuccess("history.prune", keyValueView{
			{Key: "profile", Value: profileName},
			{Key: "removed", Value: strconv.FormatInt(removed, 10)},
		})
	}

	runs, err := db.ListRuns(ctx, profileName, historyLimit)
	if err != nil {
		return out.Fail("history", err, utils.ErrCodeUnknown)
	}
	return out.WriteSuccess("history", historyView(runs))
}
