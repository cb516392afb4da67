package cli

import (
	"github.com/dl-alexandre/gdsync/internal/logging"
	syncengine "github.com/dl-alexandre/gdsync/internal/sync"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <profile>",
	Short: "Show pending changes",
	Long: `List both sides of every folder pair of a profile and print the change
records a sync would apply. Nothing is modified.

<profile> is a profile name or the path to a profile document.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)

	_, p, err := loadProfile(out, "compare", args[0])
	if err != nil {
		return err
	}
	engine, err := newEngine(p)
	if err != nil {
		return out.Fail("compare", err, utils.ErrCodeAuthRequired)
	}

	res, err := engine.Run(cmd.Context(), p, syncengine.RunOptions{DryRun: true})
	if err != nil {
		return out.Fail("compare", err, utils.ErrCodeUnknown)
	}

	view := newCompareView(res)
	for i, pair := range view.Pairs {
		if pair.Error != "" {
			continue
		}
		out.Log("Pair %d %s -> %s: %d to create, %d to update, %d to delete (%s)",
			i+1, pair.Source, pair.Target,
			pair.Summary.Creates, pair.Summary.Updates, pair.Summary.Deletes,
			formatSize(pair.Summary.Bytes))
	}
	GetLogger().Debug("compare command finished",
		logging.F("profile", p.Name),
		logging.F("pairs", len(view.Pairs)),
		logging.F("errors", len(res.Errors)))

	if err := out.WriteSuccess("compare", view); err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return &ExitError{Code: utils.ExitBatchPartialFailure}
	}
	return nil
}
