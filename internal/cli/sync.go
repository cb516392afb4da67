package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/profile"
	syncengine "github.com/dl-alexandre/gdsync/internal/sync"
	"github.com/dl-alexandre/gdsync/internal/sync/diff"
	"github.com/dl-alexandre/gdsync/internal/sync/executor"
	"github.com/dl-alexandre/gdsync/internal/sync/index"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <profile>",
	Short: "Synchronize the folder pairs of a profile",
	Long: `Compare every folder pair of a profile and apply the changes.

Each pair with pending changes is confirmed interactively unless --yes is
given. Progress is written to stderr. SIGINT or SIGTERM stops the sync after
the current item; on unix SIGUSR1 pauses and resumes it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

// confirmInput is where sync reads answers to its prompts
var confirmInput io.Reader = os.Stdin

func init() {
	syncCmd.Flags().BoolVarP(&globalFlags.Yes, "yes", "y", false, "Apply without asking for confirmation")
	syncCmd.Flags().BoolVar(&globalFlags.DryRun, "dry-run", false, "Compare only, apply nothing")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := newOutput(cmd)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	log := GetLogger()

	store, p, err := loadProfile(out, "sync", args[0])
	if err != nil {
		return err
	}

	lock, err := store.Lock(p.Name)
	if err != nil {
		return out.Fail("sync", err, utils.ErrCodeProfileLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("failed to release profile lock", logging.F("profile", p.Name), logging.F("error", err))
		}
	}()

	engine, err := newEngine(p)
	if err != nil {
		return out.Fail("sync", err, utils.ErrCodeAuthRequired)
	}

	control := executor.NewControl()
	control.SetPollInterval(appConfig.GetPausePollInterval())
	stop := watchSignals(control, cancel, out)
	defer stop()

	history, run := startHistory(ctx, p, flags.DryRun, log)
	if history != nil {
		defer history.Close()
	}
	if run == nil {
		out.AddWarning("HISTORY_UNAVAILABLE", "this run is not recorded in the sync history", "warning")
	}

	opts := syncengine.RunOptions{DryRun: flags.DryRun, Control: control}
	if !flags.Yes && !flags.DryRun {
		opts.Confirm = confirmPair(out.stderr, bufio.NewReader(confirmInput), p.SyncMode)
	}
	if !flags.Quiet {
		opts.OnProgress = func(pair, done, total int, path string) {
			fmt.Fprintf(out.stderr, "[pair %d] %d/%d %s\n", pair+1, done, total, path)
		}
	}

	res, err := engine.Run(ctx, p, opts)
	if err != nil {
		return out.Fail("sync", err, utils.ErrCodeUnknown)
	}

	if run != nil {
		if err := history.FinishRun(context.Background(), run.ID, index.Outcome{
			ItemsDone:  res.ItemsDone,
			ItemsTotal: res.Total,
			Cancelled:  res.Cancelled,
			Errors:     res.Errors,
		}); err != nil {
			log.Warn("failed to record sync run", logging.F("run", run.ID), logging.F("error", err))
		}
	}

	status := runStatus(res)
	for _, msg := range res.Errors {
		out.Log("  %s", msg)
	}
	out.Log("Sync %s", status)

	view := runView{Status: status, DryRun: flags.DryRun, Result: res}
	if run != nil {
		view.RunID = run.ID
	}
	if err := out.WriteSuccess("sync", view); err != nil {
		return err
	}

	switch {
	case len(res.Errors) > 0:
		return &ExitError{Code: utils.ExitBatchPartialFailure}
	case res.Cancelled:
		return &ExitError{Code: utils.ExitCancelled}
	}
	return nil
}

// runStatus is the one-line outcome reported at the end of a sync
func runStatus(res *syncengine.RunResult) string {
	switch {
	case res.Cancelled:
		return "cancelled"
	case len(res.Errors) > 0:
		return fmt.Sprintf("completed with %d errors", len(res.Errors))
	}
	return "completed"
}

// startHistory opens the run history and records the start of a run. The
// sync goes ahead without history when either step fails.
func startHistory(ctx context.Context, p *profile.Profile, dryRun bool, log logging.Logger) (*index.DB, *index.Run) {
	history, err := openHistory()
	if err != nil {
		log.Warn("run history unavailable", logging.F("error", err))
		return nil, nil
	}
	run, err := history.StartRun(ctx, p.Name, string(p.SyncMode), len(p.FolderPairs), dryRun)
	if err != nil {
		log.Warn("failed to record sync run", logging.F("error", err))
		return history, nil
	}
	return history, run
}

// confirmPair asks before each pair is applied. Anything but y/yes,
// including end of input, declines.
func confirmPair(prompt io.Writer, in *bufio.Reader, mode diff.Mode) func(int, profile.FolderPair, diff.Result) bool {
	return func(i int, fp profile.FolderPair, res diff.Result) bool {
		s := res.Summarize(mode)
		fmt.Fprintf(prompt, "Pair %d %s -> %s: %d to create, %d to update, %d to delete (%s). Apply? [y/N] ",
			i+1, fp.Source, fp.Target, s.Creates, s.Updates, s.Deletes, formatSize(s.Bytes))

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(prompt)
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// watchSignals turns SIGINT/SIGTERM into a cancel and the pause signals into
// a pause toggle until the returned stop func is called
func watchSignals(control *executor.Control, cancel context.CancelFunc, out *OutputWriter) (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, append([]os.Signal{os.Interrupt, syscall.SIGTERM}, pauseSignals...)...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigs:
				handleSignal(sig, control, cancel, out)
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// handleSignal toggles pause for a pause signal. Any other signal cancels
// both the executor and ctx, so a listing in progress stops too.
func handleSignal(sig os.Signal, control *executor.Control, cancel context.CancelFunc, out *OutputWriter) {
	if slices.Contains(pauseSignals, sig) {
		if control.TogglePause() {
			out.Log("Paused, send the signal again to resume")
		} else {
			out.Log("Resumed")
		}
		return
	}
	out.Log("Stopping...")
	control.Cancel()
	cancel()
}
