package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/gdsync/internal/profile"
	syncengine "github.com/dl-alexandre/gdsync/internal/sync"
	"github.com/dl-alexandre/gdsync/internal/sync/diff"
	"github.com/dl-alexandre/gdsync/internal/sync/index"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/pkg/version"
	"github.com/dustin/go-humanize"
)

func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}

// compareView lists every change record of every pair
type compareView struct {
	Profile string               `json:"profile"`
	Mode    diff.Mode            `json:"mode"`
	Pairs   []comparePairSummary `json:"pairs"`
}

type comparePairSummary struct {
	Source  types.Location `json:"source"`
	Target  types.Location `json:"target"`
	Result  diff.Result    `json:"result"`
	Summary diff.Summary   `json:"summary"`
	Error   string         `json:"error,omitempty"`
}

func newCompareView(res *syncengine.RunResult) compareView {
	view := compareView{Profile: res.Profile, Mode: res.Mode, Pairs: []comparePairSummary{}}
	for _, pr := range res.Pairs {
		view.Pairs = append(view.Pairs, comparePairSummary{
			Source:  pr.Source,
			Target:  pr.Target,
			Result:  pr.Compare,
			Summary: pr.Compare.Summarize(res.Mode),
			Error:   pr.Error,
		})
	}
	return view
}

func (v compareView) Headers() []string {
	return []string{"Pair", "Action", "Path", "Size", "Source Modified", "Target Modified"}
}

func (v compareView) Rows() [][]string {
	var rows [][]string
	for i, pair := range v.Pairs {
		if pair.Error != "" {
			rows = append(rows, []string{strconv.Itoa(i + 1), "error", pair.Error, "-", "-", "-"})
			continue
		}
		for _, rec := range pair.Result.Records {
			path := rec.Path
			if rec.IsFolder {
				path += "/"
			}
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				string(rec.Action),
				truncate(path, 60),
				formatSize(max(rec.SourceSize, rec.TargetSize)),
				dashIfEmpty(rec.SourceModified),
				dashIfEmpty(rec.TargetModified),
			})
		}
	}
	return rows
}

func (v compareView) EmptyMessage() string {
	return "Everything is in sync"
}

// runView is the sync command result
type runView struct {
	RunID  string                `json:"runId,omitempty"`
	Status string                `json:"status"`
	DryRun bool                  `json:"dryRun,omitempty"`
	Result *syncengine.RunResult `json:"result"`
}

func (v runView) Headers() []string {
	return []string{"Pair", "Source", "Target", "Changes", "Done", "Errors", "State"}
}

func (v runView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Result.Pairs))
	for i, pr := range v.Result.Pairs {
		state := "applied"
		switch {
		case pr.Error != "":
			state = "failed: " + pr.Error
		case v.DryRun:
			state = "dry run"
		case pr.Skipped:
			state = "skipped"
		case len(pr.Compare.Records) == 0:
			state = "in sync"
		case pr.Sync.Cancelled:
			state = "cancelled"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncate(pr.Source.String(), 40),
			truncate(pr.Target.String(), 40),
			strconv.Itoa(len(pr.Compare.Records)),
			fmt.Sprintf("%d/%d", pr.Sync.ItemsDone, pr.Sync.Total),
			strconv.Itoa(len(pr.Sync.Errors)),
			state,
		})
	}
	return rows
}

func (v runView) EmptyMessage() string {
	return "No folder pairs"
}

type profileListView []profileListItem

type profileListItem struct {
	Name      string    `json:"name"`
	Mode      diff.Mode `json:"syncMode"`
	Pairs     int       `json:"pairs"`
	Path      string    `json:"path"`
	UpdatedAt string    `json:"updatedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (v profileListView) Headers() []string {
	return []string{"Name", "Mode", "Pairs", "Updated", "Path"}
}

func (v profileListView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, item := range v {
		name := item.Name
		if item.Error != "" {
			name = "(invalid) " + item.Error
		}
		rows = append(rows, []string{
			truncate(name, 40),
			string(item.Mode),
			strconv.Itoa(item.Pairs),
			humanTime(item.UpdatedAt),
			item.Path,
		})
	}
	return rows
}

func (v profileListView) EmptyMessage() string {
	return "No profiles found"
}

// profileView shows one profile as key/value rows
type profileView struct {
	*profile.Profile
	Path string `json:"path"`
}

func (v profileView) Headers() []string {
	return []string{"Field", "Value"}
}

func (v profileView) Rows() [][]string {
	rows := [][]string{
		{"Name", v.Name},
		{"Mode", string(v.SyncMode)},
		{"Path", v.Path},
	}
	for i, fp := range v.FolderPairs {
		rows = append(rows, []string{fmt.Sprintf("Pair %d", i+1), fp.Source.String() + " -> " + fp.Target.String()})
	}
	if len(v.Exclude) > 0 {
		rows = append(rows, []string{"Exclude", strings.Join(v.Exclude, ", ")})
	}
	if v.SettingsPath != "" {
		rows = append(rows, []string{"Settings", v.SettingsPath})
	}
	rows = append(rows,
		[]string{"Created", dashIfEmpty(v.CreatedAt)},
		[]string{"Updated", dashIfEmpty(v.UpdatedAt)},
	)
	return rows
}

func (v profileView) EmptyMessage() string {
	return ""
}

type accountsView struct {
	Backend  string        `json:"storageBackend"`
	Accounts []accountInfo `json:"accounts"`
}

type accountInfo struct {
	Account          string    `json:"account"`
	Type             string    `json:"type,omitempty"`
	ImpersonatedUser string    `json:"impersonatedUser,omitempty"`
	Expiry           time.Time `json:"expiry,omitempty"`
	Error            string    `json:"error,omitempty"`
}

func (v accountsView) Headers() []string {
	return []string{"Account", "Type", "Expiry", "Storage"}
}

func (v accountsView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Accounts))
	for _, a := range v.Accounts {
		kind := a.Type
		if a.Error != "" {
			kind = "unreadable: " + a.Error
		}
		expiry := "-"
		if !a.Expiry.IsZero() {
			expiry = humanize.Time(a.Expiry)
		}
		rows = append(rows, []string{a.Account, kind, expiry, v.Backend})
	}
	return rows
}

func (v accountsView) EmptyMessage() string {
	return "No accounts. Add one with 'gdsync accounts import'"
}

type historyView []index.Run

func (v historyView) Headers() []string {
	return []string{"Run", "Profile", "Mode", "Started", "Duration", "Done", "Errors", "Status"}
}

func (v historyView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, run := range v {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		status := run.Status()
		if run.DryRun {
			status += " (dry run)"
		}
		rows = append(rows, []string{
			truncate(run.ID, 13),
			run.Profile,
			run.Mode,
			humanize.Time(run.StartedAt),
			duration,
			fmt.Sprintf("%d/%d", run.ItemsDone, run.ItemsTotal),
			strconv.Itoa(run.ErrorCount),
			status,
		})
	}
	return rows
}

func (v historyView) EmptyMessage() string {
	return "No sync runs recorded"
}

// runErrorsView lists the error lines of one run
type runErrorsView struct {
	Run    index.Run `json:"run"`
	Errors []string  `json:"errors"`
}

func (v runErrorsView) Headers() []string {
	return []string{"#", "Error"}
}

func (v runErrorsView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Errors))
	for i, msg := range v.Errors {
		rows = append(rows, []string{strconv.Itoa(i + 1), msg})
	}
	return rows
}

func (v runErrorsView) EmptyMessage() string {
	return fmt.Sprintf("Run %s: %s, no errors", v.Run.ID, v.Run.Status())
}

// keyValueView renders a map-like list of settings
type keyValueView []keyValue

type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (v keyValueView) Headers() []string {
	return []string{"Key", "Value"}
}

func (v keyValueView) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, kv := range v {
		rows = append(rows, []string{kv.Key, dashIfEmpty(kv.Value)})
	}
	return rows
}

func (v keyValueView) EmptyMessage() string {
	return ""
}

type versionView struct {
	*version.Info
}

func (v versionView) Headers() []string {
	return []string{"Version", "Commit", "Built", "Go", "Platform"}
}

func (v versionView) Rows() [][]string {
	return [][]string{{v.Version, v.GitCommit, v.BuildTime, v.GoVersion, v.Platform}}
}

func (v versionView) EmptyMessage() string {
	return ""
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// humanTime renders a stored timestamp relative to now
func humanTime(ts string) string {
	t, err := types.ParseTimestamp(ts)
	if err != nil {
		return dashIfEmpty(ts)
	}
	return humanize.Time(t)
}
