package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/profile"
	"github.com/dl-alexandre/gdsync/internal/sync/diff"
	"github.com/dl-alexandre/gdsync/internal/sync/exclude"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Sync profile management",
	Long: `Commands for creating and inspecting sync profiles.

A location is written as a local path, local:<path>, or
drive:<account>/<folderId> for a Drive folder reached through an imported
account.`,
}

var profileInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a profile",
	Long: `Create a profile with one or more folder pairs. Repeat --source and
--target to add pairs; they are matched in order.`,
	Example: `  gdsync profile init photos --source ~/Pictures --target drive:me@example.com/1AbCdEf --mode mirror
  gdsync profile init work --source ./a --target ./b --source ./c --target drive:work/0XyZ --mode two-way`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileInit,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfileList,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var (
	profileSources         []string
	profileTargets         []string
	profileMode            string
	profileExclude         []string
	profileDefaultExcludes bool
	profileSettingsPath    string
	profileForce           bool
	profileNoVerify        bool
)

func init() {
	profileInitCmd.Flags().StringArrayVar(&profileSources, "source", nil, "Source location (repeatable)")
	profileInitCmd.Flags().StringArrayVar(&profileTargets, "target", nil, "Target location (repeatable)")
	profileInitCmd.Flags().StringVar(&profileMode, "mode", string(diff.ModeOneWayLR), fmt.Sprintf("Sync mode %v", diff.Modes()))
	profileInitCmd.Flags().StringSliceVar(&profileExclude, "exclude", nil, "Glob patterns to leave out of both sides")
	profileInitCmd.Flags().BoolVar(&profileDefaultExcludes, "default-excludes", false, "Add the default exclude patterns (.git/, .DS_Store, ...)")
	profileInitCmd.Flags().StringVar(&profileSettingsPath, "settings-path", "", "Where the document is written instead of the profiles directory")
	profileInitCmd.Flags().BoolVarP(&profileForce, "force", "f", false, "Overwrite an existing profile")
	profileInitCmd.Flags().BoolVar(&profileNoVerify, "no-verify", false, "Do not check that Drive folders exist")
	_ = profileInitCmd.MarkFlagRequired("source")
	_ = profileInitCmd.MarkFlagRequired("target")

	profileCmd.AddCommand(profileInitCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

// buildPairs matches --source and --target values by position
func buildPairs(sources, targets []string) ([]profile.FolderPair, error) {
	if len(sources) != len(targets) {
		return nil, fmt.Errorf("got %d --source and %d --target values, they must pair up", len(sources), len(targets))
	}
	pairs := make([]profile.FolderPair, 0, len(sources))
	for i := range sources {
		src, err := parseLocationArg(sources[i])
		if err != nil {
			return nil, fmt.Errorf("pair %d source: %w", i+1, err)
		}
		tgt, err := parseLocationArg(targets[i])
		if err != nil {
			return nil, fmt.Errorf("pair %d target: %w", i+1, err)
		}
		pairs = append(pairs, profile.FolderPair{Source: src, Target: tgt})
	}
	return pairs, nil
}

// parseLocationArg parses a location and makes local paths absolute so the
// profile works from any directory
func parseLocationArg(s string) (types.Location, error) {
	loc, err := types.ParseLocation(s)
	if err != nil {
		return loc, err
	}
	if loc.IsLocal() {
		abs, err := filepath.Abs(loc.Path)
		if err != nil {
			return loc, err
		}
		loc.Path = abs
	}
	return loc, nil
}

// describeDriveFolders checks every Drive location of pairs and records the
// folder's display name
func describeDriveFolders(ctx context.Context, pairs []profile.FolderPair) error {
	var store drive.Store
	describe := func(loc *types.Location) error {
		if !loc.IsDrive() {
			return nil
		}
		if store == nil {
			s, err := newDriveStore()
			if err != nil {
				return err
			}
			store = s
		}
		folder, err := drive.LookupFolder(ctx, store, loc.AccountID, loc.FolderID)
		if err != nil {
			return err
		}
		loc.FolderName = folder.Name
		return nil
	}

	for i := range pairs {
		if err := describe(&pairs[i].Source); err != nil {
			return err
		}
		if err := describe(&pairs[i].Target); err != nil {
			return err
		}
	}
	return nil
}

func runProfileInit(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)
	name := args[0]

	mode, err := diff.ParseMode(profileMode)
	if err != nil {
		return out.Fail("profile.init", err, utils.ErrCodeInvalidArgument)
	}
	pairs, err := buildPairs(profileSources, profileTargets)
	if err != nil {
		return out.Fail("profile.init", err, utils.ErrCodeInvalidArgument)
	}

	if !profileNoVerify {
		if err := describeDriveFolders(cmd.Context(), pairs); err != nil {
			return out.Fail("profile.init", err, utils.ErrCodeInvalidPath)
		}
	}

	store, err := openProfileStore()
	if err != nil {
		return out.Fail("profile.init", err, utils.ErrCodeUnknown)
	}

	path := store.Path(name)
	if profileSettingsPath != "" {
		path = profileSettingsPath
	}
	if !profileForce {
		if _, err := store.Load(path); err == nil {
			return out.WriteError("profile.init", utils.NewCLIError(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("Profile %s already exists, use --force to overwrite", name)).
				WithContext("path", path).
				Build())
		}
	}

	p := &profile.Profile{
		Version:      profile.CurrentVersion,
		Name:         name,
		FolderPairs:  pairs,
		SyncMode:     mode,
		Exclude:      profileExclude,
		SettingsPath: profileSettingsPath,
	}
	if profileDefaultExcludes {
		p.Exclude = append(exclude.DefaultPatterns(), p.Exclude...)
	}

	saved, err := store.SaveAs(p, path)
	if err != nil {
		return out.Fail("profile.init", err, utils.ErrCodeInvalidArgument)
	}

	out.Log("Profile %s saved to %s", p.Name, saved)
	return out.WriteSuccess("profile.init", profileView{Profile: p, Path: saved})
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)

	store, p, err := loadProfile(out, "profile.show", args[0])
	if err != nil {
		return err
	}
	path := p.SettingsPath
	if path == "" {
		path = store.Path(p.Name)
	}
	return out.WriteSuccess("profile.show", profileView{Profile: p, Path: path})
}

func runProfileList(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)

	store, err := openProfileStore()
	if err != nil {
		return out.Fail("profile.list", err, utils.ErrCodeUnknown)
	}
	paths, err := store.List()
	if err != nil {
		return out.Fail("profile.list", err, utils.ErrCodeUnknown)
	}

	items := profileListView{}
	for _, path := range paths {
		p, err := store.Load(path)
		if err != nil {
			items = append(items, profileListItem{Path: path, Error: utils.ErrorMessage(err)})
			continue
		}
		items = append(items, profileListItem{
			Name:      p.Name,
			Mode:      p.SyncMode,
			Pairs:     len(p.FolderPairs),
			Path:      path,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return out.WriteSuccess("profile.list", items)
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)

	store, err := openProfileStore()
	if err != nil {
		return out.Fail("profile.delete", err, utils.ErrCodeUnknown)
	}
	if err := store.Delete(args[0]); err != nil {
		return out.Fail("profile.delete", err, utils.ErrCodeUnknown)
	}

	out.Log("Profile %s deleted", args[0])
	return out.WriteSuccess("profile.delete", keyValueView{{Key: "deleted", Value: args[0]}})
}
