package cli

import (
	"path/filepath"

	"github.com/dl-alexandre/gdsync/internal/auth"
	"github.com/dl-alexandre/gdsync/internal/drive"
	"github.com/dl-alexandre/gdsync/internal/profile"
	syncengine "github.com/dl-alexandre/gdsync/internal/sync"
	"github.com/dl-alexandre/gdsync/internal/sync/index"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// localFs backs every local location and the profile store
var localFs afero.Fs = afero.NewOsFs()

func newAuthManager() (*auth.Manager, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}
	mgr := auth.NewManagerWithOptions(configDir, auth.ManagerOptions{Logger: logger})
	if id, secret, ok := auth.ResolveOAuthClient(appConfig.OAuthClientID, appConfig.OAuthClientSecret); ok {
		mgr.SetOAuthConfig(id, secret, []string{utils.ScopeFull})
	}
	return mgr, nil
}

func usesDrive(p *profile.Profile) bool {
	return lo.SomeBy(p.FolderPairs, func(fp profile.FolderPair) bool {
		return fp.Source.IsDrive() || fp.Target.IsDrive()
	})
}

// newEngine builds an engine for p. The credential store is only opened
// when one of the pairs reaches into Drive.
func newEngine(p *profile.Profile) (*syncengine.Engine, error) {
	var store drive.Store
	if usesDrive(p) {
		var err error
		if store, err = newDriveStore(); err != nil {
			return nil, err
		}
	}
	return syncengine.NewEngine(localFs, store, logger), nil
}

func newDriveStore() (*drive.Service, error) {
	mgr, err := newAuthManager()
	if err != nil {
		return nil, err
	}
	return drive.NewService(mgr, drive.Options{
		MaxRetries:   appConfig.MaxRetries,
		RetryDelayMs: appConfig.RetryBaseDelay,
		Logger:       logger,
	}), nil
}

func openProfileStore() (*profile.Store, error) {
	dir, err := getProfilesDir()
	if err != nil {
		return nil, err
	}
	return profile.NewStoreFs(localFs, dir), nil
}

func openHistory() (*index.DB, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}
	return index.Open(filepath.Join(configDir, index.FileName))
}

// loadProfile resolves a profile by name or path into a command error
func loadProfile(out *OutputWriter, command, ref string) (*profile.Store, *profile.Profile, error) {
	store, err := openProfileStore()
	if err != nil {
		return nil, nil, out.Fail(command, err, utils.ErrCodeUnknown)
	}
	p, err := store.Load(ref)
	if err != nil {
		return nil, nil, out.Fail(command, err, utils.ErrCodeProfileNotFound)
	}
	return store, p, nil
}
