package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dl-alexandre/gdsync/internal/logging"
	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/dl-alexandre/gdsync/pkg/version"
	json "github.com/goccy/go-json"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	serviceName        = "gdsync"
	tokenRefreshBuffer = 5 * time.Minute
)

// Manager stores account credentials and hands out authenticated clients
type Manager struct {
	configDir      string
	useKeyring     bool
	storage        StorageBackend
	oauthConfig    *oauth2.Config
	storageWarning string
	logger         logging.Logger

	// mu serializes refresh-and-save so two clients for one account don't race
	mu sync.Mutex
}

// ManagerOptions configures the auth manager
type ManagerOptions struct {
	ForceEncryptedFile bool // Force use of encrypted file storage
	ForcePlainFile     bool // Force use of plain file storage (insecure, dev only)
	Logger             logging.Logger
}

// NewManager creates a new auth manager
func NewManager(configDir string) *Manager {
	return NewManagerWithOptions(configDir, ManagerOptions{})
}

// NewManagerWithOptions creates a new auth manager with specific options
func NewManagerWithOptions(configDir string, opts ManagerOptions) *Manager {
	mgr := &Manager{
		configDir: configDir,
		logger:    opts.Logger,
	}
	if mgr.logger == nil {
		mgr.logger = logging.NewNoOpLogger()
	}

	switch {
	case opts.ForcePlainFile:
		mgr.storage = NewPlainFileStorage(configDir)
		mgr.storageWarning = "WARNING: Using unencrypted file storage. Credentials are stored in plain text."
	case opts.ForceEncryptedFile || !checkKeyringAvailable():
		storage, err := NewEncryptedFileStorage(configDir)
		if err != nil {
			mgr.storage = NewPlainFileStorage(configDir)
			mgr.storageWarning = fmt.Sprintf("WARNING: Encryption setup failed (%v). Using plain file storage.", err)
			break
		}
		mgr.storage = storage
		if !opts.ForceEncryptedFile {
			mgr.storageWarning = "INFO: System keyring not available. Using encrypted file storage."
		}
	default:
		mgr.storage = NewKeyringStorage(serviceName)
		mgr.useKeyring = true
	}

	return mgr
}

// checkKeyringAvailable tests if system keyring is available
func checkKeyringAvailable() bool {
	testKey := "gdsync-probe"
	if err := keyring.Set(serviceName, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(serviceName, testKey)
	return true
}

// SetOAuthConfig enables refreshing of OAuth tokens with the given client
func (m *Manager) SetOAuthConfig(clientID, clientSecret string, scopes []string) {
	if clientID == "" {
		m.oauthConfig = nil
		return
	}
	m.oauthConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

// ImportToken stores an OAuth2 token JSON (access_token, refresh_token,
// expiry) obtained elsewhere under account.
func (m *Manager) ImportToken(account string, tokenJSON []byte, scopes []string) error {
	if account == "" {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, "account name is required").Build())
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid token JSON: %v", err)).Build())
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"token JSON has neither access_token nor refresh_token").Build())
	}
	if len(scopes) == 0 {
		scopes = []string{utils.ScopeFull}
	}

	return m.SaveCredentials(account, &types.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiryDate:   token.Expiry,
		Scopes:       scopes,
		Type:         types.AuthTypeOAuth,
	})
}

// LoadCredentials loads stored credentials for an account
func (m *Manager) LoadCredentials(account string) (*types.Credentials, error) {
	data, err := m.storage.Load(account)
	if err != nil {
		return nil, err
	}

	var stored types.StoredCredentials
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	creds := &types.Credentials{
		AccessToken:      stored.AccessToken,
		RefreshToken:     stored.RefreshToken,
		Scopes:           stored.Scopes,
		Type:             stored.Type,
		ImpersonatedUser: stored.ImpersonatedUser,
	}
	if stored.ServiceAccountKey != "" {
		creds.ServiceAccountKey = []byte(stored.ServiceAccountKey)
	}
	if stored.ExpiryDate != "" {
		expiry, err := time.Parse(time.RFC3339, stored.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry date: %w", err)
		}
		creds.ExpiryDate = expiry
	}
	return creds, nil
}

// SaveCredentials saves credentials for an account
func (m *Manager) SaveCredentials(account string, creds *types.Credentials) error {
	stored := types.StoredCredentials{
		Account:           account,
		AccessToken:       creds.AccessToken,
		RefreshToken:      creds.RefreshToken,
		Scopes:            creds.Scopes,
		Type:              creds.Type,
		ServiceAccountKey: string(creds.ServiceAccountKey),
		ImpersonatedUser:  creds.ImpersonatedUser,
	}
	if !creds.ExpiryDate.IsZero() {
		stored.ExpiryDate = creds.ExpiryDate.UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := m.storage.Save(account, data); err != nil {
		return err
	}

	if err := m.addAccountToIndex(account); err != nil {
		m.logger.Warn("failed to update account index", logging.F("account", account), logging.F("error", err))
	}
	return nil
}

// DeleteCredentials removes credentials for an account
func (m *Manager) DeleteCredentials(account string) error {
	if err := m.storage.Delete(account); err != nil {
		if stderrors.Is(err, ErrCredentialsNotFound) {
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired, err.Error()).Build())
		}
		return err
	}

	if err := m.removeAccountFromIndex(account); err != nil {
		m.logger.Warn("failed to update account index", logging.F("account", account), logging.F("error", err))
	}
	return nil
}

// NeedsRefresh checks if credentials need refreshing
func (m *Manager) NeedsRefresh(creds *types.Credentials) bool {
	if creds.ExpiryDate.IsZero() {
		return creds.AccessToken == ""
	}
	return time.Now().Add(tokenRefreshBuffer).After(creds.ExpiryDate)
}

// ValidateScopes checks if credentials have required scopes
func (m *Manager) ValidateScopes(creds *types.Credentials, required []string) error {
	scopeSet := make(map[string]bool, len(creds.Scopes))
	for _, s := range creds.Scopes {
		scopeSet[s] = true
	}
	// the full drive scope implies the narrower ones
	if scopeSet[utils.ScopeFull] {
		return nil
	}
	for _, req := range required {
		if !scopeSet[req] {
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodePermissionDenied,
				fmt.Sprintf("Missing required scope: %s. Re-import the account with a token carrying it.", req)).Build())
		}
	}
	return nil
}

// HTTPClient returns an authenticated client for account. OAuth tokens are
// refreshed through the configured client and the refreshed token is saved.
func (m *Manager) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	creds, err := m.LoadCredentials(account)
	if err != nil {
		if stderrors.Is(err, ErrCredentialsNotFound) {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
				fmt.Sprintf("No credentials for account '%s'. Run 'gdsync accounts import %s' first.", account, account)).
				WithContext("account", account).
				Build())
		}
		return nil, err
	}

	if creds.Type == types.AuthTypeServiceAccount {
		return m.serviceAccountClient(ctx, creds)
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiryDate,
	}

	if m.oauthConfig == nil || creds.RefreshToken == "" {
		if !creds.ExpiryDate.IsZero() && time.Now().After(creds.ExpiryDate) {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired,
				fmt.Sprintf("Token for account '%s' expired and cannot be refreshed without an OAuth client.", account)).
				WithContext("account", account).
				Build())
		}
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)), nil
	}

	source := &persistingTokenSource{
		base:    m.oauthConfig.TokenSource(ctx, token),
		manager: m,
		account: account,
		creds:   creds,
		last:    token.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source)), nil
}

// DriveService builds a Drive v3 service authenticated as account
func (m *Manager) DriveService(ctx context.Context, account string) (*drive.Service, error) {
	client, err := m.HTTPClient(ctx, account)
	if err != nil {
		return nil, err
	}
	return drive.NewService(ctx, option.WithHTTPClient(client), option.WithUserAgent(version.UserAgent()))
}

// persistingTokenSource saves tokens back to storage whenever a refresh
// yields a new access token.
type persistingTokenSource struct {
	base    oauth2.TokenSource
	manager *Manager
	account string
	creds   *types.Credentials
	last    string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired,
			fmt.Sprintf("Token refresh failed for account '%s': %v", s.account, err)).
			WithContext("account", s.account).
			Build())
	}

	s.manager.mu.Lock()
	defer s.manager.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		refreshed := *s.creds
		refreshed.AccessToken = token.AccessToken
		refreshed.ExpiryDate = token.Expiry
		if token.RefreshToken != "" {
			refreshed.RefreshToken = token.RefreshToken
		}
		if err := s.manager.SaveCredentials(s.account, &refreshed); err != nil {
			s.manager.logger.Warn("failed to persist refreshed token",
				logging.F("account", s.account), logging.F("error", err))
		}
	}
	return token, nil
}

// GetStorageBackend returns the name of the storage backend being used
func (m *Manager) GetStorageBackend() string {
	return m.storage.Name()
}

// GetStorageWarning returns any warning message about the storage backend
func (m *Manager) GetStorageWarning() string {
	return m.storageWarning
}
