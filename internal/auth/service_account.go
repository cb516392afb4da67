package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ServiceAccountKey is the subset of a service account key file we check
type ServiceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

// ImportServiceAccount stores a service account key under account. Tokens are
// minted from the key on demand, so the account never expires.
func (m *Manager) ImportServiceAccount(account string, keyData []byte, scopes []string, impersonateUser string) error {
	if impersonateUser != "" && !strings.Contains(impersonateUser, "@") {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"impersonate user must be an email address").Build())
	}

	var key ServiceAccountKey
	if err := json.Unmarshal(keyData, &key); err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("failed to parse service account key: %v", err)).Build())
	}
	switch {
	case key.Type != "service_account":
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid service account key type: %q", key.Type)).Build())
	case key.ClientEmail == "":
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"missing client_email in service account key").Build())
	case key.PrivateKey == "":
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"missing private_key in service account key").Build())
	}

	if account == "" {
		account = key.ClientEmail
	}
	if len(scopes) == 0 {
		scopes = []string{utils.ScopeFull}
	}

	return m.SaveCredentials(account, &types.Credentials{
		Type:              types.AuthTypeServiceAccount,
		Scopes:            scopes,
		ServiceAccountKey: keyData,
		ImpersonatedUser:  impersonateUser,
	})
}

func (m *Manager) serviceAccountClient(ctx context.Context, creds *types.Credentials) (*http.Client, error) {
	params := google.CredentialsParams{
		Scopes:  creds.Scopes,
		Subject: creds.ImpersonatedUser,
	}
	gcreds, err := google.CredentialsFromJSONWithParams(ctx, creds.ServiceAccountKey, params)
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
			fmt.Sprintf("stored service account key is unusable: %v", err)).Build())
	}
	return oauth2.NewClient(ctx, gcreds.TokenSource), nil
}
