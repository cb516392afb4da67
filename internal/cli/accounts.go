package cli

import (
	"fmt"
	"os"

	"github.com/dl-alexandre/gdsync/internal/types"
	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Drive account credentials",
	Long: `Manage the Drive accounts that profiles refer to. Credentials are kept in
the system keyring, or in an encrypted file when no keyring is available.`,
}

var accountsImportCmd = &cobra.Command{
	Use:   "import <account>",
	Short: "Store credentials for an account",
	Long: `Store credentials under an account name. Use --token-file for an OAuth2
token JSON (access_token, refresh_token, expiry) or --service-account for a
service account key file.`,
	Args: cobra.ExactArgs(1),
	RunE: runAccountsImport,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountsList,
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove <account>",
	Short: "Delete stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsRemove,
}

var (
	accountTokenFile      string
	accountServiceAccount string
	accountImpersonate    string
	accountScopes         []string
)

func init() {
	accountsImportCmd.Flags().StringVar(&accountTokenFile, "token-file", "", "Path to an OAuth2 token JSON file")
	accountsImportCmd.Flags().StringVar(&accountServiceAccount, "service-account", "", "Path to a service account JSON key file")
	accountsImportCmd.Flags().StringVar(&accountImpersonate, "impersonate-user", "", "User the service account acts as (domain-wide delegation)")
	accountsImportCmd.Flags().StringSliceVar(&accountScopes, "scopes", nil, "OAuth scopes (default: full Drive access)")
	accountsImportCmd.MarkFlagsMutuallyExclusive("token-file", "service-account")
	accountsImportCmd.MarkFlagsOneRequired("token-file", "service-account")

	accountsCmd.AddCommand(accountsImportCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsRemoveCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccountsImport(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)
	account := args[0]

	mgr, err := newAuthManager()
	if err != nil {
		return out.Fail("accounts.import", err, utils.ErrCodeUnknown)
	}
	if warning := mgr.GetStorageWarning(); warning != "" {
		out.Log("%s", warning)
	}

	kind := types.AuthTypeOAuth
	path := accountTokenFile
	if accountServiceAccount != "" {
		kind = types.AuthTypeServiceAccount
		path = accountServiceAccount
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return out.WriteError("accounts.import", utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("Failed to read %s: %v", path, err)).Build())
	}

	if kind == types.AuthTypeServiceAccount {
		err = mgr.ImportServiceAccount(account, data, accountScopes, accountImpersonate)
	} else {
		err = mgr.ImportToken(account, data, accountScopes)
	}
	if err != nil {
		return out.Fail("accounts.import", err, utils.ErrCodeInvalidArgument)
	}

	out.Log("Credentials stored for account: %s", account)
	return out.WriteSuccess("accounts.import", keyValueView{
		{Key: "account", Value: account},
		{Key: "type", Value: string(kind)},
		{Key: "storageBackend", Value: mgr.GetStorageBackend()},
	})
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)

	mgr, err := newAuthManager()
	if err != nil {
		return out.Fail("accounts.list", err, utils.ErrCodeUnknown)
	}
	if warning := mgr.GetStorageWarning(); warning != "" && globalFlags.Verbose {
		out.Log("%s", warning)
	}

	accounts, err := mgr.ListAccounts()
	if err != nil {
		return out.WriteError("accounts.list", utils.NewCLIError(utils.ErrCodeUnknown,
			fmt.Sprintf("Failed to list accounts: %v", err)).Build())
	}

	view := accountsView{Backend: mgr.GetStorageBackend(), Accounts: []accountInfo{}}
	for _, account := range accounts {
		info := accountInfo{Account: account}
		creds, err := mgr.LoadCredentials(account)
		if err != nil {
			info.Error = utils.ErrorMessage(err)
		} else {
			info.Type = string(creds.Type)
			info.ImpersonatedUser = creds.ImpersonatedUser
			info.Expiry = creds.ExpiryDate
		}
		view.Accounts = append(view.Accounts, info)
	}
	return out.WriteSuccess("accounts.list", view)
}

func runAccountsRemove(cmd *cobra.Command, args []string) error {
	out := newOutput(cmd)
	account := args[0]

	mgr, err := newAuthManager()
	if err != nil {
		return out.Fail("accounts.remove", err, utils.ErrCodeUnknown)
	}
	if err := mgr.DeleteCredentials(account); err != nil {
		return out.WriteError("accounts.remove", utils.NewCLIError(utils.ErrCodeAuthRequired,
			fmt.Sprintf("No credentials found for account '%s'", account)).Build())
	}

	out.Log("Credentials removed for account: %s", account)
	return out.WriteSuccess("accounts.remove", keyValueView{
		{Key: "account", Value: account},
		{Key: "status", Value: "removed"},
	})
}
