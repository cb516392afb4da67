package auth

// BundledOAuthClientID and BundledOAuthClientSecret can be set at build time
// via -ldflags. They are used for token refresh when the config names no client.
var (
	BundledOAuthClientID     string
	BundledOAuthClientSecret string
)

// ResolveOAuthClient picks the configured client, falling back to the bundled one
func ResolveOAuthClient(configID, configSecret string) (string, string, bool) {
	if configID != "" {
		return configID, configSecret, true
	}
	if BundledOAuthClientID == "" {
		return "", "", false
	}
	return BundledOAuthClientID, BundledOAuthClientSecret, true
}
