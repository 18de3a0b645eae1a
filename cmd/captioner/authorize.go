package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// Scopes the caption workflow needs; enable them in the Dropbox App
// Console before authorizing.
var dropboxScopes = []string{
	"files.metadata.write",
	"files.metadata.read",
	"files.content.read",
}

var dropboxOAuthEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.dropbox.com/oauth2/authorize",
	TokenURL: "https://api.dropboxapi.com/oauth2/token",
}

// newOAuthConfig builds the OAuth2 client configuration for the Dropbox
// authorization-code flow.
func newOAuthConfig(appKey, appSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     appKey,
		ClientSecret: appSecret,
		Endpoint:     dropboxOAuthEndpoint,
		RedirectURL:  redirectURI,
		Scopes:       dropboxScopes,
	}
}

// authorizeURL builds the consent URL the user opens in a browser.
// token_access_type=offline makes Dropbox issue a refresh token alongside
// the short-lived access token.
func authorizeURL(oauthConfig *oauth2.Config) string {
	return oauthConfig.AuthCodeURL("",
		oauth2.SetAuthURLParam("token_access_type", "offline"))
}

// newAuthorizeCommand guides the user through the one-time OAuth2
// authorization-code flow and prints the resulting long-lived refresh
// token for the configuration.
func newAuthorizeCommand() *cobra.Command {
	var redirectURI string

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Obtain a Dropbox refresh token via the OAuth2 browser flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			appKey := cfg.Storage.Dropbox.AppKey
			appSecret := cfg.Storage.Dropbox.AppSecret
			if appKey == "" || appSecret == "" {
				return fmt.Errorf("dropbox app_key and app_secret must be configured before authorizing")
			}

			oauthConfig := newOAuthConfig(appKey, appSecret, redirectURI)
			authURL := authorizeURL(oauthConfig)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "1. Open the following URL in your browser and authorize the app:")
			fmt.Fprintln(out, authURL)
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, "2. After authorizing you will be redirected to the redirect URI.")
			fmt.Fprint(out, "   Paste the 'code' query parameter here: ")

			reader := bufio.NewReader(cmd.InOrStdin())
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			token, err := oauthConfig.Exchange(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("failed to exchange authorization code: %w", err)
			}
			if token.RefreshToken == "" {
				return fmt.Errorf("no refresh token in response; check the app's token access type")
			}

			fmt.Fprintln(out, "")
			fmt.Fprintln(out, "Add this to your configuration:")
			fmt.Fprintf(out, "CAPTIONER_STORAGE_DROPBOX_REFRESH_TOKEN=%s\n", token.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "http://localhost:8080/", "OAuth2 redirect URI registered with the Dropbox app")
	return cmd
}
