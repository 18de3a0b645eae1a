package main

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the command tree with the given args and returns the
// combined output.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"unknown", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}

	for _, tt := range tests {
		name := tt.input
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			setupLogging(tt.input)
			assert.Equal(t, tt.expected, logrus.GetLevel())

			formatter, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
			require.True(t, ok, "Formatter should be JSONFormatter")
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestAuthorizeURL(t *testing.T) {
	oauthConfig := newOAuthConfig("test-app-key", "test-app-secret", "http://localhost:9999/")

	parsed, err := url.Parse(authorizeURL(oauthConfig))
	require.NoError(t, err)

	assert.Equal(t, "www.dropbox.com", parsed.Host)
	assert.Equal(t, "/oauth2/authorize", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "offline", query.Get("token_access_type"))
	assert.Equal(t, "test-app-key", query.Get("client_id"))
	assert.Equal(t, "http://localhost:9999/", query.Get("redirect_uri"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Contains(t, query.Get("scope"), "files.content.read")
}

func TestAuthorizeCommand(t *testing.T) {
	t.Run("prints the offline-access consent URL", func(t *testing.T) {
		t.Setenv("CAPTIONER_STORAGE_DROPBOX_APP_KEY", "test-app-key")
		t.Setenv("CAPTIONER_STORAGE_DROPBOX_APP_SECRET", "test-app-secret")

		// An empty code aborts the flow after the URL is printed, before
		// any network call.
		out, err := runCommand(t, "\n",
			"authorize", "--redirect-uri", "http://localhost:9999/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no authorization code provided")

		assert.Contains(t, out, "token_access_type=offline")
		assert.Contains(t, out, "client_id=test-app-key")
		assert.Contains(t, out, url.QueryEscape("http://localhost:9999/"))
	})

	t.Run("requires app credentials", func(t *testing.T) {
		t.Setenv("CAPTIONER_STORAGE_DROPBOX_APP_KEY", "")
		t.Setenv("CAPTIONER_STORAGE_DROPBOX_APP_SECRET", "")

		_, err := runCommand(t, "\n", "authorize")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app_key")
	})
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("b"), 0644))

	out, err := runCommand(t, "",
		"list", "--backend", "filesystem", "--storage-root", dir)
	require.NoError(t, err)

	lines := strings.Fields(out)
	assert.ElementsMatch(t, []string{"a.jpg", "b.png"}, lines)
}

func TestRootCommandFlags(t *testing.T) {
	root := newRootCommand()

	for _, flag := range []string{"config", "backend", "storage-root", "catalog-path", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %s", flag)
	}

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"list", "get", "caption", "rescan", "authorize"})
}
