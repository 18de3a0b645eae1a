package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jefferyharrell/Captioner-backend/internal/metrics"
)

// Dropbox API endpoints
const (
	dropboxTokenURL              = "https://api.dropbox.com/oauth2/token"
	dropboxListFolderURL         = "https://api.dropboxapi.com/2/files/list_folder"
	dropboxListFolderContinueURL = "https://api.dropboxapi.com/2/files/list_folder/continue"
	dropboxDownloadURL           = "https://content.dropboxapi.com/2/files/download"

	dropboxRequestTimeout = 10 * time.Second

	statusNotFound = http.StatusConflict // Dropbox reports missing paths/properties as 409
)

// DropboxBackend implements PhotoSource and CaptionStore against the
// Dropbox HTTP API.
//
// The access token is acquired lazily from the configured refresh token on
// the first remote call and cached for the lifetime of the instance. No
// expiry is tracked and a 401 does not trigger a re-refresh; a host that
// needs a fresh token constructs a fresh backend. The cache is guarded by
// a mutex so at most one refresh is in flight per instance.
type DropboxBackend struct {
	appKey       string
	appSecret    string
	refreshToken string
	basePath     string

	client   *http.Client
	log      *logrus.Entry
	recorder *metrics.Recorder

	// Endpoint URLs, overridable in tests
	tokenURL               string
	listFolderURL          string
	listFolderContinueURL  string
	downloadURL            string
	propertiesGetURL       string
	propertiesOverwriteURL string
	propertiesRemoveURL    string

	mu    sync.Mutex
	token string
}

// NewDropboxBackend creates a new Dropbox storage backend. No I/O happens
// here; credentials are checked on the first remote call.
func NewDropboxBackend(config Config) *DropboxBackend {
	return &DropboxBackend{
		appKey:       config.Dropbox.AppKey,
		appSecret:    config.Dropbox.AppSecret,
		refreshToken: config.Dropbox.RefreshToken,
		basePath:     normalizeBasePath(config.Dropbox.RootPath),

		client:   &http.Client{Timeout: dropboxRequestTimeout},
		log:      logrus.WithField("component", "dropbox_storage"),
		recorder: metrics.NewRecorder(),

		tokenURL:               dropboxTokenURL,
		listFolderURL:          dropboxListFolderURL,
		listFolderContinueURL:  dropboxListFolderContinueURL,
		downloadURL:            dropboxDownloadURL,
		propertiesGetURL:       dropboxPropertiesGetURL,
		propertiesOverwriteURL: dropboxPropertiesOverwriteURL,
		propertiesRemoveURL:    dropboxPropertiesRemoveURL,
	}
}

// Metrics returns the recorder counting this backend's remote calls
func (d *DropboxBackend) Metrics() *metrics.Recorder {
	return d.recorder
}

func normalizeBasePath(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// ensureToken returns the cached access token, refreshing it first if none
// is cached yet. Missing credentials fail before any network call.
func (d *DropboxBackend) ensureToken(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.token != "" {
		return d.token, nil
	}
	if d.appKey == "" || d.appSecret == "" || d.refreshToken == "" {
		return "", ErrCredentialsNotSet
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {d.refreshToken},
		"client_id":     {d.appKey},
		"client_secret": {d.appSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", NewErrorWithCause(CodeRemoteRequest, "failed to obtain dropbox access token", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		d.recorder.RecordRemoteCall(metrics.OpRefreshToken, false)
		return "", NewErrorWithCause(CodeRemoteRequest, "failed to obtain dropbox access token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		d.recorder.RecordRemoteCall(metrics.OpRefreshToken, false)
		return "", NewErrorWithCause(CodeRemoteRequest, "failed to obtain dropbox access token", err)
	}

	if resp.StatusCode != http.StatusOK {
		d.recorder.RecordRemoteCall(metrics.OpRefreshToken, false)
		return "", NewAPIError("failed to obtain dropbox access token", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		d.recorder.RecordRemoteCall(metrics.OpRefreshToken, false)
		return "", ErrAccessTokenUnavailable
	}

	d.recorder.RecordRemoteCall(metrics.OpRefreshToken, true)
	d.log.Debug("obtained dropbox access token")
	d.token = tokenResp.AccessToken
	return d.token, nil
}

// doAPI executes one provider call and returns the status code and body.
// Transport failures come back as RemoteRequest errors; status handling is
// the caller's business.
func (d *DropboxBackend) doAPI(op string, req *http.Request) (int, []byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		d.recorder.RecordRemoteCall(op, false)
		return 0, nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		d.recorder.RecordRemoteCall(op, false)
		return 0, nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}

	d.recorder.RecordRemoteCall(op, resp.StatusCode == http.StatusOK)
	return resp.StatusCode, body, nil
}

// postJSON builds and executes an authorized JSON-RPC style POST
func (d *DropboxBackend) postJSON(ctx context.Context, op, endpoint, token string, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return d.doAPI(op, req)
}

type listFolderEntry struct {
	Tag         string `json:".tag"`
	PathDisplay string `json:"path_display"`
}

type listFolderResult struct {
	Entries []listFolderEntry `json:"entries"`
	HasMore bool              `json:"has_more"`
	Cursor  string            `json:"cursor"`
}

// ListPhotos lists image files under the configured root, recursively,
// following the provider's pagination. The provider's entry order is
// preserved; a failure on any page discards the whole listing.
func (d *DropboxBackend) ListPhotos(ctx context.Context) ([]string, error) {
	token, err := d.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := d.postJSON(ctx, metrics.OpListFolder, d.listFolderURL, token, map[string]interface{}{
		"path":      d.basePath,
		"recursive": true,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, NewAPIError("dropbox API error", status, string(body))
	}

	var result listFolderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}

	photos := filterImageEntries(result.Entries)

	for result.HasMore {
		status, body, err = d.postJSON(ctx, metrics.OpListFolder, d.listFolderContinueURL, token, map[string]interface{}{
			"cursor": result.Cursor,
		})
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, NewAPIError("dropbox API error", status, string(body))
		}

		result = listFolderResult{}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
		}
		photos = append(photos, filterImageEntries(result.Entries)...)
	}

	d.log.WithField("count", len(photos)).Debug("listed dropbox photos")
	return photos, nil
}

// filterImageEntries keeps file entries with an image extension and strips
// the leading slash from their display paths.
func filterImageEntries(entries []listFolderEntry) []string {
	var photos []string
	for _, entry := range entries {
		if entry.Tag != "file" || !isImagePath(entry.PathDisplay) {
			continue
		}
		photos = append(photos, strings.TrimPrefix(entry.PathDisplay, "/"))
	}
	return photos
}

func isImagePath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg") ||
		strings.HasSuffix(lower, ".png")
}

// GetPhoto downloads the raw photo bytes. The download path is re-rooted
// under the fixed /photos/ prefix, independent of the configured listing
// root; identifiers from ListPhotos are only path-compatible with it when
// the root is exactly /photos.
func (d *DropboxBackend) GetPhoto(ctx context.Context, identifier string) ([]byte, error) {
	token, err := d.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	apiArg, err := json.Marshal(map[string]string{"path": "/photos/" + identifier})
	if err != nil {
		return nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.downloadURL, nil)
	if err != nil {
		return nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Dropbox-API-Arg", string(apiArg))

	status, body, err := d.doAPI(metrics.OpDownload, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, NewAPIError("dropbox API error", status, string(body))
	}

	return body, nil
}
