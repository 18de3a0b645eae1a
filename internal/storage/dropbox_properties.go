package storage

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jefferyharrell/Captioner-backend/internal/metrics"
)

// Captions live in the Dropbox file-properties API: one named template
// holding a single string field per photo. The template must exist on the
// account; `captioner authorize` documents the required scopes.
const (
	dropboxPropertiesGetURL       = "https://api.dropboxapi.com/2/file_properties/properties/get"
	dropboxPropertiesOverwriteURL = "https://api.dropboxapi.com/2/file_properties/properties/overwrite"
	dropboxPropertiesRemoveURL    = "https://api.dropboxapi.com/2/file_properties/properties/remove"

	captionTemplateName = "CaptionerPhotoTags"
	captionFieldName    = "caption"
)

type propertyField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// propertyGroup tolerates both spellings of the template reference the API
// uses in responses.
type propertyGroup struct {
	TemplateID   string          `json:"template_id"`
	TemplateName string          `json:"template_name"`
	Fields       []propertyField `json:"fields"`
}

func (g propertyGroup) matchesTemplate(template string) bool {
	return g.TemplateID == template || g.TemplateName == template
}

// GetCaption returns the caption stored for the photo, or nil when none is
// set. The provider reports an absent property group as a 409, which is a
// normal no-caption state here, not an error.
func (d *DropboxBackend) GetCaption(ctx context.Context, identifier string) (*string, error) {
	token, err := d.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := d.postJSON(ctx, metrics.OpPropertiesGet, d.propertiesGetURL, token, map[string]interface{}{
		"path":               "/" + identifier,
		"property_templates": []string{captionTemplateName},
	})
	if err != nil {
		return nil, err
	}
	if status == statusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, NewAPIError("dropbox API error", status, string(body))
	}

	var result struct {
		PropertyGroups []propertyGroup `json:"property_groups"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, NewErrorWithCause(CodeRemoteRequest, "dropbox API request failed", err)
	}

	for _, group := range result.PropertyGroups {
		if !group.matchesTemplate(captionTemplateName) {
			continue
		}
		for _, field := range group.Fields {
			if field.Name == captionFieldName {
				value := field.Value
				return &value, nil
			}
		}
	}
	return nil, nil
}

// SetCaption stores the caption, creating or overwriting as needed
func (d *DropboxBackend) SetCaption(ctx context.Context, identifier, caption string) error {
	token, err := d.ensureToken(ctx)
	if err != nil {
		return err
	}

	status, body, err := d.postJSON(ctx, metrics.OpPropertiesOverwrite, d.propertiesOverwriteURL, token, map[string]interface{}{
		"path": "/" + identifier,
		"property_groups": []map[string]interface{}{
			{
				"template_id": captionTemplateName,
				"fields": []propertyField{
					{Name: captionFieldName, Value: caption},
				},
			},
		},
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return NewAPIError("dropbox API error", status, string(body))
	}
	return nil
}

// DeleteCaption removes the caption. A 409 (already absent) is success.
func (d *DropboxBackend) DeleteCaption(ctx context.Context, identifier string) error {
	token, err := d.ensureToken(ctx)
	if err != nil {
		return err
	}

	status, body, err := d.postJSON(ctx, metrics.OpPropertiesRemove, d.propertiesRemoveURL, token, map[string]interface{}{
		"path":                 "/" + identifier,
		"property_template_id": captionTemplateName,
		"property_field_names": []string{captionFieldName},
	})
	if err != nil {
		return err
	}
	if status == statusNotFound {
		return nil
	}
	if status != http.StatusOK {
		return NewAPIError("dropbox API error", status, string(body))
	}
	return nil
}
