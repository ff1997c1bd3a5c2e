package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

var opLogoData = contentapi.MustOperation(`
query GetLogoData {
  siteLogo {
    sourceUrl
  }
  logoWidth
  logoHeight
  displaySiteTitle
  generalSettings {
    title
  }
}`)

var opUpdateLogo = contentapi.MustOperation(`
mutation UpdateLogoSettings($width: Int, $height: Int, $displayTitle: Boolean) {
  updateLogoSettings(input: {width: $width, height: $height, displayTitle: $displayTitle}) {
    success
  }
}`)

var opUpdateProfile = contentapi.MustOperation(`
mutation UpdateUserProfile($userId: Int!, $displayName: String, $mediaId: Int) {
  updateUserProfile(input: {userId: $userId, displayName: $displayName, mediaId: $mediaId}) {
    success
  }
}`)

// LogoSettings fetches the site branding block.
func (c *SyncClient) LogoSettings(ctx context.Context) (*domain.LogoSettings, error) {
	raw, qErr := c.Query(ctx, opLogoData, nil)
	var partial *domain.PartialDataError
	if qErr != nil && !errors.As(qErr, &partial) {
		return nil, qErr
	}

	var payload struct {
		SiteLogo *struct {
			SourceURL string `json:"sourceUrl"`
		} `json:"siteLogo"`
		LogoWidth        int  `json:"logoWidth"`
		LogoHeight       int  `json:"logoHeight"`
		DisplaySiteTitle bool `json:"displaySiteTitle"`
		GeneralSettings  struct {
			Title string `json:"title"`
		} `json:"generalSettings"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("content.LogoSettings: decode: %w", domain.ErrTransient)
	}

	settings := &domain.LogoSettings{
		Width:        payload.LogoWidth,
		Height:       payload.LogoHeight,
		DisplayTitle: payload.DisplaySiteTitle,
		SiteTitle:    payload.GeneralSettings.Title,
	}
	if payload.SiteLogo != nil {
		settings.SourceURL = payload.SiteLogo.SourceURL
	}
	return settings, qErr
}

// UpdateLogoSettings overwrites the branding scalars. Last write wins;
// there is no read-modify-write cycle to protect.
func (c *SyncClient) UpdateLogoSettings(ctx context.Context, width, height int, displayTitle bool) error {
	raw, err := c.Mutate(ctx, opUpdateLogo, map[string]any{
		"width":        width,
		"height":       height,
		"displayTitle": displayTitle,
	})
	if err != nil {
		return err
	}
	return checkSuccess(raw, "updateLogoSettings")
}

// UpdateProfile changes the display name and avatar media of one account.
func (c *SyncClient) UpdateProfile(ctx context.Context, userID int64, displayName string, mediaID int64) error {
	vars := map[string]any{"userId": userID}
	if displayName != "" {
		vars["displayName"] = displayName
	}
	if mediaID != 0 {
		vars["mediaId"] = mediaID
	}

	raw, err := c.Mutate(ctx, opUpdateProfile, vars)
	if err != nil {
		return err
	}
	return checkSuccess(raw, "updateUserProfile")
}

// checkSuccess decodes a {field: {success}} mutation payload.
func checkSuccess(raw json.RawMessage, field string) error {
	var payload map[string]struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("content.%s: decode: %w", field, domain.ErrTransient)
	}
	if !payload[field].Success {
		return domain.NewValidationError(field, "the update was not applied")
	}
	return nil
}
