package recipe

import (
	"fmt"
	"net/url"
)

// SharePayload is handed to the browser's share sheet, or copied to the
// clipboard when no share sheet is available.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// NewSharePayload builds the payload for a recipe page at pageURL.
func NewSharePayload(name, pageURL string) (SharePayload, error) {
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() {
		return SharePayload{}, ErrInvalidShareURL
	}
	return SharePayload{
		Title: name,
		Text:  fmt.Sprintf("Check out this recipe: %s", name),
		URL:   u.String(),
	}, nil
}
