package handlers

import (
	"encoding/json"
	"errors"

	"github.com/dmitrymomot/mailsig/internal"
	"github.com/dmitrymomot/mailsig/pkg/cookie"
	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
	"github.com/dmitrymomot/mailsig/pkg/logger"
)

const (
	draftCookie = "mailsig_draft"
	draftMaxAge = 30 * 24 * 60 * 60
)

// loadDraft returns the last valid signature the browser kept. Missing or
// unreadable drafts are not errors.
func loadDraft(c internal.Context) (SignatureRequest, bool) {
	raw, err := c.CookieEncrypted(draftCookie)
	if err != nil {
		if !errors.Is(err, cookie.ErrNotFound) && !errors.Is(err, cookie.ErrNoSecret) {
			c.LogDebug("draft cookie unreadable", logger.Error(err))
		}
		return SignatureRequest{}, false
	}

	var req SignatureRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		c.LogDebug("draft cookie malformed", logger.Error(err))
		return SignatureRequest{}, false
	}
	req.Normalize()
	if req.Validate() != nil {
		return SignatureRequest{}, false
	}
	return req, true
}

// saveDraft stores req in the encrypted draft cookie. An embedded photo is
// dropped when it does not fit; the rest of the draft is still kept.
func saveDraft(c internal.Context, req SignatureRequest) {
	err := writeDraft(c, req)
	if errors.Is(err, cookie.ErrTooLarge) && imageproxy.IsEmbedded(req.PhotoURL) {
		req.PhotoURL = ""
		err = writeDraft(c, req)
	}

	switch {
	case err == nil:
	case errors.Is(err, cookie.ErrNoSecret):
		// Drafts are disabled without COOKIE_SECRET.
	case errors.Is(err, cookie.ErrTooLarge):
		c.DeleteCookie(draftCookie)
	default:
		c.LogWarn("draft cookie not saved", logger.Error(err))
	}
}

func writeDraft(c internal.Context, req SignatureRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return c.SetCookieEncrypted(draftCookie, string(b), draftMaxAge)
}
