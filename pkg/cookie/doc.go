// Package cookie manages plain and AES-GCM encrypted cookies.
//
// mailsig keeps the last valid signature draft in an encrypted cookie so the
// form survives a reload without any server-side storage:
//
//	m := cookie.New(
//	    cookie.WithSecret(cfg.CookieSecret), // 32+ bytes, shorter secrets are ignored
//	    cookie.WithSecure(true),
//	)
//	if err := m.SetEncrypted(w, "mailsig_draft", string(payload), 30*24*3600); err != nil {
//	    // ErrNoSecret, or ErrTooLarge for drafts carrying an inline photo
//	}
//
// The encrypted value is base64url(nonce || ciphertext) with a key derived
// from SHA-256 of the secret. Values whose encoding exceeds [MaxValueSize]
// are rejected with [ErrTooLarge]. A value that fails authentication reads
// as [ErrDecrypt]; a missing cookie as [ErrNotFound].
package cookie
