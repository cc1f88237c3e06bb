// Package handlers contains HTTP handlers for Music-City-Go. This file groups
// the Spotify OAuth login and callback endpoints. The state value sent to
// Spotify is signed and stored in a cookie so the callback can verify it
// without server-side session storage.

package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

const stateCookie = "oauth_state"

// signValue computes an HMAC signature for value and appends it using the
// format value|signature. The signature is base64 URL encoded so it can be
// safely stored in cookies.
func signValue(value string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	sig := mac.Sum(nil)
	return value + "|" + base64.RawURLEncoding.EncodeToString(sig)
}

// verifyValue checks the HMAC signature appended to signed. It returns the
// original value and true when the signature matches the provided key.
func verifyValue(signed string, key []byte) (string, bool) {
	parts := strings.Split(signed, "|")
	if len(parts) != 2 {
		return "", false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(parts[0]))
	expected := mac.Sum(nil)
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || !hmac.Equal(expected, sig) {
		return "", false
	}
	return parts[0], true
}

// Login begins the Spotify OAuth flow and redirects the user to the
// authorization URL with a signed state value stored in a cookie.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    signValue(state, app.SignKey),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	authURL := app.Authenticator.AuthURL(state)
	requestLogger(r).WithField("redirect", authURL).Info("starting spotify login")
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback completes the OAuth flow by exchanging the authorization code
// for a token, then hands the access token to the frontend as a query
// parameter.
func (app *Application) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "state mismatch")
		return
	}
	state, ok := verifyValue(c.Value, app.SignKey)
	if !ok || r.URL.Query().Get("state") != state {
		respondJSONError(w, http.StatusBadRequest, "state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	token, err := app.Authenticator.Token(state, r)
	if err != nil {
		requestLogger(r).WithError(err).Warn("spotify token exchange failed")
		respondJSONError(w, http.StatusBadGateway, "authentication failed")
		return
	}

	dest, err := url.Parse(app.FrontendURL)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "invalid frontend url")
		return
	}
	q := dest.Query()
	q.Set("token", token.AccessToken)
	dest.RawQuery = q.Encode()
	requestLogger(r).Info("spotify token retrieved, redirecting to frontend")
	http.Redirect(w, r, dest.String(), http.StatusFound)
}
