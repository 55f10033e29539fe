package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func setSessionCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, sessionCookie(common.AccessTokenCookieName, pair.AccessToken, 0))
	http.SetCookie(w, sessionCookie(common.RefreshTokenCookieName, pair.RefreshToken, 0))
}

func clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie(common.AccessTokenCookieName, "", -1))
	http.SetCookie(w, sessionCookie(common.RefreshTokenCookieName, "", -1))
}
