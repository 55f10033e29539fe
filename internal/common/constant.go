// Package common contains shared constants and sentinel errors used across
// vidtube components.
package common

// Cookie names used to deliver session artifacts over HTTP.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)
