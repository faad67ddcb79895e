package constants

// Cookie names used in the application
const (
	// Session cookie carrying the opaque session token (HttpOnly)
	CookieSession = "session"

	// Cookie paths
	CookiePathRoot = "/"

	// Cookie duration in seconds
	CookieDuration24h = 86400
)
