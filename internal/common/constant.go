package common

// Names shared by the HTTP server and the CLI client.
const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "JWT"

	// AuthScheme prefixes the session token in the Authorization header.
	AuthScheme = "JWT"

	// CSRFServerCookieName is the HttpOnly half of the CSRF pair.
	CSRFServerCookieName = "s_csft"

	// CSRFClientCookieName is the script-readable half of the CSRF pair.
	CSRFClientCookieName = "x_csft"

	// CSRFHeaderName is where clients echo the readable CSRF value.
	CSRFHeaderName = "X-CSRF-TOKEN"
)
