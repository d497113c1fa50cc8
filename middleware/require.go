package middleware

import (
	"net/http"

	goIdentity "github.com/MrEthical07/goIdentity"
)

// RequireSession admits any live session token.
func RequireSession(engine *goIdentity.Engine) func(http.Handler) http.Handler {
	return Guard(engine, PolicyAnySession)
}

// RequireCurrentSession admits only the most recently minted token for the
// session's user and endpoint class.
func RequireCurrentSession(engine *goIdentity.Engine) func(http.Handler) http.Handler {
	return Guard(engine, PolicyCurrentSessionOnly)
}
