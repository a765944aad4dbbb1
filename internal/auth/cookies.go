package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "token"
	// 15 minutes, deliberately shorter than the token validity so a stolen
	// cookie ages out quickly.
	cookieMaxAge = 15 * 60
)

// CookieJar writes and reads the auth cookie with fixed security
// attributes: HTTP-only always, SameSite strict, Secure only in prod.
type CookieJar struct {
	secure bool
}

func NewCookieJar(env string) CookieJar {
	return CookieJar{secure: env == "prod"}
}

func (j CookieJar) Set(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		CookieName,
		token,
		cookieMaxAge,
		"/",
		"",
		j.secure,
		true, // HttpOnly.
	)
}

func (j CookieJar) Clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		CookieName,
		"",
		-1,
		"/",
		"",
		j.secure,
		true,
	)
}

// Read returns the raw cookie value; absence is reported as ok=false, never
// as an error.
func (j CookieJar) Read(ctx *gin.Context) (string, bool) {
	raw, err := ctx.Cookie(CookieName)

	if err != nil || raw == "" {
		return "", false
	}

	return raw, true
}
