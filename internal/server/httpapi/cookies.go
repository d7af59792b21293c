package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

// Session cookie names. The token carries the signed user id; the user
// cookie carries a JSON snapshot browsers echo back on every call. The
// restore cookie bridges validateCode and restorePassword.
const (
	cookieToken   = "token"
	cookieUser    = "user"
	cookieRestore = "userId"
)

func setSessionCookies(c *gin.Context, user *models.User, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(cookieToken, token, maxAge, "/", "", true, true)

	snapshot, err := json.Marshal(user)
	if err != nil {
		return
	}
	c.SetCookie(cookieUser, url.QueryEscape(string(snapshot)), maxAge, "/", "", true, true)
}

func clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(cookieToken, "", -1, "/", "", true, true)
	c.SetCookie(cookieUser, "", -1, "/", "", true, true)
}

// userSnapshot decodes the user cookie back into a User. The snapshot is
// client-echoed state; identity checks must go through the signed token.
func userSnapshot(c *gin.Context) (*models.User, error) {
	raw, err := c.Cookie(cookieUser)
	if err != nil {
		return nil, err
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(decoded), &user); err != nil {
		return nil, err
	}

	return &user, nil
}
