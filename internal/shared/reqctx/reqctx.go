// Package reqctx answers per-request questions the error pipeline and
// controllers need: how the caller wants failures rendered and who the
// caller is.
package reqctx

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Keys set on gin.Context by the auth middleware
const (
	KeyUserID          = "user_id"
	KeyUserEmail       = "user_email"
	KeyUserRole        = "user_role"
	KeyUserPermissions = "user_permissions"
)

// APIPrefix marks machine clients regardless of their headers
const APIPrefix = "/api/"

// WantsStructuredResponse reports whether r expects a JSON body rather than
// a redirect. True when Accept names JSON (application/json or any +json
// type), when X-Requested-With is XMLHttpRequest, or when the path is under
// the API prefix.
func WantsStructuredResponse(r *http.Request) bool {
	if r == nil {
		return false
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	if r.URL != nil && strings.HasPrefix(r.URL.Path, APIPrefix) {
		return true
	}
	return acceptsJSON(r.Header.Values("Accept"))
}

func acceptsJSON(values []string) bool {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			if mt == "application/json" || strings.HasSuffix(mt, "+json") {
				return true
			}
		}
	}
	return false
}

// User is the authenticated caller as seen by handlers
type User struct {
	ID          string
	Email       string
	Role        string
	Permissions []string
}

// HasPermission reports whether the caller was granted perm
func (u User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// CurrentUser returns the caller placed on c by the auth middleware
func CurrentUser(c *gin.Context) (User, bool) {
	if c == nil {
		return User{}, false
	}
	id := c.GetString(KeyUserID)
	if id == "" {
		return User{}, false
	}
	return User{
		ID:          id,
		Email:       c.GetString(KeyUserEmail),
		Role:        c.GetString(KeyUserRole),
		Permissions: c.GetStringSlice(KeyUserPermissions),
	}, true
}

// SetUser stores u on c the way the auth middleware does
func SetUser(c *gin.Context, u User) {
	c.Set(KeyUserID, u.ID)
	c.Set(KeyUserEmail, u.Email)
	c.Set(KeyUserRole, u.Role)
	c.Set(KeyUserPermissions, u.Permissions)
}
