// Package flash carries one-shot messages across a redirect. The payload
// lives in the cache under a random id; the browser only holds the id.
package flash

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/constants"
	"propdesk/pkg/cache"
	"propdesk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "flash"

// Store writes and consumes flash data
type Store struct {
	cache      cache.Service
	cookieName string
	ttl        time.Duration
	secure     bool
	logger     *logger.Logger
}

// Options configures the cookie side of a Store
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func NewStore(c cache.Service, opts Options) *Store {
	if opts.CookieName == "" {
		opts.CookieName = "propdesk_flash"
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	return &Store{
		cache:      c,
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		logger:     logger.GetDefault(),
	}
}

// Put stores data for the next request of this browser
func (s *Store) Put(c *gin.Context, data *apperrors.Context) error {
	id := uuid.NewString()
	if err := s.cache.Set(c.Request.Context(), constants.BuildFlashKey(id), data, s.ttl); err != nil {
		return fmt.Errorf("store flash: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, id, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

// Middleware consumes pending flash data and exposes it through Get
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(s.cookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}

		// Consumed or not, the cookie is spent
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)

		data := apperrors.NewContext()
		if err := s.cache.Take(c.Request.Context(), constants.BuildFlashKey(id), data); err != nil {
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.logger.WarnContext(c.Request.Context(), "flash read failed", "error", err)
			}
			c.Next()
			return
		}

		c.Set(contextKey, data)
		c.Next()
	}
}

// Get returns the flash data delivered with this request, or nil
func Get(c *gin.Context) *apperrors.Context {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	data, _ := v.(*apperrors.Context)
	return data
}
