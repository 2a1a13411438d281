package errorhandling

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/reqctx"

	"github.com/gin-gonic/gin"
)

//go:embed pages/*.html
var pageFS embed.FS

// FlashWriter persists redirect flash data for the next request
type FlashWriter interface {
	Put(c *gin.Context, data *apperrors.Context) error
}

// Middleware is the single place where failures become HTTP output. It
// recovers panics and renders the last error recorded with c.Error when the
// handler chain wrote nothing.
func (d *Dispatcher) Middleware(flashes FlashWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if isBrokenPipe(r) {
				d.logger.WarnContext(c.Request.Context(), "client went away", "path", c.Request.URL.Path, "error", r)
				c.Abort()
				return
			}
			var err error
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
			d.render(c, flashes, err, string(debug.Stack()))
			c.Abort()
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		last := c.Errors.Last().Err
		if c.Writer.Written() {
			d.logger.WarnContext(c.Request.Context(), "error after response was written",
				"path", c.Request.URL.Path, "error", last)
			return
		}
		d.render(c, flashes, last, "")
	}
}

// NoRoute records a 404 for unmatched paths
func (d *Dispatcher) NoRoute(c *gin.Context) {
	_ = c.Error(apperrors.NotFound(""))
}

// NoMethod records a 405 for paths matched with the wrong method
func (d *Dispatcher) NoMethod(c *gin.Context) {
	_ = c.Error(apperrors.NewHTTPError(http.StatusMethodNotAllowed, ""))
}

func (d *Dispatcher) render(c *gin.Context, flashes FlashWriter, err error, stack string) {
	structured := reqctx.WantsStructuredResponse(c.Request)

	req := Request{
		Structured: structured,
		Method:     c.Request.Method,
		URL:        c.Request.URL.RequestURI(),
		BackURL:    backURL(c.Request),
		Stack:      stack,
	}
	if user, ok := reqctx.CurrentUser(c); ok {
		req.UserID = user.ID
	}
	if !structured {
		req.Input = formInput(c.Request)
	}

	d.write(c, flashes, d.Dispatch(c.Request.Context(), err, req))
}

func (d *Dispatcher) write(c *gin.Context, flashes FlashWriter, resp Response) {
	switch {
	case resp.Page != "":
		html, err := pageFS.ReadFile("pages/" + resp.Page + ".html")
		if err != nil {
			d.writeFallback(c)
			return
		}
		c.Data(resp.Status, "text/html; charset=utf-8", html)

	case resp.Redirect != nil:
		if flashes != nil {
			if err := flashes.Put(c, resp.Redirect.Flash); err != nil {
				d.logger.WarnContext(c.Request.Context(), "flash not stored", "error", err)
			}
		}
		c.Redirect(http.StatusFound, resp.Redirect.Target)

	default:
		raw, err := json.Marshal(resp.Body)
		if err != nil {
			d.logger.ErrorContext(c.Request.Context(), "error body not serializable", "error", err)
			d.writeFallback(c)
			return
		}
		c.Data(resp.Status, "application/json; charset=utf-8", raw)
	}
}

func (d *Dispatcher) writeFallback(c *gin.Context) {
	c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", []byte(FallbackJSON))
}

// backURL is the same-site Referer path, or empty
func backURL(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Host != "" && !strings.EqualFold(u.Host, r.Host) {
		return ""
	}
	if u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return ""
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// formInput returns the submitted url-encoded form. Bodies already bound by
// a handler have populated PostForm; otherwise it is parsed here.
func formInput(r *http.Request) url.Values {
	if r.PostForm == nil && r.Body != nil &&
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		_ = r.ParseForm()
	}
	return r.PostForm
}

func isBrokenPipe(r interface{}) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) {
		return errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)
	}
	return false
}
