package router

import (
	"context"
	"net/http"
	"time"
)

// Context is the default implementation of handler.Context.
// It wraps the inbound *http.Request and its context.Context, carries
// matched path parameters, and allows handlers to stash request-scoped
// values for downstream middleware.
type Context struct {
	req    *http.Request
	w      http.ResponseWriter
	params map[string]string
	values map[any]any
}

// newContext builds a *Context for a single request/response pair.
func newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{
		req:    r,
		w:      w,
		params: params,
	}
}

// Request returns the original *http.Request.
func (c *Context) Request() *http.Request {
	return c.req
}

// ResponseWriter returns the (possibly wrapped) http.ResponseWriter.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the value of a matched path parameter, or "" if absent.
func (c *Context) Param(key string) string {
	if c.params == nil {
		return ""
	}
	return c.params[key]
}

// SetValue stashes a request-scoped value retrievable via Value.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Deadline implements context.Context by delegating to the request's context.
func (c *Context) Deadline() (time.Time, bool) {
	return c.req.Context().Deadline()
}

// Done implements context.Context by delegating to the request's context.
func (c *Context) Done() <-chan struct{} {
	return c.req.Context().Done()
}

// Err implements context.Context by delegating to the request's context.
func (c *Context) Err() error {
	return c.req.Context().Err()
}

// Value first checks values set via SetValue, then falls back to the
// request's context.
func (c *Context) Value(key any) any {
	if c.values != nil {
		if v, ok := c.values[key]; ok {
			return v
		}
	}
	return c.req.Context().Value(key)
}

var _ context.Context = (*Context)(nil)
