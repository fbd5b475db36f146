package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/internal/web"
	"github.com/noah-isme/student-complaints/pkg/response"
)

type schemaInitializer interface {
	Ensure(ctx context.Context) error
}

// Bootstrap makes sure the schema exists before any handler touches the store. Until an attempt
// succeeds every request retries it; a failure answers the request with the error page.
func Bootstrap(schema schemaInitializer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := schema.Ensure(c.Request.Context()); err != nil {
			st := session.Load(c)
			response.ErrorPage(c, web.PageError, err, func(message string) interface{} {
				return web.NewView(st, nil).WithError(message)
			})
			return
		}
		c.Next()
	}
}
