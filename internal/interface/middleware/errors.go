package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/conduit-identity/internal/domain/apperror"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
	"github.com/oksasatya/conduit-identity/pkg/response"
)

// ErrorTranslator must be the outermost middleware. It recovers panics and
// turns the last error recorded on the context into the error envelope.
func ErrorTranslator(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				if errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				helpers.RequestLogger(logger, c).WithError(err).Error("panic recovered")
				c.Errors = c.Errors[:0]
				translate(c, logger, err)
			}
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			translate(c, logger, last.Err)
		}
	}
}

func translate(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperror.KindOf(err)
	status := apperror.Status(kind)
	entry := helpers.RequestLogger(logger, c).WithError(err).WithField("status", status)
	if kind == apperror.KindUnknown {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	if c.Writer.Written() {
		return
	}
	response.Error(c, status, apperror.MessagesOf(err)...)
}

// NoRoute answers unknown paths with the error envelope.
func NoRoute(c *gin.Context) {
	response.Error(c, http.StatusNotFound, "Route "+c.Request.URL.Path+" not found.")
}

// NoMethod answers known paths hit with an unsupported method.
func NoMethod(c *gin.Context) {
	response.Error(c, http.StatusMethodNotAllowed, "Method "+c.Request.Method+" not allowed.")
}
