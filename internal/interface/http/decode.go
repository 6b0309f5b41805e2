package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/conduit-identity/internal/domain/apperror"
	"github.com/oksasatya/conduit-identity/pkg/validation"
)

const bodyKey = "request_body"

var errBodyMissing = errors.New("decoded request body missing from context")

// Decode binds and validates the JSON body into T before any later
// middleware or handler runs. Failures abort with a validation error.
func Decode[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperror.Wrap(apperror.KindValidation, err, validation.ToMessages(err)...))
			c.Abort()
			return
		}
		c.Set(bodyKey, &req)
		c.Next()
	}
}

func decoded[T any](c *gin.Context) (*T, error) {
	v, ok := c.Get(bodyKey)
	if !ok {
		return nil, errBodyMissing
	}
	req, ok := v.(*T)
	if !ok {
		return nil, errBodyMissing
	}
	return req, nil
}

// fieldErrors gathers value object failures so a request reports every bad
// field at once.
type fieldErrors []string

func (f *fieldErrors) add(err error) {
	if err != nil {
		*f = append(*f, err.Error())
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperror.Validation(f...)
}
