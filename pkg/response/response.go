package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Errors ErrorBody `json:"errors"`
}

type ErrorBody struct {
	Body []string `json:"body"`
}

// UserEnvelope is the body of every successful user response.
type UserEnvelope[T any] struct {
	User T `json:"user"`
}

// Error aborts the chain and writes the error envelope. gin sets
// Content-Type to application/json; charset=utf-8.
func Error(c *gin.Context, status int, messages ...string) {
	if len(messages) == 0 {
		messages = []string{"Unexpected error."}
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Errors: ErrorBody{Body: messages}})
}

func User[T any](c *gin.Context, status int, user T) {
	c.JSON(status, UserEnvelope[T]{User: user})
}
