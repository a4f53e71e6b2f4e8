package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errorf builds an Error with the given status code.
func Errorf(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

type HandlerFunc func(ctx *gin.Context) (any, *Error)

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, err := h(ctx)
		if err != nil {
			ctx.JSON(err.Code, gin.H{"error": err.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}
