package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicore-api/internal/apperr"
)

// ErrorReporter renders the last error a handler attached with c.Error as
// {success:false, message}. Server faults are logged with their cause and
// reach the client only as a generic message.
func ErrorReporter(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := apperr.From(c.Errors.Last().Err)
		if err.Status() >= 500 {
			entry := log.WithFields(logrus.Fields{
				"kind":   err.Kind,
				"method": c.Request.Method,
				"route":  c.FullPath(),
			})
			if err.Cause != nil {
				entry = entry.WithError(err.Cause)
			}
			entry.Error(err.Message)
		}
		c.JSON(err.Status(), gin.H{"success": false, "message": err.Message})
	}
}

// Fail hands err to ErrorReporter and stops the chain.
func Fail(c *gin.Context, err error) {
	abort(c, err)
}
