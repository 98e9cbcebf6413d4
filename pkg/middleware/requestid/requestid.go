package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation id. A gateway that already tagged the
// request keeps its id; everything else gets a fresh uuid.
const Header = "X-Request-ID"

const ctxKey = "request_id"

// Middleware tags every request with an id and echoes it on the response,
// so a parent reporting a failed upload can quote something traceable.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the id assigned to this request, or "" outside the
// middleware.
func Value(c *gin.Context) string {
	v, _ := c.Get(ctxKey)
	id, _ := v.(string)
	return id
}
