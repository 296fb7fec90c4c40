// Package middleware holds the gin middleware shared by every route of the
// helpdesk: the request-scoped database handle, request ids, throttling and
// the audit trail.
package middleware

import (
	"github.com/opsdesk/helpdesk/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dbKey = "db"

// DBScope binds a database handle to the request context and releases it
// when the handler chain returns, on every exit path.
func DBScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		db, release := database.Scope(c.Request.Context())
		defer release()
		c.Set(dbKey, db)
		c.Next()
	}
}

// DB returns the handle bound by DBScope, or the shared one outside a scope.
func DB(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(dbKey); ok {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return database.GetDB()
}
