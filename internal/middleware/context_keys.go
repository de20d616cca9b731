package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// cashierIDKey is the key used to store the cashier session ID in the Gin
// context. Using a custom type prevents collisions.
const cashierIDKey = contextKey("cashierID")

// CashierIDHeader is set by the terminal for every request. Session and
// authentication mechanics live in the branch gateway in front of this
// service; here the ID is only needed for audit fields and drawer ownership.
const CashierIDHeader = "X-Cashier-ID"

// CashierSessionMiddleware copies the cashier ID header into the Gin context
// and rejects requests that omit it.
func CashierSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cashierID := c.GetHeader(CashierIDHeader)
		if cashierID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + CashierIDHeader + " header"})
			return
		}
		c.Set(string(cashierIDKey), cashierID)
		c.Next()
	}
}

// GetCashierIDFromContext retrieves the cashier ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetCashierIDFromContext(c *gin.Context) (string, bool) {
	cashierIDVal, exists := c.Get(string(cashierIDKey))
	if !exists {
		return "", false
	}

	cashierID, ok := cashierIDVal.(string)
	if !ok {
		// This should not happen if the session middleware sets it correctly
		return "", false
	}
	return cashierID, true
}
