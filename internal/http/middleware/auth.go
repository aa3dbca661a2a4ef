package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/domain"
	"github.com/vendorly/vendorly-api/internal/identity"
)

const accountKey = "callerAccount"

// Auth validates the bearer session token and resolves the caller's local
// account, creating it on first sight. Every failure is fail-closed: the
// request never reaches a protected handler without a resolved account.
type Auth struct {
	Verifier identity.TokenVerifier
	Resolver *identity.Resolver
}

// RequireAccount ensures the request carries a valid session token whose
// subject maps to a local account.
func (m *Auth) RequireAccount(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	subject, err := m.Verifier.Subject(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := m.Resolver.Resolve(c.Request.Context(), subject)
	if err != nil {
		// Resolution failures are already logged by the resolver. A subject
		// without an account gets 404 to match the surface contract.
		zap.L().Debug("account resolution failed", zap.String("subject_id", subject), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.Set(accountKey, account)
	c.Next()
}

// GetAccount extracts the resolved caller account from the gin context.
func GetAccount(c *gin.Context) (domain.Account, bool) {
	value, ok := c.Get(accountKey)
	if !ok {
		return domain.Account{}, false
	}
	account, ok := value.(domain.Account)
	return account, ok
}
