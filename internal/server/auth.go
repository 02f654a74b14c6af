package server

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
	"go.uber.org/zap"
)

const tenantContextKey = "tenant"

// tenantCacheTTL bounds how stale an authenticated tenant snapshot may be.
// A webhook that flips the tenant's status is visible within this window.
const tenantCacheTTL = 30 * time.Second

// HashAPIKey derives the stored lookup hash for a raw API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// TenantAuthRequired resolves the tenant from the Authorization bearer key
// and stores it in the request context.
func (s *Server) TenantAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		key, ok := strings.CutPrefix(header, "Bearer ")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			respondError(c, http.StatusUnauthorized, "missing API key")
			return
		}

		hash := HashAPIKey(key)
		now := s.clock.Now()

		tenant, cached := s.tenantCache.Get(hash, now)
		if !cached {
			found, err := s.tenants.FindByAPIKeyHash(c.Request.Context(), hash)
			if err != nil {
				s.log.Error("tenant lookup failed", zap.Error(err))
				respondError(c, http.StatusInternalServerError, "internal error")
				return
			}
			tenant = found
			s.tenantCache.Set(hash, tenant, now, tenantCacheTTL)
		}
		if tenant == nil {
			respondError(c, http.StatusUnauthorized, "invalid API key")
			return
		}

		c.Set(tenantContextKey, tenant)
		c.Next()
	}
}

// CurrentTenant returns the tenant resolved by TenantAuthRequired.
func CurrentTenant(c *gin.Context) *tenantdomain.Tenant {
	value, ok := c.Get(tenantContextKey)
	if !ok {
		return nil
	}
	tenant, _ := value.(*tenantdomain.Tenant)
	return tenant
}
