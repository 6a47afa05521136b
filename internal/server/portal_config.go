package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/config"
	"github.com/smallbiznis/inviteportal/internal/invite"
	"github.com/smallbiznis/inviteportal/internal/observability/logger"
	"go.uber.org/zap"
)

type portalConfigResponse struct {
	AvailableRoles  []string `json:"available_roles"`
	DefaultRole     string   `json:"default_role"`
	AccountID       string   `json:"account_id"`
	TokenConfigured bool     `json:"token_configured"`
}

// PortalConfig describes what the invite form may offer the caller.
func (s *Server) PortalConfig(c *gin.Context) {
	ctx := c.Request.Context()

	catalogue := config.DefaultCatalogue()
	if s.catalogue != nil {
		catalogue = s.catalogue.Get()
	}

	source := s.credentialSource(c)
	creds, err := source.Resolve(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("resolve credentials for portal config", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	c.JSON(http.StatusOK, portalConfigResponse{
		AvailableRoles:  catalogue.AvailableRoles,
		DefaultRole:     catalogue.DefaultRole,
		AccountID:       creds.AccountID,
		TokenConfigured: creds.Token != "",
	})
}

// Health reports liveness and whether the runtime credentials carry a token.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"token_configured": invite.IsConfigured(c.Request.Context(), s.runtime),
	})
}
