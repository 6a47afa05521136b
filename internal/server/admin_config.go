package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/credentials"
	"github.com/smallbiznis/inviteportal/internal/observability/logger"
	"go.uber.org/zap"
)

type credentialsUpdateRequest struct {
	Token     string `json:"token"`
	AccountID string `json:"account_id"`
}

type credentialsUpdateResponse struct {
	Success         bool   `json:"success"`
	TokenConfigured bool   `json:"token_configured"`
	AccountID       string `json:"account_id"`
}

func (s *Server) GetAdminConfig(c *gin.Context) {
	ctx := c.Request.Context()

	status, err := credentials.Describe(ctx, s.store, s.env)
	if err != nil {
		logger.FromContext(ctx).Warn("describe admin credentials", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpdateAdminConfig applies a runtime override shared by every caller.
func (s *Server) UpdateAdminConfig(c *gin.Context) {
	ctx := c.Request.Context()

	var req credentialsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	patch, err := credentials.ParsePatch(req.Token, req.AccountID)
	if err != nil {
		AbortWithError(c, credentialsValidationError(err))
		return
	}

	if _, err := s.store.Apply(ctx, patch); err != nil {
		logger.FromContext(ctx).Error("apply admin credentials override", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	creds, err := s.runtime.Resolve(ctx)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	logger.FromContext(ctx).Info("admin credentials override updated",
		zap.Bool("token_changed", patch.Token != ""),
		zap.Bool("account_changed", patch.AccountID != ""),
		zap.String("account_id", creds.AccountID),
	)

	c.JSON(http.StatusOK, credentialsUpdateResponse{
		Success:         true,
		TokenConfigured: creds.Token != "",
		AccountID:       creds.AccountID,
	})
}

// ClearAdminConfig drops the runtime override so the environment applies again.
func (s *Server) ClearAdminConfig(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.store.Clear(ctx); err != nil {
		logger.FromContext(ctx).Error("clear admin credentials override", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	logger.FromContext(ctx).Info("admin credentials override cleared")

	s.GetAdminConfig(c)
}
