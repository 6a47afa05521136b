package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/credentials"
)

// SetSessionCredentials stores a per-browser override in a signed cookie. The
// update is merged with any override the cookie already carries.
func (s *Server) SetSessionCredentials(c *gin.Context) {
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

	current, _ := s.cookies.Read(c)
	next := current.Merge(patch)
	if err := s.cookies.Write(c, next); err != nil {
		AbortWithError(c, err)
		return
	}

	creds, err := s.runtime.With(credentials.Static(next)).Resolve(ctx)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	c.JSON(http.StatusOK, credentialsUpdateResponse{
		Success:         true,
		TokenConfigured: creds.Token != "",
		AccountID:       creds.AccountID,
	})
}

func (s *Server) ClearSessionCredentials(c *gin.Context) {
	s.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
