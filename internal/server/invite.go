package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/invite"
)

const msgNoJSON = "No JSON data provided"

type inviteRequest struct {
	Emails []string `json:"emails"`
	Role   string   `json:"role"`
	Resend bool     `json:"resend"`
}

// Invite forwards one invitation batch upstream and answers with the
// normalized result.
func (s *Server) Invite(c *gin.Context) {
	var req inviteRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		// decoding continues past a wrongly typed field, leaving only that
		// field at its zero value
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			c.JSON(http.StatusBadRequest, invite.Response{Success: false, Error: msgNoJSON})
			return
		}
	}

	result := s.resolver.Send(c.Request.Context(), req.Emails, req.Role, req.Resend, s.credentialSource(c))
	if f, ok := result.(invite.Failure); ok {
		c.Set("invite_outcome", string(f.Kind))
	} else {
		c.Set("invite_outcome", invite.OutcomeSuccess)
	}

	c.JSON(invite.HTTPStatus(result), result.Response())
}
