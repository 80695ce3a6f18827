package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aula-planner/internal/service"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
	"github.com/noah-isme/aula-planner/pkg/logger"
	"github.com/noah-isme/aula-planner/pkg/response"
)

// loadSession resolves the :id session and tags the request log with it.
// On failure the error response has already been written.
func loadSession(c *gin.Context, sessions sessionRegistry) (*service.FormSession, bool) {
	id := c.Param("id")
	session, err := sessions.Get(id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	c.Set(logger.SessionKey, session.ID())
	return session, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return value, true
}
