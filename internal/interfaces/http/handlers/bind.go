package handlers

import (
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/interfaces/http/middleware"
	"appstore.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindJSON binds the request body and writes a 400 when it is malformed
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return false
	}
	return true
}

func requireAccountID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return uuid.Nil, false
	}
	return id, true
}
