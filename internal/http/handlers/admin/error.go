package admin

import (
	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

func badRequest(c *gin.Context) {
	respondError(c, response.CodeBadRequest, "error.bad_request", nil)
}

func parseID(c *gin.Context, notFoundKey string) (uint, bool) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeNotFound, notFoundKey, nil)
		return 0, false
	}
	return id, true
}
