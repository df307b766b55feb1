package shared

import (
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c != nil {
		if id := c.GetString(response.RequestIDKey); id != "" {
			return logger.SW("request_id", id, "route", c.FullPath())
		}
	}
	return logger.S()
}

// RespondError 按语言翻译 key 后返回错误
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 返回错误；只有 5xx 记为 error，其余按 warn 记录原因
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		log := RequestLog(c)
		if code >= response.CodeInternal {
			log.Errorw("handler_error", "code", code, "message", msg, "error", err)
		} else {
			log.Warnw("handler_rejected", "code", code, "message", msg, "error", err)
		}
	}
	response.Error(c, code, msg)
}
