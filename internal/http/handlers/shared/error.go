package shared

import (
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/i18n"
	"github.com/clickvault/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 携带 request_id 的日志
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if id := c.GetString(CtxRequestID); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 按 key 输出本地化错误
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 输出错误；带原始错误时服务端错误记 error，其余记 warn
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		log := RequestLog(c).With("code", code, "path", c.FullPath(), "error", err)
		if code >= response.CodeInternal {
			log.Errorw("handler_error", "message", msg)
		} else {
			log.Warnw("handler_rejected", "message", msg)
		}
	}
	response.Error(c, code, msg)
}
