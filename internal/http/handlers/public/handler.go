package public

import (
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/provider"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 短链跳转与推广用户接口
type Handler struct {
	UserAuthService *service.UserAuthService
	LinkService     *service.LinkService
	VisitService    *service.VisitService
	PayoutService   *service.PayoutService
	ReferralService *service.ReferralService
	ReportService   *service.ReportService
	SettingService  *service.SettingService
}

func New(c *provider.Container) *Handler {
	return &Handler{
		UserAuthService: c.UserAuthService,
		LinkService:     c.LinkService,
		VisitService:    c.VisitService,
		PayoutService:   c.PayoutService,
		ReferralService: c.ReferralService,
		ReportService:   c.ReportService,
		SettingService:  c.SettingService,
	}
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.PrincipalID(c, handlershared.CtxUserID)
}

func parseLinkID(c *gin.Context) (uint, bool) {
	return handlershared.UintParam(c, "id")
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func respondMappedError(c *gin.Context, err error, rules []handlershared.MappedError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}
