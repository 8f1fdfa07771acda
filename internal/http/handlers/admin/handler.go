package admin

import (
	"github.com/clickvault/internal/authz"
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/provider"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 管理端接口，只持有后台用到的服务
type Handler struct {
	AuthService          *service.AuthService
	AuthzService         *authz.Service
	AdminActionService   *service.AdminActionService
	CpmRateService       *service.CpmRateService
	ReferralService      *service.ReferralService
	PayoutService        *service.PayoutService
	SettingService       *service.SettingService
	ReportService        *service.ReportService
	LinkService          *service.LinkService
	VisitService         *service.VisitService
	VisitEventDispatcher *service.VisitEventDispatcher
	UserRepo             repository.UserRepository
}

func New(c *provider.Container) *Handler {
	return &Handler{
		AuthService:          c.AuthService,
		AuthzService:         c.AuthzService,
		AdminActionService:   c.AdminActionService,
		CpmRateService:       c.CpmRateService,
		ReferralService:      c.ReferralService,
		PayoutService:        c.PayoutService,
		SettingService:       c.SettingService,
		ReportService:        c.ReportService,
		LinkService:          c.LinkService,
		VisitService:         c.VisitService,
		VisitEventDispatcher: c.VisitEventDispatcher,
		UserRepo:             c.UserRepo,
	}
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.PrincipalID(c, handlershared.CtxAdminID)
}

func adminIsSuper(c *gin.Context) bool {
	return c.GetBool(handlershared.CtxAdminIsSuper)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	return handlershared.UintParam(c, name)
}

func parsePageQuery(c *gin.Context) (int, int) {
	return handlershared.PageQuery(c)
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
