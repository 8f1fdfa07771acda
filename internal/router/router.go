package router

import (
	"sort"
	"strings"

	"github.com/clickvault/internal/authz"
	"github.com/clickvault/internal/cache"
	"github.com/clickvault/internal/config"
	adminhandlers "github.com/clickvault/internal/http/handlers/admin"
	publichandlers "github.com/clickvault/internal/http/handlers/public"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if !logger.Initialized() {
		logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	log := logger.Z()
	r := gin.New()
	if err := configureClientIP(r, cfg.Server); err != nil {
		log.Sugar().Errorw("client_ip_config_invalid", "error", err)
		_ = configureClientIP(r, config.ServerConfig{})
	}

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	var counter WindowCounter
	if cache.Enabled() {
		counter = cache.HitWindow
	}
	loginLimit := RateLimitMiddleware(counter, newRateLimitRule("login", cfg.Security.LoginRateLimit, "error.login_rate_limited"), KeyByIPAndJSONField("email"))
	registerLimit := RateLimitMiddleware(counter, newRateLimitRule("register", cfg.Security.LoginRateLimit, "error.login_rate_limited"), KeyByIP)
	adminLoginLimit := RateLimitMiddleware(counter, newRateLimitRule("admin_login", cfg.Security.LoginRateLimit, "error.login_rate_limited"), KeyByIPAndJSONField("username"))
	// 访问计费本身有防刷闸门，这里只挡住明显的洪泛
	visitLimit := RateLimitMiddleware(counter, newRateLimitRule("visit", cfg.Security.VisitRateLimit, "error.too_many_requests"), KeyByIP)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 短链跳转
	r.GET("/s/:code", visitLimit, publicHandler.RedirectShortLink)

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/visit/:code", visitLimit, publicHandler.CaptureVisit)
			public.GET("/referral-program", publicHandler.GetReferralProgram)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", registerLimit, publicHandler.UserRegister)
			auth.POST("/login", loginLimit, publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserAuthMiddleware(c.UserAuthService))
		{
			user.GET("/me", publicHandler.GetMe)
			user.PUT("/me/password", publicHandler.ChangePassword)
			user.GET("/links", publicHandler.ListMyLinks)
			user.POST("/links", publicHandler.CreateLink)
			user.GET("/links/:id", publicHandler.GetMyLink)
			user.PATCH("/links/:id/status", publicHandler.UpdateMyLinkStatus)
			user.GET("/links/:id/qrcode", publicHandler.GetMyLinkQRCode)
			user.GET("/earnings/summary", publicHandler.GetEarningsSummary)
			user.GET("/referrals/summary", publicHandler.GetReferralSummary)
			user.GET("/payouts", publicHandler.ListMyPayouts)
			user.POST("/payouts", publicHandler.RequestPayout)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", adminLoginLimit, adminHandler.AdminLogin)

			authorized := admin.Use(AdminAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.ChangeAdminPassword)

				// CPM 费率
				authorized.GET("/cpm-rates", adminHandler.ListCpmRates)
				authorized.POST("/cpm-rates", adminHandler.CreateCpmRate)
				authorized.POST("/cpm-rates/seed", adminHandler.SeedCpmRates)
				authorized.GET("/cpm-rates/history", adminHandler.ListCpmRateHistory)
				authorized.GET("/cpm-rates/:code/quote", adminHandler.QuoteCpmRate)
				authorized.PUT("/cpm-rates/:code", adminHandler.UpdateCpmRate)
				authorized.PATCH("/cpm-rates/:code/status", adminHandler.UpdateCpmRateStatus)
				authorized.POST("/cpm-rates/:code/verify", adminHandler.VerifyCpmRate)

				// 推荐与作弊
				authorized.GET("/referrals/fraud-alerts", adminHandler.ListFraudAlerts)
				authorized.POST("/referrals/:id/flag", adminHandler.FlagReferral)
				authorized.POST("/referrals/:id/resolve", adminHandler.ResolveFraudAlert)
				authorized.GET("/referrals/commissions", adminHandler.ListCommissions)
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.GET("/users/:id/referral-summary", adminHandler.GetUserReferralSummary)

				// 短链与访问
				authorized.GET("/links", adminHandler.ListLinks)
				authorized.GET("/links/:id/reconcile", adminHandler.ReconcileLink)
				authorized.GET("/visits", adminHandler.ListVisits)
				authorized.POST("/visits/:id/decrypt-ip", adminHandler.DecryptVisitIP)
				authorized.GET("/visit-events", adminHandler.ListVisitEvents)
				authorized.POST("/visit-events/:id/requeue", adminHandler.RequeueVisitEvent)

				// 提现
				authorized.GET("/payouts", adminHandler.ListPayouts)
				authorized.GET("/payouts/export", adminHandler.ExportPayouts)
				authorized.POST("/payouts/:id/processing", adminHandler.MarkPayoutProcessing)
				authorized.POST("/payouts/:id/complete", adminHandler.CompletePayout)
				authorized.POST("/payouts/:id/reject", adminHandler.RejectPayout)
				authorized.POST("/users/:id/balance-adjustments", adminHandler.AdjustUserBalance)

				// 报表
				authorized.GET("/reports/daily-earnings/export", adminHandler.ExportDailyEarnings)

				// 设置
				authorized.GET("/settings/referral", adminHandler.GetReferralSetting)
				authorized.PUT("/settings/referral", adminHandler.UpdateReferralSetting)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAdminMe)
				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.POST("/authz/roles", adminHandler.CreateRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokePolicy)
				authorized.GET("/authz/admins", adminHandler.ListAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAdmin)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/authz/action-logs", adminHandler.ListActionLogs)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
