package router

import (
	"cryptosignals/internal/consts"
	"cryptosignals/internal/handler/admin"
	"cryptosignals/internal/handler/plan"
	"cryptosignals/internal/handler/signal"
	"cryptosignals/internal/handler/support"
	"cryptosignals/internal/handler/user"
	"cryptosignals/internal/middleware"
	"cryptosignals/internal/session"

	"github.com/gin-gonic/gin"
)

type ApiRouter struct {
	sessions       session.Store
	userHandler    *user.UserHandler
	signalHandler  *signal.SignalHandler
	planHandler    *plan.PlanHandler
	supportHandler *support.SupportHandler
	adminHandler   *admin.AdminHandler
}

func NewApiRouter(sessions session.Store, userHandler *user.UserHandler, signalHandler *signal.SignalHandler,
	planHandler *plan.PlanHandler, supportHandler *support.SupportHandler, adminHandler *admin.AdminHandler) *ApiRouter {
	return &ApiRouter{
		sessions:       sessions,
		userHandler:    userHandler,
		signalHandler:  signalHandler,
		planHandler:    planHandler,
		supportHandler: supportHandler,
		adminHandler:   adminHandler,
	}
}

func (api *ApiRouter) Load(g *gin.Engine) {
	base := g.Group("/api/v1")

	auth := base.Group("/auth", middleware.AntiDuplicate(consts.AntiDuplicateWindow))
	{
		auth.POST("/login", api.userHandler.UserLogin())
		auth.POST("/register", api.userHandler.UserRegister())
	}

	u := base.Group("/user", middleware.AuthToken(api.sessions))
	{
		u.GET("/info", api.userHandler.UserGetInfo())
		u.GET("/logout", api.userHandler.UserLogout())
	}

	sg := base.Group("/signal", middleware.AuthToken(api.sessions))
	{
		// 仪表盘对没有计划的用户也开放，只是内容为空
		sg.GET("/dashboard", api.signalHandler.SignalDashboard())
		sg.GET("/list", middleware.RequirePlan(), api.signalHandler.SignalGetList())
		sg.GET("/open", middleware.RequirePlan(), api.signalHandler.SignalGetOpen())
		sg.GET("/closed", middleware.RequirePlan(), api.signalHandler.SignalGetClosed())
	}

	p := base.Group("/plan")
	{
		p.GET("/list", api.planHandler.PlanList())
		p.GET("/statistics", api.planHandler.PlanStatistics())
		p.GET("/performance", api.planHandler.PlanPerformance())
	}

	s := base.Group("/support")
	{
		s.GET("/faq", api.supportHandler.FAQ())
		s.POST("/contact", middleware.AntiDuplicate(consts.AntiDuplicateWindow), api.supportHandler.Contact())
	}

	a := base.Group("/admin", middleware.AuthToken(api.sessions), middleware.RequireAdmin())
	{
		a.GET("/signal/list", api.signalHandler.AdminSignalList())
		a.POST("/signal/create", api.signalHandler.AdminSignalCreate())
		a.POST("/signal/close", api.signalHandler.AdminSignalClose())
		a.POST("/signal/edit", api.signalHandler.AdminSignalEdit())
		a.POST("/signal/delete", api.signalHandler.AdminSignalDelete())

		a.POST("/plan/coins", api.adminHandler.PlanCoins())

		a.GET("/user/list", api.adminHandler.UserList())
		a.POST("/user/role", api.adminHandler.UserSetRole())
		a.POST("/user/delete", api.adminHandler.UserDelete())
	}
}
