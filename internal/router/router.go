// Package router assembles the gin engine for the complaint desk.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/handler"
	"github.com/noah-isme/student-complaints/internal/middleware"
	"github.com/noah-isme/student-complaints/internal/service"
	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/internal/web"
	"github.com/noah-isme/student-complaints/pkg/config"
	"github.com/noah-isme/student-complaints/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-complaints/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-complaints/pkg/middleware/requestid"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *service.MetricsService
	Bootstrap  *service.Bootstrapper
	Auth       *handler.AuthHandler
	Complaints *handler.ComplaintHandler
	Admin      *handler.AdminHandler
	Ops        *handler.MetricsHandler
}

// New builds the engine. Operational endpoints sit outside the bootstrap gate so probes work
// while the database is still down.
func New(deps Deps) (*gin.Engine, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))

	r.GET("/health", deps.Ops.Health)
	r.GET("/ready", deps.Ops.Ready)
	if deps.Config.Metrics.Enabled {
		r.GET("/metrics", deps.Ops.Prometheus)
	}

	app := r.Group("/")
	app.Use(session.Middleware(deps.Config.Session, deps.Config.Env == config.EnvProduction, deps.Logger))
	app.Use(middleware.Bootstrap(deps.Bootstrap))

	auth := deps.Auth
	app.GET("/", session.Wrap(auth.Home))
	app.GET("/login", session.Wrap(auth.LoginForm))
	app.POST("/login", session.Wrap(auth.Login))
	app.GET("/signup", session.Wrap(auth.SignupForm))
	app.POST("/signup", middleware.Audit(deps.Logger, middleware.AuditActionStudentSignup, "username"), session.Wrap(auth.Signup))
	app.GET("/logout", session.Wrap(auth.Logout))
	app.GET("/admin_login", session.Wrap(auth.AdminLoginForm))
	app.POST("/admin_login", middleware.Audit(deps.Logger, middleware.AuditActionAdminLogin, "admin_id"), session.Wrap(auth.AdminLogin))
	app.GET("/admin_logout", session.Wrap(auth.AdminLogout))

	complaints := deps.Complaints
	student := app.Group("/", middleware.RequireStudent("Please log in to submit a complaint."))
	student.GET("/submit", session.Wrap(complaints.SubmitForm))
	student.POST("/submit", session.Wrap(complaints.Submit))
	app.GET("/my_complaint", session.Wrap(complaints.MyComplaints))
	app.GET("/search_complaint", session.Wrap(complaints.SearchForm))
	app.POST("/search_complaint", session.Wrap(complaints.Search))

	admin := app.Group("/admin", middleware.RequireAdmin())
	admin.GET("", session.Wrap(deps.Admin.Dashboard))
	admin.POST("", middleware.Audit(deps.Logger, middleware.AuditActionStatusUpdate, "complaint_id", "status"), session.Wrap(deps.Admin.UpdateStatus))
	admin.GET("/export", middleware.Audit(deps.Logger, middleware.AuditActionExport, "format"), session.Wrap(deps.Admin.Export))

	return r, nil
}
