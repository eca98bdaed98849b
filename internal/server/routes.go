// Package server wires the HTTP routes, middleware and backends of the API.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	// Init swagger doc
	_ "github.com/XevilA/spu-nexus-sub000/docs"

	"github.com/XevilA/spu-nexus-sub000/internal/auth"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/admin"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/advice"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/application"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/company"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/file"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/jobpost"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/message"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/notification"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/portfolio"
	"github.com/XevilA/spu-nexus-sub000/internal/controller/profile"
	"github.com/XevilA/spu-nexus-sub000/internal/middleware"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/storage"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.Log), middleware.SafeHeader())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	googleOauth := auth.NewGoogleOauthConfig(s.Config.GoogleClientID, s.Config.GoogleClientSecret, s.Config.OAuthRedirectURL)
	gAuth := auth.NewOauthLoginHandler(s.Services.Identity, s.Issuer, googleOauth, auth.GoogleUserInfoEndpoint, s.Log)
	lAuth := auth.NewLocalAuthHandler(s.Services.Identity, s.Issuer, s.Log)
	logout := auth.NewLogoutController(s.Blacklist)

	profileCtrl := profile.NewProfileController(s.Services.Identity)
	companyCtrl := company.NewCompanyController(s.Services.Companies)
	jobCtrl := jobpost.NewJobPostController(s.Services.Jobs)
	portfolioCtrl := portfolio.NewPortfolioController(s.Services.Portfolios)
	applicationCtrl := application.NewApplicationController(s.Services.Applications)
	messageCtrl := message.NewMessageController(s.Services.Messages)
	adviceCtrl := advice.NewAdviceController(s.Advisor)
	adminCtrl := admin.NewAdminController(s.Services.Companies, s.Services.Identity)
	notificationCtrl := notification.NewNotificationController(s.Broker, s.Log, s.Config.AllowOrigins)

	// a nil *CloudStorageClient must not end up as a non-nil storage.Client
	fileCtrl := file.NewFileController(s.Services.Portfolios, nil, s.Log)
	if s.Storage != nil {
		fileCtrl.Storage = s.Storage
	}

	requireAuth := middleware.RequireAuth(s.DB, s.Issuer)
	notRevoked := middleware.JwtBlacklistCheck(s.Blacklist)

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimiterMiddleware(s.Config.RateLimitPerSecond, s.Redis))
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("register", lAuth.LocalRegisterHandler)
			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("admin/login", lAuth.AdminLoginHandler)
			authRoute.POST("admin/register", lAuth.AdminRegisterHandler)
			authRoute.POST("google", gAuth.GoogleLoginHandler)
			authRoute.GET("google/callback", gAuth.Callback)
			authRoute.POST("logout", requireAuth, notRevoked, logout.LogoutHandler)
		}

		// websocket handshakes carry the token in the query string
		v1.GET("/ws/notifications", middleware.TokenFromQuery("token"), requireAuth, notRevoked, notificationCtrl.Stream)

		needAuth := v1.Group("")
		needAuth.Use(requireAuth, notRevoked)
		{
			needAuth.GET("/me", profileCtrl.GetMe)
			needAuth.PATCH("/me", profileCtrl.EditProfile)

			needAuth.GET("/jobs", jobCtrl.GetPosts)
			needAuth.GET("/jobs/:id", jobCtrl.GetPostByID)

			needAuth.POST("/advice", adviceCtrl.RequestAdvice)

			needAuth.GET("/applications/:id/messages", messageCtrl.GetMessages)
			needAuth.POST("/applications/:id/messages", messageCtrl.PostMessage)

			needAuth.GET("/students/:student_id/portfolio", portfolioCtrl.GetStudentPortfolio)
			needAuth.GET("/students/:student_id/resume", fileCtrl.GetResume)

			needAuth.POST("/company", middleware.CheckRole(model.RoleStudent, model.RoleCompanyHR), companyCtrl.RegisterCompany)

			companyRoute := needAuth.Group("", middleware.CheckRole(model.RoleCompanyHR))
			{
				companyRoute.GET("/company/me", companyCtrl.GetMyCompany)
				companyRoute.GET("/company/jobs", jobCtrl.GetMyPosts)
				companyRoute.GET("/company/applications", applicationCtrl.GetCompanyApplications)
				companyRoute.POST("/jobs", jobCtrl.CreateJobPostHandler)
				companyRoute.PATCH("/jobs/:id", jobCtrl.EditJobPost)
				companyRoute.PATCH("/jobs/:id/status", jobCtrl.SetPostStatus)
				companyRoute.PATCH("/applications/:id/status", applicationCtrl.UpdateStatus)
				companyRoute.GET("/portfolios", portfolioCtrl.ListDiscoverable)
			}

			studentRoute := needAuth.Group("", middleware.CheckRole(model.RoleStudent))
			{
				studentRoute.GET("/portfolio", portfolioCtrl.GetMine)
				studentRoute.PUT("/portfolio/draft", portfolioCtrl.SaveDraft)
				studentRoute.POST("/portfolio/submit", portfolioCtrl.Submit)
				studentRoute.POST("/portfolio/resume", middleware.SizeLimit(storage.MaxResumeBytes), fileCtrl.UploadResume)
				studentRoute.POST("/applications", applicationCtrl.ApplicationHandler)
				studentRoute.GET("/applications", applicationCtrl.GetMyApplications)
				studentRoute.POST("/applications/:id/accept", applicationCtrl.AcceptOffer)
				studentRoute.POST("/applications/:id/decline", applicationCtrl.DeclineOffer)
			}

			reviewRoute := needAuth.Group("/review", middleware.CheckRole(model.RoleAdmin, model.RoleFacultyApprover))
			{
				reviewRoute.GET("/portfolios", portfolioCtrl.ListPending)
				reviewRoute.POST("/portfolios/:id", portfolioCtrl.Review)
				reviewRoute.POST("/portfolios/:id/reject", portfolioCtrl.Reject)
			}

			adminRoute := needAuth.Group("/admin", middleware.CheckRole(model.RoleAdmin))
			{
				adminRoute.GET("/companies", adminCtrl.GetCompanies)
				adminRoute.PATCH("/companies/:company_id/verify", adminCtrl.VerifyCompany)
				adminRoute.PUT("/whitelist", adminCtrl.SetWhitelist)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
