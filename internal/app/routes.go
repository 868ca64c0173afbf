package app

import (
	"log"
	"time"

	"planhub/internal/auth"
	"planhub/internal/cache"
	"planhub/internal/config"
	"planhub/internal/handlers"
	"planhub/internal/llm"
	"planhub/internal/repo"
	"planhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine and starts the daily
// planner cron job.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, llmClient llm.Client, a *App) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, 24*time.Hour)
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireSession(sessionStore))

	projectRepo := repo.NewPGProjectRepo(db)
	taskRepo := repo.NewPGTaskRepo(db)
	planRepo := repo.NewPGPlanRepo(db)
	planVersionRepo := repo.NewPGPlanVersionRepo(db)
	inboxRepo := repo.NewPGInboxRepo(db)
	feedbackRepo := repo.NewPGFeedbackRepo(db)
	llmLogRepo := repo.NewPGLLMLogRepo(db)

	projectSvc := service.NewProjectService(projectRepo)
	registerProjectRoutes(protected, handlers.NewProjectHandler(projectSvc))

	taskSvc := service.NewTaskService(taskRepo, projectRepo)
	registerTaskRoutes(protected, handlers.NewTaskHandler(taskSvc))

	planCache := cache.NewPlanCache(rdb, cfg.Redis.DefaultTTL.Duration())
	plannerSvc := service.NewPlannerService(taskRepo, planRepo, planCache)
	planningSvc := service.NewPlanningService(projectRepo, taskRepo, planVersionRepo, llmLogRepo, llmClient, cfg.LLM.Retries)
	registerPlanningRoutes(protected, handlers.NewPlanningHandler(plannerSvc, planningSvc))

	inboxSvc := service.NewInboxService(inboxRepo, projectRepo, taskRepo, llmLogRepo, llmClient, cfg.LLM.Retries)
	registerInboxRoutes(protected, handlers.NewInboxHandler(inboxSvc, planningSvc))

	feedbackSvc := service.NewFeedbackService(feedbackRepo)
	registerFeedbackRoutes(protected, handlers.NewFeedbackHandler(feedbackSvc))

	startScheduler(cfg.Planner, plannerSvc, userRepo, a)
}

func startScheduler(cfg config.PlannerConfig, planner *service.PlannerService, users repo.UserRepo, a *App) {
	if cfg.DailyAt == "" {
		return
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("invalid PLANNER_TZ %q, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}
	sched := service.NewSchedulerService(planner, users, loc)
	if _, err := sched.ScheduleDaily(cfg.DailyAt); err != nil {
		log.Printf("daily plan job not scheduled: %v", err)
		return
	}
	sched.Start()
	a.scheduler = sched
	log.Printf("daily plan job scheduled at %s %s", cfg.DailyAt, cfg.Timezone)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Planhub API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}

func registerProjectRoutes(api *gin.RouterGroup, h *handlers.ProjectHandler) {
	api.POST("/projects", h.Create)
	api.GET("/projects", h.List)
	api.GET("/projects/:id", h.GetByID)
	api.PATCH("/projects/:id", h.Update)
	api.POST("/projects/:id/archive", h.Archive)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.GetByID)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}

func registerPlanningRoutes(api *gin.RouterGroup, h *handlers.PlanningHandler) {
	api.POST("/planning/generate", h.GeneratePlan)
	api.GET("/planning/projects/:id/latest", h.LatestPlan)
	api.GET("/planning/projects/:id/content", h.PlanContent)
	api.GET("/planning/daily/today", h.TodayPlan)
	api.POST("/planning/daily/generate", h.GenerateDailyPlan)
	api.POST("/planning/tasks/complete", h.CompleteTask)
	api.GET("/planning/daily/summary", h.DailySummary)
}

func registerInboxRoutes(api *gin.RouterGroup, h *handlers.InboxHandler) {
	api.POST("/inbox", h.Create)
	api.GET("/inbox", h.List)
	api.POST("/inbox/:id/classify", h.Classify)
	api.POST("/inbox/:id/archive", h.Archive)
}

func registerFeedbackRoutes(api *gin.RouterGroup, h *handlers.FeedbackHandler) {
	api.POST("/feedback", h.Create)
	api.GET("/feedback", h.List)
	api.POST("/feedback/:id/resolve", h.Resolve)
}
