package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"anoa.com/learnhub/internal/approval"
	"anoa.com/learnhub/internal/config"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/scheduler"
	"anoa.com/learnhub/pkg/password"
	"anoa.com/learnhub/pkg/ratelimiter"
	"anoa.com/learnhub/pkg/response"
	"anoa.com/learnhub/pkg/search"
	"anoa.com/learnhub/pkg/storage"
	"anoa.com/learnhub/pkg/token"

	adminHttp "anoa.com/learnhub/internal/modules/admin/delivery/http"
	adminService "anoa.com/learnhub/internal/modules/admin/service"

	attachmentHttp "anoa.com/learnhub/internal/modules/attachment/delivery/http"
	attachmentRepo "anoa.com/learnhub/internal/modules/attachment/repository"
	attachmentService "anoa.com/learnhub/internal/modules/attachment/service"

	courseHttp "anoa.com/learnhub/internal/modules/course/delivery/http"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"

	notiHttp "anoa.com/learnhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/learnhub/internal/modules/notification/repository"
	notifService "anoa.com/learnhub/internal/modules/notification/service"

	reviewHttp "anoa.com/learnhub/internal/modules/review/delivery/http"
	reviewRepo "anoa.com/learnhub/internal/modules/review/repository"
	reviewService "anoa.com/learnhub/internal/modules/review/service"

	statHttp "anoa.com/learnhub/internal/modules/stat/delivery/http"
	statService "anoa.com/learnhub/internal/modules/stat/service"

	studentHttp "anoa.com/learnhub/internal/modules/student/delivery/http"
	studentRepo "anoa.com/learnhub/internal/modules/student/repository"
	studentService "anoa.com/learnhub/internal/modules/student/service"

	teacherHttp "anoa.com/learnhub/internal/modules/teacher/delivery/http"
	teacherRepo "anoa.com/learnhub/internal/modules/teacher/repository"
	teacherService "anoa.com/learnhub/internal/modules/teacher/service"

	transactionHttp "anoa.com/learnhub/internal/modules/transaction/delivery/http"
	transactionRepo "anoa.com/learnhub/internal/modules/transaction/repository"
	transactionService "anoa.com/learnhub/internal/modules/transaction/service"

	userHttp "anoa.com/learnhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	userService "anoa.com/learnhub/internal/modules/user/service"
)

// Dependencies are the external clients the server is built on. Redis,
// Search and Storage may be nil; the features behind them degrade.
type Dependencies struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Search    search.CourseIndex
	Storage   storage.AssetStorage
	Tokens    *token.Codec
	Hasher    password.Hasher
	Scheduler *scheduler.Scheduler
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	db := deps.DB
	response.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	accountRepository := userRepo.NewAccountRepository(db)
	studentRepository := studentRepo.NewStudentRepository(db)
	teacherRepository := teacherRepo.NewTeacherRepository(db)
	courseRepository := courseRepo.NewCourseRepository(db)
	transactionRepository := transactionRepo.NewTransactionRepository(db)
	reviewRepository := reviewRepo.NewReviewRepository(db)
	attachmentRepository := attachmentRepo.NewAttachmentRepository(db)

	// Notification Module
	notificationRepository := notifRepo.NewEventRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, deps.Redis)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, deps.Redis, cfg.AllowedOrigins)

	loginLimiter := ratelimiter.New(ratelimiter.NewRedisCounter(deps.Redis), "login", cfg.LoginMaxAttempts, cfg.LoginWindow)
	authSvc := userService.NewAuthService(
		accountRepository,
		studentRepository,
		teacherRepository,
		deps.Hasher,
		deps.Tokens,
		loginLimiter,
		notificationSvc,
	)
	authHandler := userHttp.NewAuthHandler(authSvc)

	studentSvc := studentService.NewStudentService(studentRepository, notificationSvc)
	studentHandler := studentHttp.NewStudentHandler(studentSvc)

	teacherSvc := teacherService.NewTeacherService(teacherRepository, notificationSvc)
	teacherHandler := teacherHttp.NewTeacherHandler(teacherSvc)

	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepository, deps.Storage, cfg.OrphanGracePeriod)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	courseSvc := courseService.NewCourseService(
		courseRepository,
		teacherRepository,
		attachmentSvc,
		deps.Search,
		approval.NewProfileMachine(),
		notificationSvc,
	)
	courseHandler := courseHttp.NewCourseHandler(courseSvc)

	transactionSvc := transactionService.NewTransactionService(transactionRepository, approval.NewTransactionMachine(), notificationSvc)
	transactionHandler := transactionHttp.NewTransactionHandler(transactionSvc)

	reviewSvc := reviewService.NewReviewService(reviewRepository, studentRepository, courseRepository)
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc)

	adminSvc := adminService.NewAdminService(adminService.Repositories{
		Accounts:     accountRepository,
		Students:     studentRepository,
		Teachers:     teacherRepository,
		Courses:      courseRepository,
		Transactions: transactionRepository,
	}, transactionSvc, approval.NewProfileMachine(), notificationSvc)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	statSvc := statService.NewStatService(accountRepository, statService.DatabasePinger(db), statService.RedisPinger(deps.Redis))
	statHandler := statHttp.NewStatHandler(statSvc)

	if deps.Scheduler != nil {
		jobs := []scheduler.Job{
			userService.NewOrphanSweeper(accountRepository, cfg.OrphanGracePeriod, cfg.ReconcileSchedule),
			attachmentService.NewCleanupJob(attachmentSvc, cfg.ReconcileSchedule),
		}
		for _, job := range jobs {
			if err := deps.Scheduler.Register(job); err != nil {
				log.Fatalf("failed to register %s: %v", job.Name(), err)
			}
		}
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(accountRepository, deps.Tokens)
	adminOnly := authMiddleware.RequireRole(entity.RoleAdmin)

	router.GET("/health", statHandler.Health)

	// Public routes (no auth required)
	auth := router.Group("/auth")
	{
		auth.POST("/register/student", authHandler.RegisterStudent)
		auth.POST("/register/teacher", authHandler.RegisterTeacher)
		auth.POST("/register/review", authHandler.RegisterReview)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		auth.PATCH("/password", authMiddleware.RequireAuth(), authHandler.ChangePassword)
	}

	// The websocket route authenticates from the query string, so it sits
	// outside the bearer-only admin group.
	router.GET("/admin/ws", authMiddleware.RequireSocketAuth(), adminOnly, notificationHandler.HandleWebSocket)

	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), adminOnly)
	{
		for _, action := range []approval.Action{approval.ActionApprove, approval.ActionReject, approval.ActionSuspend} {
			admin.PATCH("/students/:id/"+string(action), adminHandler.ModerateStudent(action))
			admin.PATCH("/teachers/:id/"+string(action), adminHandler.ModerateTeacher(action))
		}
		admin.PATCH("/transactions/:id/approve", adminHandler.ModerateTransaction(approval.ActionApprove))
		admin.PATCH("/transactions/:id/reject", adminHandler.ModerateTransaction(approval.ActionReject))

		admin.GET("/pending", adminHandler.GetPending)
		admin.GET("/users", adminHandler.GetAllUsers)
		admin.PATCH("/users/:id/activate", adminHandler.ActivateUser)
		admin.PATCH("/users/:id/deactivate", adminHandler.DeactivateUser)
		admin.GET("/events", notificationHandler.ListEvents)
		admin.GET("/stats", statHandler.Overview)
	}

	students := router.Group("/students")
	students.Use(authMiddleware.RequireAuth())
	{
		students.GET("", adminOnly, studentHandler.List)
		students.GET("/:id", studentHandler.Get)
		students.PATCH("/:id", studentHandler.Update)
		students.DELETE("/:id", adminOnly, studentHandler.Delete)
	}

	teachers := router.Group("/teachers")
	{
		teachers.GET("", authMiddleware.OptionalAuth(), teacherHandler.List)
		teachers.GET("/:id", authMiddleware.OptionalAuth(), teacherHandler.Get)
		teachers.PATCH("/:id", authMiddleware.RequireAuth(), teacherHandler.Update)
		teachers.DELETE("/:id", authMiddleware.RequireAuth(), adminOnly, teacherHandler.Delete)
	}

	courses := router.Group("/courses")
	{
		courses.GET("", authMiddleware.OptionalAuth(), courseHandler.List)
		courses.GET("/search", courseHandler.Search)
		courses.GET("/:id", authMiddleware.OptionalAuth(), courseHandler.Get)
		courses.POST("", authMiddleware.RequireAuth(), authMiddleware.RequireRole(entity.RoleTeacher), courseHandler.Create)
		courses.PATCH("/:id", authMiddleware.RequireAuth(), courseHandler.Update)
		courses.DELETE("/:id", authMiddleware.RequireAuth(), courseHandler.Delete)
		courses.PATCH("/:id/approve", authMiddleware.RequireAuth(), adminOnly, courseHandler.Approve)
		courses.PATCH("/:id/reject", authMiddleware.RequireAuth(), adminOnly, courseHandler.Reject)
		courses.PATCH("/:id/suspend", authMiddleware.RequireAuth(), adminOnly, courseHandler.Suspend)
	}

	transactions := router.Group("/transactions")
	transactions.Use(authMiddleware.RequireAuth())
	{
		transactions.POST("", transactionHandler.Create)
		transactions.GET("", adminOnly, transactionHandler.List)
		transactions.GET("/:id", transactionHandler.Get)
		transactions.PATCH("/:id", adminOnly, transactionHandler.Update)
	}

	reviews := router.Group("/reviews")
	{
		reviews.GET("", reviewHandler.List)
		reviews.GET("/:id", reviewHandler.Get)
		reviews.POST("", authMiddleware.RequireAuth(), reviewHandler.Create)
		reviews.PATCH("/:id", authMiddleware.RequireAuth(), reviewHandler.Update)
		reviews.DELETE("/:id", authMiddleware.RequireAuth(), reviewHandler.Delete)
	}

	router.POST("/uploads",
		authMiddleware.RequireAuth(),
		authMiddleware.RequireRole(entity.RoleTeacher, entity.RoleAdmin),
		attachmentHandler.UploadAttachment,
	)

	return &Server{
		engine: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks until the server stops. http.ErrServerClosed after Shutdown is
// not an error.
func (s *Server) Run() error {
	log.Printf("Server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
