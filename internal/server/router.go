package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/koclukapp/kocluk-backend/internal/handlers"
  "github.com/koclukapp/kocluk-backend/internal/middleware"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type RouterConfig struct {
  AuthHandler     *handlers.AuthHandler
  AuthMiddleware  *middleware.AuthMiddleware
  ProfileHandler  *handlers.ProfileHandler
  PairHandler     *handlers.PairHandler
  TaskHandler     *handlers.TaskHandler
  RewardHandler   *handlers.RewardHandler
  MessageHandler  *handlers.MessageHandler
  AdminHandler    *handlers.AdminHandler
  RealtimeHandler *handlers.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  api := router.Group("/api")
  {
    api.POST("/register", cfg.AuthHandler.Register)
    api.POST("/login", cfg.AuthHandler.Login)
  }

// ===============
// || Protected ||
// ===============
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // SSE
  protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
  protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
  protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
  // Profile
  protected.GET("/me", cfg.ProfileHandler.GetMe)
  protected.PATCH("/me", cfg.ProfileHandler.UpdateMe)
  protected.GET("/username-check", cfg.ProfileHandler.CheckUsername)
  // Pairing
  protected.GET("/students", cfg.PairHandler.ListMyStudents)
  protected.GET("/students/unassigned", cfg.PairHandler.ListUnassignedStudents)
  protected.POST("/students/:id/claim", cfg.PairHandler.ClaimStudent)
  protected.DELETE("/students/:id", cfg.PairHandler.UnpairStudent)
  protected.GET("/coach", cfg.PairHandler.GetMyCoach)
  // Tasks
  protected.POST("/tasks", cfg.TaskHandler.Create)
  protected.GET("/tasks", cfg.TaskHandler.List)
  protected.GET("/tasks/analytics", cfg.TaskHandler.Analytics)
  protected.GET("/tasks/reading-summary", cfg.TaskHandler.ReadingSummary)
  protected.POST("/tasks/:id/submit", cfg.TaskHandler.Submit)
  protected.POST("/tasks/:id/review", cfg.TaskHandler.Review)
  protected.DELETE("/tasks/:id", cfg.TaskHandler.Delete)
  // Rewards
  protected.POST("/rewards", cfg.RewardHandler.Create)
  protected.GET("/rewards", cfg.RewardHandler.List)
  protected.POST("/rewards/:id/claim", cfg.RewardHandler.Claim)
  protected.DELETE("/rewards/:id", cfg.RewardHandler.Delete)
  // Messages
  protected.POST("/messages", cfg.MessageHandler.Send)
  protected.GET("/messages/unread/count", cfg.MessageHandler.UnreadCount)
  protected.GET("/messages/:user_id", cfg.MessageHandler.GetConversation)

// ===============
// || Admin     ||
// ===============
  admin := protected.Group("/admin")
  admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleAdmin))
  admin.GET("/users", cfg.AdminHandler.ListUsers)
  admin.PATCH("/users/:id", cfg.AdminHandler.UpdateUser)
  admin.DELETE("/users/:id", cfg.AdminHandler.DeleteUser)
  admin.POST("/students/:id/reassign", cfg.AdminHandler.ReassignStudent)
  admin.GET("/username-check", cfg.AdminHandler.CheckUsername)
  admin.GET("/backup", cfg.AdminHandler.Backup)
  admin.POST("/restore", cfg.AdminHandler.Restore)
  admin.POST("/clear", cfg.AdminHandler.ClearAll)

  return router
}
