package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/google/uuid"
  "github.com/joho/godotenv"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/utils"
  "github.com/koclukapp/kocluk-backend/internal/db"
  "github.com/koclukapp/kocluk-backend/internal/repos"
  "github.com/koclukapp/kocluk-backend/internal/services"
  "github.com/koclukapp/kocluk-backend/internal/handlers"
  "github.com/koclukapp/kocluk-backend/internal/middleware"
  "github.com/koclukapp/kocluk-backend/internal/server"
  "github.com/koclukapp/kocluk-backend/internal/sse"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

func main() {
  _ = godotenv.Load()

  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  taskDeadlineHours := utils.GetEnvAsInt("TASK_DEADLINE_HOURS", 24, log)
  taskSweepSeconds := utils.GetEnvAsInt("TASK_SWEEP_INTERVAL", 60, log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  profileRepo := repos.NewProfileRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  pairRepo := repos.NewPairRepo(thePG, log)
  taskRepo := repos.NewTaskRepo(thePG, log)
  rewardRepo := repos.NewRewardRepo(thePG, log)
  messageRepo := repos.NewMessageRepo(thePG, log)

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewSSEHub(log)
  sseBus, err := services.NewRedisSSEBus(log)
  if err != nil {
    log.Warn("Redis SSE bus unavailable, events stay instance-local", "error", err)
    sseBus = nil
  }
  if sseBus != nil {
    // Without a running forwarder nothing would ever drain the bus channel
    // back into this instance's hub, so drop the bus and broadcast locally.
    if err := sseBus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
      log.Warn("Could not start SSE bus forwarder, events stay instance-local", "error", err)
      sseBus = nil
    }
  }
  sseEmitter := services.NewSSEEmitter(log, sseHub, sseBus)

  // Services
  log.Info("Setting up Services from main...")
  messageNotifier := services.NewMessageNotifier(sseEmitter)
  taskNotifier := services.NewTaskNotifier(sseEmitter)
  rewardNotifier := services.NewRewardNotifier(sseEmitter)
  authService := services.NewAuthService(thePG, log, profileRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  profileService := services.NewProfileService(thePG, log, profileRepo)
  pairService := services.NewPairService(thePG, log, profileRepo, pairRepo)
  taskService := services.NewTaskService(thePG, log, taskRepo, pairService, taskNotifier, time.Duration(taskDeadlineHours)*time.Hour, time.Duration(taskSweepSeconds)*time.Second)
  rewardService := services.NewRewardService(thePG, log, rewardRepo, pairService, rewardNotifier)
  messageService := services.NewMessageService(thePG, log, messageRepo, pairService, messageNotifier)
  adminService := services.NewAdminService(thePG, log, profileRepo, userTokenRepo, pairRepo, taskRepo, rewardRepo, messageRepo)
  taskService.StartDeadlineSweeper(context.Background())

  bootstrapAdmin(log, profileRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  profileHandler := handlers.NewProfileHandler(profileService)
  pairHandler := handlers.NewPairHandler(pairService)
  taskHandler := handlers.NewTaskHandler(taskService)
  rewardHandler := handlers.NewRewardHandler(rewardService)
  messageHandler := handlers.NewMessageHandler(messageService)
  adminHandler := handlers.NewAdminHandler(adminService)
  realtimeHandler := handlers.NewRealtimeHandler(log, sseHub)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:     authHandler,
    AuthMiddleware:  authMiddleware,
    ProfileHandler:  profileHandler,
    PairHandler:     pairHandler,
    TaskHandler:     taskHandler,
    RewardHandler:   rewardHandler,
    MessageHandler:  messageHandler,
    AdminHandler:    adminHandler,
    RealtimeHandler: realtimeHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}

// bootstrapAdmin seeds the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Registration never produces admins, so without this a
// fresh deployment has no way to reach the privileged endpoints.
func bootstrapAdmin(log *logger.Logger, profileRepo repos.ProfileRepo) {
  adminEmail := utils.GetEnv("ADMIN_EMAIL", "", nil)
  adminPassword := utils.GetEnv("ADMIN_PASSWORD", "", nil)
  if adminEmail == "" || adminPassword == "" {
    return
  }
  ctx := context.Background()
  exists, err := profileRepo.EmailExists(ctx, nil, adminEmail)
  if err != nil {
    log.Warn("Admin bootstrap: email check failed", "error", err)
    return
  }
  if exists {
    return
  }
  admin := &types.Profile{
    ID:        uuid.New(),
    Email:     adminEmail,
    FirstName: "Admin",
    LastName:  "Admin",
    Username:  utils.GetEnv("ADMIN_USERNAME", "admin", nil),
    Password:  adminPassword,
    Role:      types.RoleAdmin,
  }
  utils.NormalizeProfileFields(ctx, admin)
  if err := utils.HashPassword(ctx, log, admin); err != nil {
    log.Warn("Admin bootstrap: hashing failed", "error", err)
    return
  }
  if _, err := profileRepo.Create(ctx, nil, []*types.Profile{admin}); err != nil {
    log.Warn("Admin bootstrap: create failed", "error", err)
    return
  }
  log.Info("Admin account bootstrapped", "email", admin.Email)
}
