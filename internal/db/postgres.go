package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/types"
  "github.com/koclukapp/kocluk-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "kocluk", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
  }

  return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.Profile{},
    &types.UserToken{},
    &types.CoachStudentPair{},
    &types.Task{},
    &types.Reward{},
    &types.Message{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  s.log.Info("Configuring foreign key relationships for postgres tables...")
  fks := []struct {
    table      string
    constraint string
    column     string
    refTable   string
  }{
    {"user_tokens", "fk_user_tokens_user_id", "user_id", "profiles"},
    {"coach_student_pairs", "fk_pairs_coach_id", "coach_id", "profiles"},
    {"coach_student_pairs", "fk_pairs_student_id", "student_id", "profiles"},
    {"tasks", "fk_tasks_coach_id", "coach_id", "profiles"},
    {"tasks", "fk_tasks_student_id", "student_id", "profiles"},
    {"rewards", "fk_rewards_coach_id", "coach_id", "profiles"},
    {"rewards", "fk_rewards_student_id", "student_id", "profiles"},
    {"messages", "fk_messages_sender_id", "sender_id", "profiles"},
    {"messages", "fk_messages_receiver_id", "receiver_id", "profiles"},
  }
  for _, fk := range fks {
    stmt := fmt.Sprintf(`
      DO $$ BEGIN
        IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
          ALTER TABLE "%s" ADD CONSTRAINT "%s"
          FOREIGN KEY ("%s") REFERENCES "%s"("id") ON DELETE CASCADE;
        END IF;
      END $$;
    `, fk.constraint, fk.table, fk.constraint, fk.column, fk.refTable)
    if err := s.db.Exec(stmt).Error; err != nil {
      return fmt.Errorf("Failed to add %s: %w", fk.constraint, err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
