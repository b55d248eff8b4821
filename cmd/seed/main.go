package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskapi/internal/auth"
	"taskapi/internal/config"
	"taskapi/internal/db"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/logger"
	"taskapi/internal/model"
	"taskapi/internal/repository"
	"taskapi/internal/service"
)

var (
	seedEmail    string
	seedPassword string
	seedName     string
	seedTasks    int
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo identity and sample tasks",
	Long: `Creates a demo identity (or reuses it when the email is already registered)
and adds sample tasks spread across every status and priority.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&seedEmail, "email", "demo@example.com", "Demo identity email")
	rootCmd.Flags().StringVar(&seedPassword, "password", "password123", "Demo identity password")
	rootCmd.Flags().StringVar(&seedName, "name", "Demo User", "Demo identity display name")
	rootCmd.Flags().IntVar(&seedTasks, "tasks", 10, "Number of sample tasks to create")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	log := logger.DB()
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database ready")

	userRepo := repository.NewUserRepository(gormDB)
	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Expiry:   cfg.JWTExpiry,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	authService := service.NewAuthService(userRepo, tokens, auth.NewBcryptHasher(0))
	taskService := service.NewTaskService(repository.NewTaskRepository(gormDB), nil, nil)

	ctx := cmd.Context()
	owner, err := ensureIdentity(ctx, authService, userRepo)
	if err != nil {
		return err
	}

	created, err := createSampleTasks(ctx, taskService, owner, sampleTasks(seedTasks, time.Now()))
	if err != nil {
		return err
	}
	log.Infof("seed completed: %d tasks created for %s", created, seedEmail)
	return nil
}

// ensureIdentity signs the demo identity up, or returns the existing one.
func ensureIdentity(ctx context.Context, authService service.AuthService, users repository.UserRepository) (uuid.UUID, error) {
	user, _, err := authService.Signup(ctx, service.SignupInput{
		Name:     seedName,
		Email:    seedEmail,
		Password: seedPassword,
	})
	if err == nil {
		logger.DB().Infof("created identity %s", user.Email)
		return user.ID, nil
	}
	if !errors.Is(err, apperrors.ErrEmailTaken) {
		return uuid.Nil, fmt.Errorf("create identity: %w", err)
	}

	existing, err := users.FindByEmail(ctx, model.NormalizeEmail(seedEmail))
	if err != nil {
		return uuid.Nil, fmt.Errorf("find identity: %w", err)
	}
	logger.DB().Infof("reusing identity %s", existing.Email)
	return existing.ID, nil
}

func createSampleTasks(ctx context.Context, tasks service.TaskService, owner uuid.UUID, inputs []service.TaskInput) (int, error) {
	for i, in := range inputs {
		if _, err := tasks.Create(ctx, owner, in); err != nil {
			return i, fmt.Errorf("create task %q: %w", in.Title, err)
		}
	}
	return len(inputs), nil
}

// sampleTasks cycles statuses and priorities; every third task gets a due
// date, alternating between past and future.
func sampleTasks(n int, now time.Time) []service.TaskInput {
	statuses := []model.TaskStatus{model.TaskStatusPending, model.TaskStatusInProgress, model.TaskStatusCompleted}
	priorities := []model.TaskPriority{model.TaskPriorityLow, model.TaskPriorityMedium, model.TaskPriorityHigh}
	tags := [][]string{{"work"}, {"home", "errand"}, {}, {"work", "urgent"}}

	inputs := make([]service.TaskInput, 0, n)
	for i := 0; i < n; i++ {
		in := service.TaskInput{
			Title:       fmt.Sprintf("Sample task %d", i+1),
			Description: fmt.Sprintf("Seeded task number %d", i+1),
			Status:      statuses[i%len(statuses)],
			Priority:    priorities[(i/len(statuses))%len(priorities)],
			Tags:        tags[i%len(tags)],
		}
		if i%3 == 0 {
			offset := time.Duration(i+1) * 24 * time.Hour
			if i%2 == 1 {
				offset = -offset
			}
			due := now.Add(offset).UTC().Truncate(24 * time.Hour)
			in.DueDate = &due
		}
		inputs = append(inputs, in)
	}
	return inputs
}
