package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskman/internal/config"
	"taskman/internal/db"
	"taskman/internal/model"
	"taskman/internal/repository"
)

// SeedUser is one user entry in the seed file. Passwords are plaintext in
// the file and hashed on insert.
type SeedUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// SeedTask is one task entry in the seed file. Dates use the API layout.
type SeedTask struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

// SeedFile is the top-level shape of the seed data file.
type SeedFile struct {
	Users []SeedUser `json:"users"`
	Tasks []SeedTask `json:"tasks"`
}

func main() {
	file := flag.String("file", "seed.json", "path to the seed data file")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	data, err := loadSeedFile(*file)
	if err != nil {
		log.Fatalf("Failed to load seed file: %v", err)
	}
	log.Printf("Loaded %d users and %d tasks from %s", len(data.Users), len(data.Tasks), *file)

	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	ctx := context.Background()

	created, skipped, userIDs, err := seedUsers(ctx, userRepo, data.Users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	log.Printf("Users: %d created, %d already present", created, skipped)

	taskCount, err := seedTasks(ctx, taskRepo, userIDs, data.Tasks)
	if err != nil {
		log.Fatalf("Failed to seed tasks: %v", err)
	}
	log.Printf("Tasks: %d created", taskCount)

	log.Println("Seed completed successfully!")
}

// loadSeedFile reads and parses the seed data file.
func loadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var data SeedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &data, nil
}

// seedUsers inserts users that are not yet present, keyed by username.
// Returns the username-to-id mapping used to attach tasks.
func seedUsers(ctx context.Context, repo repository.UserRepository, users []SeedUser) (created, skipped int, ids map[string]uint, err error) {
	ids = make(map[string]uint, len(users))

	for _, item := range users {
		existing, err := repo.FindByUsername(ctx, item.Username)
		if err == nil {
			ids[item.Username] = existing.ID
			skipped++
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return created, skipped, ids, fmt.Errorf("check user %s: %w", item.Username, err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, skipped, ids, fmt.Errorf("hash password for %s: %w", item.Username, err)
		}

		user := model.User{
			Username:     item.Username,
			Email:        item.Email,
			PasswordHash: string(hashed),
			CreatedDate:  time.Now(),
		}
		if item.FirstName != "" {
			user.FirstName = &item.FirstName
		}
		if item.LastName != "" {
			user.LastName = &item.LastName
		}
		if item.Role != "" {
			user.Role = &item.Role
		}

		if err := repo.Create(ctx, &user); err != nil {
			return created, skipped, ids, fmt.Errorf("create user %s: %w", item.Username, err)
		}
		ids[item.Username] = user.ID
		created++
	}

	return created, skipped, ids, nil
}

// seedTasks inserts tasks, resolving owners through the seeded usernames.
// Entries referencing an unknown username are skipped with a warning.
func seedTasks(ctx context.Context, repo repository.TaskRepository, userIDs map[string]uint, tasks []SeedTask) (int, error) {
	count := 0
	for _, item := range tasks {
		userID, ok := userIDs[item.Username]
		if !ok {
			log.Printf("Skipping task %q: unknown user %q", item.Title, item.Username)
			continue
		}

		task := model.Task{
			UserID:      userID,
			Title:       item.Title,
			CreatedDate: time.Now(),
			Status:      item.Status,
			Category:    item.Category,
		}
		if item.Summary != "" {
			task.Summary = &item.Summary
		}
		if item.Priority != "" {
			task.Priority = &item.Priority
		}
		if item.DueDate != "" {
			due, err := time.Parse(model.DateTimeLayout, item.DueDate)
			if err != nil {
				log.Printf("Skipping task %q: bad due_date %q", item.Title, item.DueDate)
				continue
			}
			task.DueDate = &due
		}

		if err := repo.Create(ctx, &task); err != nil {
			return count, fmt.Errorf("create task %q: %w", item.Title, err)
		}
		count++
	}
	return count, nil
}
