package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"propdesk/internal/events"
	"propdesk/internal/shared/config"
	"propdesk/internal/shared/database"
	"propdesk/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "qwerty123"

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting PropDesk database seeder...")

	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize database (runs migrations)
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Printf("\nSeeding completed. Every staff account uses the password %q.\n", seedPassword)
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"payments",
		"bookings",
		"reference_sequences",
		"events",
		"users",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedEvents(userIDs[users.RoleManager]); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	// Cached event details and availability would be stale now
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates one staff account per role
func (s *Seeder) SeedUsers() (map[users.Role]uuid.UUID, error) {
	fmt.Println("  Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"Ada", "Admin", "admin@propdesk.local", users.RoleAdmin},
		{"Max", "Manager", "manager@propdesk.local", users.RoleManager},
		{"Alex", "Accountant", "accountant@propdesk.local", users.RoleAccountant},
		{"Sam", "Agent", "agent@propdesk.local", users.RoleAgent},
	}

	userIDs := make(map[users.Role]uuid.UUID, len(usersData))
	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.role] = user.ID
		fmt.Printf("    Created user: %s (%s, %d permissions)\n", user.Email, user.Role, len(users.PermissionsFor(user.Role)))
	}

	return userIDs, nil
}

// SeedEvents creates bookable, private and draft events. Prices are in
// minor currency units.
func (s *Seeder) SeedEvents(createdBy uuid.UUID) error {
	fmt.Println("  Seeding events...")

	now := time.Now().UTC()
	eventsData := []events.Event{
		{
			Name:        "Riverside Apartments Open House",
			Description: "Guided tour of the show flats with the sales team.",
			Venue:       "Riverside Sales Gallery",
			StartDate:   now.AddDate(0, 0, 14),
			Capacity:    40,
			Price:       0,
			IsPublic:    true,
			Status:      events.StatusActive,
		},
		{
			Name:        "Investor Evening: Harbour Towers",
			Description: "Presentation of phase two with dinner.",
			Venue:       "Harbour Towers Clubhouse",
			StartDate:   now.AddDate(0, 1, 0),
			Capacity:    10,
			Price:       50000,
			IsPublic:    true,
			Status:      events.StatusActive,
		},
		{
			Name:        "VIP Preview: Garden Villas",
			Description: "Invitation only preview.",
			Venue:       "Garden Villas Plot 7",
			StartDate:   now.AddDate(0, 0, 21),
			Capacity:    12,
			Price:       25000,
			IsPublic:    false,
			Status:      events.StatusActive,
		},
		{
			Name:      "Autumn Launch Weekend",
			Venue:     "City Centre Showroom",
			StartDate: now.AddDate(0, 2, 0),
			Capacity:  200,
			Price:     10000,
			IsPublic:  true,
			Status:    events.StatusDraft,
		},
	}

	for i := range eventsData {
		event := eventsData[i]
		event.ID = uuid.New()
		if createdBy != uuid.Nil {
			event.CreatedBy = &createdBy
		}

		if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}

		fmt.Printf("    Created event: %s (%s, public=%t, bookable=%t) %s\n",
			event.Name, event.Status, event.IsPublic, event.IsBookable(), event.ID)
	}

	return nil
}
