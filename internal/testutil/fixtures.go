package testutil

import (
	"context"
	"database/sql"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// TestPassword is the password of every fixture user
const TestPassword = "password123"

// Fixtures holds test data
type Fixtures struct {
	DB          *sql.DB
	AdminUser   *models.User
	AnalystUser *models.User
	ViewerUser  *models.User
}

// SetupFixtures creates one user per role
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	return &Fixtures{
		DB:          db,
		AdminUser:   createUser(t, db, "admin", models.RoleAdmin),
		AnalystUser: createUser(t, db, "analyst", models.RoleAnalyst),
		ViewerUser:  createUser(t, db, "viewer", models.RoleViewer),
	}
}

// Actor returns the identity of a fixture user
func Actor(u *models.User) models.Actor {
	return models.Actor{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// LookupID returns the id of a seeded scam type or state by name
func LookupID(t *testing.T, db *sql.DB, table, name string) int {
	t.Helper()

	var id int
	// table is a test constant
	if err := db.QueryRowContext(context.Background(),
		"SELECT id FROM "+table+" WHERE name = $1", name).Scan(&id); err != nil {
		t.Fatalf("Failed to find %s %q: %v", table, name, err)
	}
	return id
}

func createUser(t *testing.T, db *sql.DB, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	err = db.QueryRow(`
		INSERT INTO users (username, password_hash, role, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at, updated_at
	`, user.Username, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}
