package database

import (
	"database/sql"
	"time"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password, name, role, is_active, created_at, updated_at
			  FROM users WHERE email = $1 AND is_active = true`

	err := db.QueryRow(query, email).Scan(
		&user.ID, &user.Email, &user.Password, &user.Name,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(db *sql.DB, user *models.User) error {
	query := `INSERT INTO users (email, password, name, role, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, true, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err := db.QueryRow(query, user.Email, user.Password, user.Name, user.Role).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	user.IsActive = true
	return nil
}

func UpdateUserPassword(db *sql.DB, userID string, hashedPassword string) error {
	query := `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.Exec(query, hashedPassword, userID)
	return err
}

// TouchUserLogin stamps the user's last successful login.
func TouchUserLogin(db *sql.DB, userID string, at time.Time) error {
	query := `UPDATE users SET updated_at = $1 WHERE id = $2`
	_, err := db.Exec(query, at, userID)
	return err
}
