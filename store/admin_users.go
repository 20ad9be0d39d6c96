package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrAdminNotFound = errors.New("admin user not found")

// AdminUser may press car calls and read the audit trail and configuration.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SeedAdminUser creates the first operator account when none exists. hash is
// only called when a row will be written. It reports whether one was created.
func (db *DB) SeedAdminUser(username string, hash func() (string, error)) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return false, fmt.Errorf("count admin users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	h, err := hash()
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := tx.Exec(db.Q(`INSERT INTO admin_users (username, password_hash) VALUES (?, ?)`), username, h); err != nil {
		return false, fmt.Errorf("create admin %s: %w", username, err)
	}
	return true, tx.Commit()
}

func (db *DB) GetAdminUser(username string) (*AdminUser, error) {
	var u AdminUser
	var createdAt any
	err := db.QueryRow(db.Q(`SELECT id, username, password_hash, created_at FROM admin_users WHERE username=?`), username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
