package admin

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/giftpool/backend/internal/models"
)

// GetAdminAccount retrieves an admin account by username
func GetAdminAccount(db *sqlx.DB, username string) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	err := db.Get(&admin, `SELECT id, username, password_hash, role, created_at, last_login_at FROM admin_accounts WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// VerifyAdminPassword checks the provided password against the stored hash
func VerifyAdminPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// CreateAdminAccount creates or updates an admin account (used for seeding)
func CreateAdminAccount(db *sqlx.DB, username, plainPassword, role string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO admin_accounts (username, password_hash, role, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role
	`, username, string(hashedPassword), role)

	return err
}

// ValidateAdminLogin validates a username + password combination and stamps
// the login time on success.
func ValidateAdminLogin(db *sqlx.DB, username, password string) (*models.AdminAccount, error) {
	admin, err := GetAdminAccount(db, username)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[ADMIN] No admin account found for username: %s", username)
			return nil, fmt.Errorf("admin account not found")
		}
		log.Printf("[ADMIN] Database error: %v", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyAdminPassword(admin.PasswordHash, password) {
		log.Printf("[ADMIN] Password verification failed for username: %s", username)
		return nil, fmt.Errorf("invalid credentials")
	}

	if _, err := db.Exec(`UPDATE admin_accounts SET last_login_at=NOW() WHERE id=$1`, admin.ID); err != nil {
		log.Printf("[ADMIN] Failed to stamp last login for %s: %v", username, err)
	}
	return admin, nil
}

// LogAdminAction records an admin action in the audit log. Best-effort:
// audit failures are logged, never bubbled up to block the action itself.
func LogAdminAction(db *sqlx.DB, adminID int64, action, detail string) {
	_, err := db.Exec(`
		INSERT INTO admin_audit (admin_id, action, detail, created_at)
		VALUES ($1, $2, $3, NOW())
	`, adminID, action, detail)
	if err != nil {
		log.Printf("[ADMIN] Failed to log admin action %s: %v", action, err)
	}
}

// GetAdminAuditLogs retrieves recent admin audit logs with pagination
func GetAdminAuditLogs(db *sqlx.DB, limit, offset int) ([]models.AdminAudit, error) {
	var logs []models.AdminAudit
	query := `
		SELECT id, admin_id, action, detail, created_at
		FROM admin_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	err := db.Select(&logs, query, limit, offset)
	return logs, err
}
