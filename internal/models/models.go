package models

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Gift is one gift page: a chain of puzzle stages guarding a message.
type Gift struct {
	ID            int64        `db:"id" json:"id"`
	Token         string       `db:"token" json:"token"`
	SenderName    string       `db:"sender_name" json:"sender_name"`
	RecipientName string       `db:"recipient_name" json:"recipient_name"`
	Message       string       `db:"message" json:"-"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	CompletedAt   sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
}

// GiftStage is one puzzle in a gift's chain. Payload carries the
// stage-specific setup the client renders; SolutionHash guards client-side
// puzzle kinds and is empty for server-simulated ones.
type GiftStage struct {
	ID           int64          `db:"id" json:"id"`
	GiftToken    string         `db:"gift_token" json:"gift_token"`
	StageNo      int            `db:"stage_no" json:"stage_no"`
	Kind         string         `db:"kind" json:"kind"`
	Title        string         `db:"title" json:"title"`
	Payload      types.JSONText `db:"payload" json:"payload,omitempty"`
	SolutionHash string         `db:"solution_hash" json:"-"`
	SolvedAt     sql.NullTime   `db:"solved_at" json:"solved_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// PuzzleSession is one billiards table run against a gift stage.
type PuzzleSession struct {
	ID           int64        `db:"id" json:"id"`
	SessionToken string       `db:"session_token" json:"session_token"`
	GiftToken    string       `db:"gift_token" json:"gift_token"`
	StageID      int64        `db:"stage_id" json:"stage_id"`
	TargetSum    int          `db:"target_sum" json:"target_sum"`
	Status       string       `db:"status" json:"status"`
	Shots        int          `db:"shots" json:"shots"`
	Resets       int          `db:"resets" json:"resets"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	LastActivity time.Time    `db:"last_activity" json:"last_activity"`
	SolvedAt     sql.NullTime `db:"solved_at" json:"solved_at,omitempty"`
	EndedAt      sql.NullTime `db:"ended_at" json:"ended_at,omitempty"`
}

// SessionShot is one released cue strike within a session.
type SessionShot struct {
	ID            int64     `db:"id" json:"id"`
	SessionID     int64     `db:"session_id" json:"session_id"`
	ShotNumber    int       `db:"shot_number" json:"shot_number"`
	Power         float64   `db:"power" json:"power"`
	DirX          float64   `db:"dir_x" json:"dir_x"`
	DirY          float64   `db:"dir_y" json:"dir_y"`
	PocketedSum   int       `db:"pocketed_sum" json:"pocketed_sum"`
	PocketedCount int       `db:"pocketed_count" json:"pocketed_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AdminAccount is a backoffice login.
type AdminAccount struct {
	ID           int64        `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Role         string       `db:"role" json:"role"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	LastLoginAt  sql.NullTime `db:"last_login_at" json:"last_login_at,omitempty"`
}

// AdminAudit records every admin action for review.
type AdminAudit struct {
	ID        int64     `db:"id" json:"id"`
	AdminID   int64     `db:"admin_id" json:"admin_id"`
	Action    string    `db:"action" json:"action"`
	Detail    string    `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RuntimeConfig is one tunable key set through the admin API, overlaying
// the built-in table rules without a redeploy.
type RuntimeConfig struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedBy int64     `db:"updated_by" json:"updated_by"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
