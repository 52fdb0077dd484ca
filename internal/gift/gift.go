package gift

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/giftpool/backend/internal/models"
)

// Stage kinds. Billiards runs server-side as a simulated table; the rest
// are client-rendered puzzles checked against a stored solution hash.
const (
	KindLetters   = "letters"
	KindBilliards = "billiards"
	KindMemory    = "memory"
	KindCrossword = "crossword"
	KindJigsaw    = "jigsaw"
)

var validKinds = map[string]bool{
	KindLetters:   true,
	KindBilliards: true,
	KindMemory:    true,
	KindCrossword: true,
	KindJigsaw:    true,
}

// ErrStageLocked is returned when a stage is attempted out of order.
var ErrStageLocked = errors.New("previous stages not solved yet")

// StageSpec describes one stage of a new gift.
type StageSpec struct {
	Kind     string          `json:"kind"`
	Title    string          `json:"title"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Solution string          `json:"solution,omitempty"`
}

// CreateRequest describes a new gift.
type CreateRequest struct {
	SenderName    string      `json:"sender_name"`
	RecipientName string      `json:"recipient_name"`
	Message       string      `json:"message"`
	Stages        []StageSpec `json:"stages"`
}

func newGiftToken() string {
	bytes := make([]byte, 12)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// hashSolution normalizes and hashes a stage solution. Case and surrounding
// whitespace never decide whether a recipient gets their gift.
func hashSolution(answer string) string {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CreateGift inserts a gift and its stage chain in one transaction and
// returns the gift with its share token.
func CreateGift(db *sqlx.DB, req CreateRequest) (*models.Gift, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("gift message is required")
	}
	if len(req.Stages) == 0 {
		return nil, errors.New("at least one stage is required")
	}
	for i, st := range req.Stages {
		if !validKinds[st.Kind] {
			return nil, fmt.Errorf("stage %d: unknown kind %q", i+1, st.Kind)
		}
		if st.Kind != KindBilliards && strings.TrimSpace(st.Solution) == "" {
			return nil, fmt.Errorf("stage %d (%s): solution is required", i+1, st.Kind)
		}
	}

	tx, err := db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	token := newGiftToken()
	var gift models.Gift
	err = tx.QueryRowx(`INSERT INTO gifts (token, sender_name, recipient_name, message, created_at) VALUES ($1, $2, $3, $4, NOW()) RETURNING id, token, sender_name, recipient_name, message, created_at`,
		token, req.SenderName, req.RecipientName, req.Message).StructScan(&gift)
	if err != nil {
		return nil, fmt.Errorf("insert gift: %w", err)
	}

	for i, st := range req.Stages {
		payload := st.Payload
		if payload == nil {
			payload = json.RawMessage("{}")
		}
		solutionHash := ""
		if st.Kind != KindBilliards {
			solutionHash = hashSolution(st.Solution)
		}
		if _, err := tx.Exec(`INSERT INTO gift_stages (gift_token, stage_no, kind, title, payload, solution_hash, created_at) VALUES ($1, $2, $3, $4, $5::jsonb, $6, NOW())`,
			token, i+1, st.Kind, st.Title, string(payload), solutionHash); err != nil {
			return nil, fmt.Errorf("insert stage %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Printf("[GIFT] Created gift %s with %d stages", token, len(req.Stages))
	return &gift, nil
}

// GetGift loads a gift and its stages ordered by stage number.
func GetGift(db *sqlx.DB, token string) (*models.Gift, []models.GiftStage, error) {
	var gift models.Gift
	if err := db.Get(&gift, `SELECT * FROM gifts WHERE token = $1`, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, errors.New("gift not found")
		}
		return nil, nil, err
	}
	var stages []models.GiftStage
	if err := db.Select(&stages, `SELECT * FROM gift_stages WHERE gift_token = $1 ORDER BY stage_no`, token); err != nil {
		return nil, nil, err
	}
	return &gift, stages, nil
}

// StageView is a stage as presented to the recipient: locked stages hide
// their payload so the chain cannot be skimmed ahead.
type StageView struct {
	ID       int64           `json:"id"`
	StageNo  int             `json:"stage_no"`
	Kind     string          `json:"kind"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	SolvedAt string          `json:"solved_at,omitempty"`
}

// ProgressView is the recipient-facing state of a gift. Message is empty
// until the whole chain is solved.
type ProgressView struct {
	Token         string      `json:"token"`
	SenderName    string      `json:"sender_name"`
	RecipientName string      `json:"recipient_name"`
	Stages        []StageView `json:"stages"`
	CurrentStage  int         `json:"current_stage"`
	Completed     bool        `json:"completed"`
	Message       string      `json:"message,omitempty"`
}

// Progress builds the recipient view: solved stages, the one current stage
// with its payload, locked stages with titles only, and the gift message
// once everything is solved.
func Progress(db *sqlx.DB, token string) (*ProgressView, error) {
	gift, stages, err := GetGift(db, token)
	if err != nil {
		return nil, err
	}

	view := &ProgressView{
		Token:         gift.Token,
		SenderName:    gift.SenderName,
		RecipientName: gift.RecipientName,
		CurrentStage:  -1,
	}

	solved := 0
	for _, st := range stages {
		sv := StageView{ID: st.ID, StageNo: st.StageNo, Kind: st.Kind, Title: st.Title}
		switch {
		case st.SolvedAt.Valid:
			sv.Status = "solved"
			sv.SolvedAt = st.SolvedAt.Time.UTC().Format("2006-01-02T15:04:05Z")
			solved++
		case view.CurrentStage == -1:
			sv.Status = "current"
			sv.Payload = json.RawMessage(st.Payload)
			view.CurrentStage = st.StageNo
		default:
			sv.Status = "locked"
		}
		view.Stages = append(view.Stages, sv)
	}

	if solved == len(stages) {
		view.Completed = true
		view.CurrentStage = 0
		view.Message = gift.Message
	}
	return view, nil
}

// MarkStageSolved records a stage solve. Stages unlock strictly in order:
// solving stage N requires every earlier stage solved. Re-solving an
// already solved stage is a no-op, which makes retried solve signals safe.
// Solving the final stage completes the gift.
func MarkStageSolved(db *sqlx.DB, giftToken string, stageID int64) error {
	var stages []models.GiftStage
	if err := db.Select(&stages, `SELECT * FROM gift_stages WHERE gift_token = $1 ORDER BY stage_no`, giftToken); err != nil {
		return err
	}

	var target *models.GiftStage
	for i := range stages {
		if stages[i].ID == stageID {
			target = &stages[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("stage %d does not belong to gift %s", stageID, giftToken)
	}
	if target.SolvedAt.Valid {
		return nil
	}
	for _, st := range stages {
		if st.StageNo < target.StageNo && !st.SolvedAt.Valid {
			return ErrStageLocked
		}
	}

	res, err := db.Exec(`UPDATE gift_stages SET solved_at = NOW() WHERE id = $1 AND solved_at IS NULL`, stageID)
	if err != nil {
		return fmt.Errorf("mark stage solved: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	log.Printf("[GIFT] Gift %s stage %d (no %d) solved", giftToken, stageID, target.StageNo)

	var remaining int
	if err := db.Get(&remaining, `SELECT COUNT(*) FROM gift_stages WHERE gift_token = $1 AND solved_at IS NULL`, giftToken); err != nil {
		return err
	}
	if remaining == 0 {
		if _, err := db.Exec(`UPDATE gifts SET completed_at = NOW() WHERE token = $1 AND completed_at IS NULL`, giftToken); err != nil {
			return fmt.Errorf("complete gift: %w", err)
		}
		log.Printf("[GIFT] Gift %s completed", giftToken)
	}
	return nil
}

// CheckAnswer verifies a client-side puzzle answer against the stored hash
// and marks the stage solved on a match. Billiards stages reject answers:
// only their simulation can solve them.
func CheckAnswer(db *sqlx.DB, giftToken string, stageID int64, answer string) (bool, error) {
	var stage models.GiftStage
	if err := db.Get(&stage, `SELECT * FROM gift_stages WHERE id = $1 AND gift_token = $2`, stageID, giftToken); err != nil {
		if err == sql.ErrNoRows {
			return false, errors.New("stage not found")
		}
		return false, err
	}
	if stage.Kind == KindBilliards {
		return false, errors.New("billiards stages are solved at the table")
	}

	got := hashSolution(answer)
	if subtle.ConstantTimeCompare([]byte(got), []byte(stage.SolutionHash)) != 1 {
		return false, nil
	}
	if err := MarkStageSolved(db, giftToken, stageID); err != nil {
		return false, err
	}
	return true, nil
}
