package database

import (
	"context"
	"strings"
	"time"

	"github.com/example/linguabot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const cardColumns = `c.id, c.owner_id, c.word, c.translation, c.example, c.note, c.level, c.created_at`

// CardRepository handles database operations for cards
type CardRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewCardRepository creates a new repository instance
func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db, now: time.Now}
}

func wordKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// CreateCard inserts a card together with its initial schedule
func (r *CardRepository) CreateCard(ctx context.Context, ownerID int64, in models.CardInput) (models.Card, error) {
	if err := in.Validate(); err != nil {
		return models.Card{}, err
	}

	card := models.Card{
		OwnerID:     ownerID,
		Word:        in.Word,
		Translation: in.Translation,
		Example:     in.Example,
		Note:        in.Note,
		Level:       in.Level,
		CreatedAt:   utc(r.now()),
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Card{}, wrapErr("begin create card", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO cards (owner_id, word, word_key, translation, example, note, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err = tx.QueryRowxContext(ctx, query,
		card.OwnerID,
		card.Word,
		wordKey(card.Word),
		card.Translation,
		card.Example,
		card.Note,
		card.Level,
		card.CreatedAt,
	).Scan(&card.ID)
	if err != nil {
		return models.Card{}, wrapErr("create card", err)
	}

	if err := insertSchedule(ctx, tx, models.NewSchedule(card.ID, card.CreatedAt)); err != nil {
		return models.Card{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Card{}, wrapErr("commit create card", err)
	}
	return card, nil
}

// GetCard returns a card by ID if it belongs to ownerID
func (r *CardRepository) GetCard(ctx context.Context, id, ownerID int64) (models.Card, error) {
	var card models.Card
	query := r.db.Rebind(`SELECT ` + cardColumns + ` FROM cards c WHERE c.id = ? AND c.owner_id = ?`)
	if err := r.db.GetContext(ctx, &card, query, id, ownerID); err != nil {
		return models.Card{}, wrapErr("get card", err)
	}
	return card, nil
}

// FindCardByWord returns the oldest card of ownerID whose word matches case-insensitively
func (r *CardRepository) FindCardByWord(ctx context.Context, ownerID int64, word string) (models.Card, error) {
	var card models.Card
	query := r.db.Rebind(`
		SELECT ` + cardColumns + `
		FROM cards c
		WHERE c.owner_id = ? AND c.word_key = ?
		ORDER BY c.id ASC
		LIMIT 1
	`)
	if err := r.db.GetContext(ctx, &card, query, ownerID, wordKey(word)); err != nil {
		return models.Card{}, wrapErr("find card by word", err)
	}
	return card, nil
}

// ListCards returns the owner's cards, optionally filtered by level
func (r *CardRepository) ListCards(ctx context.Context, ownerID int64, level models.Level) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards c WHERE c.owner_id = ?`
	args := []interface{}{ownerID}
	if level != "" {
		query += ` AND c.level = ?`
		args = append(args, level)
	}
	query += ` ORDER BY c.id ASC`

	cards := []models.Card{}
	if err := r.db.SelectContext(ctx, &cards, r.db.Rebind(query), args...); err != nil {
		return nil, wrapErr("list cards", err)
	}
	return cards, nil
}

// ListDueCards returns the owner's cards with next_review <= asOf, soonest first
func (r *CardRepository) ListDueCards(ctx context.Context, ownerID int64, asOf time.Time) ([]models.Card, error) {
	query := r.db.Rebind(`
		SELECT ` + cardColumns + `
		FROM cards c
		JOIN schedules s ON s.card_id = c.id
		WHERE c.owner_id = ? AND s.next_review <= ?
		ORDER BY s.next_review ASC, c.id ASC
	`)
	cards := []models.Card{}
	if err := r.db.SelectContext(ctx, &cards, query, ownerID, utc(asOf)); err != nil {
		return nil, wrapErr("list due cards", err)
	}
	return cards, nil
}

// CountCards returns the number of cards owned by ownerID
func (r *CardRepository) CountCards(ctx context.Context, ownerID int64) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM cards WHERE owner_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, ownerID); err != nil {
		return 0, wrapErr("count cards", err)
	}
	return n, nil
}

// CountLearned returns the number of cards with at least LearnedRepetitions reviews
func (r *CardRepository) CountLearned(ctx context.Context, ownerID int64) (int, error) {
	var n int
	query := r.db.Rebind(`
		SELECT COUNT(*)
		FROM cards c
		JOIN schedules s ON s.card_id = c.id
		WHERE c.owner_id = ? AND s.repetitions >= ?
	`)
	if err := r.db.GetContext(ctx, &n, query, ownerID, models.LearnedRepetitions); err != nil {
		return 0, wrapErr("count learned cards", err)
	}
	return n, nil
}

// CountDueCards returns the number of the owner's cards due at asOf
func (r *CardRepository) CountDueCards(ctx context.Context, ownerID int64, asOf time.Time) (int, error) {
	var n int
	query := r.db.Rebind(`
		SELECT COUNT(*)
		FROM cards c
		JOIN schedules s ON s.card_id = c.id
		WHERE c.owner_id = ? AND s.next_review <= ?
	`)
	if err := r.db.GetContext(ctx, &n, query, ownerID, utc(asOf)); err != nil {
		return 0, wrapErr("count due cards", err)
	}
	return n, nil
}

// CountByLevel returns the owner's card count per level
func (r *CardRepository) CountByLevel(ctx context.Context, ownerID int64) (map[models.Level]int, error) {
	var rows []struct {
		Level models.Level `db:"level"`
		Count int          `db:"count"`
	}
	query := r.db.Rebind(`SELECT level, COUNT(*) AS count FROM cards WHERE owner_id = ? GROUP BY level`)
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, wrapErr("count cards by level", err)
	}

	counts := make(map[models.Level]int, len(models.Levels))
	for _, l := range models.Levels {
		counts[l] = 0
	}
	for _, row := range rows {
		counts[row.Level] = row.Count
	}
	return counts, nil
}

// UpdateCard replaces the editable fields of a card owned by ownerID
func (r *CardRepository) UpdateCard(ctx context.Context, id, ownerID int64, in models.CardInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	query := r.db.Rebind(`
		UPDATE cards SET
			word = ?,
			word_key = ?,
			translation = ?,
			example = ?,
			note = ?,
			level = ?
		WHERE id = ? AND owner_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		in.Word,
		wordKey(in.Word),
		in.Translation,
		in.Example,
		in.Note,
		in.Level,
		id,
		ownerID,
	)
	if err != nil {
		return wrapErr("update card", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapErr("update card rows affected", err)
	}
	if rows == 0 {
		return wrapErr("update card", models.ErrNotFound)
	}
	return nil
}

// DeleteCard removes a card owned by ownerID together with its schedule
func (r *CardRepository) DeleteCard(ctx context.Context, id, ownerID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin delete card", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		DELETE FROM schedules
		WHERE card_id IN (SELECT id FROM cards WHERE id = ? AND owner_id = ?)
	`)
	if _, err := tx.ExecContext(ctx, query, id, ownerID); err != nil {
		return wrapErr("delete schedule", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM cards WHERE id = ? AND owner_id = ?`), id, ownerID)
	if err != nil {
		return wrapErr("delete card", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapErr("delete card rows affected", err)
	}
	if rows == 0 {
		return wrapErr("delete card", models.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("commit delete card", err)
	}
	return nil
}
