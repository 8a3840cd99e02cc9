package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/example/linguabot/pkg/models"
)

// Record is the portable shape of a card used by import and export
type Record struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
	Note        string `json:"note,omitempty"`
	Level       string `json:"level,omitempty"`
}

// CardStore is the part of the card store used by import and export
type CardStore interface {
	CreateCard(ctx context.Context, ownerID int64, in models.CardInput) (models.Card, error)
	FindCardByWord(ctx context.Context, ownerID int64, word string) (models.Card, error)
	UpdateCard(ctx context.Context, id, ownerID int64, in models.CardInput) error
	ListCards(ctx context.Context, ownerID int64, level models.Level) ([]models.Card, error)
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Service imports and exports a user's cards
type Service struct {
	store CardStore
	log   *zap.Logger
}

func NewService(store CardStore, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Import upserts records into the owner's cards. A card is matched by word,
// ignoring case. Invalid records are skipped and reported in the result;
// a store failure aborts the import.
func (s *Service) Import(ctx context.Context, ownerID int64, records []Record) (*ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}

	for i, rec := range records {
		result.TotalProcessed++

		in, err := rec.input()
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", i+1, err))
			continue
		}

		existing, err := s.store.FindCardByWord(ctx, ownerID, in.Word)
		switch {
		case err == nil:
			in.Word = existing.Word
			if err := s.store.UpdateCard(ctx, existing.ID, ownerID, in); err != nil {
				return result, fmt.Errorf("record %d: update %q: %w", i+1, in.Word, err)
			}
			result.Updated++
		case errors.Is(err, models.ErrNotFound):
			if _, err := s.store.CreateCard(ctx, ownerID, in); err != nil {
				return result, fmt.Errorf("record %d: create %q: %w", i+1, in.Word, err)
			}
			result.Created++
		default:
			return result, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	s.log.Info("cards imported",
		zap.Int64("owner_id", ownerID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Export returns every card of the owner as records
func (s *Service) Export(ctx context.Context, ownerID int64) ([]Record, error) {
	cards, err := s.store.ListCards(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("export cards: %w", err)
	}
	return lo.Map(cards, func(c models.Card, _ int) Record { return recordOf(c) }), nil
}

// ImportFile reads records from a JSON or .xlsx file and imports them
func (s *Service) ImportFile(ctx context.Context, ownerID int64, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var records []Record
	if isXLSX(path) {
		records, err = ReadXLSX(f)
	} else {
		records, err = ReadJSON(f)
	}
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, ownerID, records)
}

// ExportFile writes the owner's cards to path. The format follows the extension.
func (s *Service) ExportFile(ctx context.Context, ownerID int64, path string) (int, error) {
	records, err := s.Export(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if isXLSX(path) {
		err = WriteXLSX(f, records)
	} else {
		err = WriteJSON(f, records)
	}
	if err != nil {
		return 0, err
	}
	return len(records), f.Close()
}

// ReadJSON decodes a JSON array of records
func ReadJSON(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode records: %v", models.ErrValidation, err)
	}
	return records, nil
}

// WriteJSON encodes records as an indented JSON array
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (r Record) input() (models.CardInput, error) {
	level, err := models.ParseLevel(r.Level)
	if err != nil {
		return models.CardInput{}, err
	}
	in := models.CardInput{
		Word:        r.Word,
		Translation: r.Translation,
		Example:     r.Example,
		Note:        r.Note,
		Level:       level,
	}
	if err := in.Validate(); err != nil {
		return models.CardInput{}, err
	}
	return in, nil
}

func recordOf(c models.Card) Record {
	return Record{
		Word:        c.Word,
		Translation: c.Translation,
		Example:     c.Example,
		Note:        c.Note,
		Level:       string(c.Level),
	}
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
