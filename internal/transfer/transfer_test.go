package transfer

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/linguabot/internal/config"
	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/pkg/models"
)

func newTestService(t *testing.T) (*Service, *database.Store, int64) {
	t.Helper()
	db, err := database.Connect(config.DBConfig{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	user, err := store.CreateUser(context.Background(), "importer")
	require.NoError(t, err)
	return NewService(store, zap.NewNop()), store, user.ID
}

func TestImport_Upsert(t *testing.T) {
	svc, store, owner := newTestService(t)
	ctx := context.Background()

	_, err := store.CreateCard(ctx, owner, models.CardInput{Word: "Cat", Translation: "кошка"})
	require.NoError(t, err)

	result, err := svc.Import(ctx, owner, []Record{
		{Word: "cat", Translation: "кот", Example: "a black cat", Level: "Intermediate"},
		{Word: "dog", Translation: "собака"},
		{Word: "", Translation: "пусто"},
		{Word: "sun", Translation: "солнце", Level: "expert"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.True(t, strings.HasPrefix(result.Errors[0], "record 3:"))
	assert.True(t, strings.HasPrefix(result.Errors[1], "record 4:"))

	cards, err := store.ListCards(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Cat", cards[0].Word, "stored spelling is kept")
	assert.Equal(t, "кот", cards[0].Translation)
	assert.Equal(t, "a black cat", cards[0].Example)
	assert.Equal(t, models.LevelIntermediate, cards[0].Level)
	assert.Equal(t, models.LevelBeginner, cards[1].Level)
}

func TestImport_Idempotent(t *testing.T) {
	svc, store, owner := newTestService(t)
	ctx := context.Background()
	records := []Record{{Word: "tree", Translation: "дерево"}, {Word: "TREE", Translation: "древо"}}

	result, err := svc.Import(ctx, owner, records)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	_, err = svc.Import(ctx, owner, records)
	require.NoError(t, err)

	cards, err := store.ListCards(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "древо", cards[0].Translation)
}

type failingStore struct {
	CardStore
}

func (failingStore) FindCardByWord(context.Context, int64, string) (models.Card, error) {
	return models.Card{}, models.ErrStore
}

func TestImport_StoreFailureAborts(t *testing.T) {
	svc := NewService(failingStore{}, zap.NewNop())

	result, err := svc.Import(context.Background(), 1, []Record{{Word: "a", Translation: "б"}, {Word: "c", Translation: "д"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStore))
	assert.Equal(t, 1, result.TotalProcessed)
}

func TestExport_SameShapeAsImport(t *testing.T) {
	svc, _, owner := newTestService(t)
	ctx := context.Background()

	input := `[
		{"word": "cat", "translation": "кот", "note": "pet", "level": "advanced"},
		{"word": "dog", "translation": "собака"}
	]`
	records, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	_, err = svc.Import(ctx, owner, records)
	require.NoError(t, err)

	exported, err := svc.Export(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Word: "cat", Translation: "кот", Note: "pet", Level: "advanced"},
		{Word: "dog", Translation: "собака", Level: "beginner"},
	}, exported)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, exported))
	assert.Contains(t, buf.String(), `"word": "cat"`)
	assert.NotContains(t, buf.String(), `"example"`)

	again, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, exported, again)
}

func TestExport_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestReadJSON_Invalid(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"word": "cat"}`))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestXLSX_RoundTrip(t *testing.T) {
	records := []Record{
		{Word: "cat", Translation: "кот", Example: "a cat", Note: "pet", Level: "beginner"},
		{Word: "dog", Translation: "собака", Level: "advanced"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, records))

	got, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestXLSX_Invalid(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestFiles(t *testing.T) {
	svc, _, owner := newTestService(t)
	ctx := context.Background()
	_, err := svc.Import(ctx, owner, []Record{{Word: "sun", Translation: "солнце"}})
	require.NoError(t, err)

	for _, name := range []string{"cards.json", "cards.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			n, err := svc.ExportFile(ctx, owner, path)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			result, err := svc.ImportFile(ctx, owner, path)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Updated)
			assert.Zero(t, result.Created)
		})
	}

	_, err = svc.ImportFile(ctx, owner, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
