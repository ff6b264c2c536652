package categories

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/model"
	"github.com/dukerupert/feirinha/internal/persist"
)

func openStore(t *testing.T, backend *persist.MemoryBackend, opts Options) (*Store, *persist.Slot[Document]) {
	t.Helper()
	slot := persist.NewSlot[Document](StorageKey, backend, zap.NewNop())
	t.Cleanup(func() { slot.Close() })
	return Open(context.Background(), slot, DefaultCatalog, zap.NewNop(), opts), slot
}

func TestBuiltinCatalog(t *testing.T) {
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{})

	builtin := s.Builtin()
	require.Len(t, builtin, 13)
	assert.Equal(t, model.Category{ID: "frutas_vegetais", Name: "Frutas e Vegetais", IsPadrao: true}, builtin[0])
	assert.Equal(t, "pet_shop", builtin[12].ID)
	for _, c := range builtin {
		assert.True(t, c.IsPadrao)
	}
	assert.Empty(t, s.Categories())
	assert.Len(t, s.All(), 13)
}

func TestAddCategoryDefaults(t *testing.T) {
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{})

	c, err := s.AddCategory(model.Category{Name: "  Churrasco ", IsPadrao: true})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(c.ID, CustomPrefix), "id %q", c.ID)
	assert.Equal(t, "Churrasco", c.Name)
	assert.Equal(t, DefaultIcon, c.Icon)
	assert.Equal(t, DefaultColor, c.Color)
	assert.False(t, c.IsPadrao)

	all := s.All()
	require.Len(t, all, 14)
	assert.Equal(t, c, all[13])
}

func TestAddCategoryGeneratesDistinctIDs(t *testing.T) {
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{})

	a, _ := s.AddCategory(model.Category{Name: "A"})
	b, _ := s.AddCategory(model.Category{Name: "B"})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAddCategoryDuplicateID(t *testing.T) {
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{})

	_, err := s.AddCategory(model.Category{ID: "bebidas", Name: "Bebidas 2"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = s.AddCategory(model.Category{ID: "custom-1", Name: "X"})
	require.NoError(t, err)
	_, err = s.AddCategory(model.Category{ID: "custom-1", Name: "Y"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, s.Categories(), 1)
}

func TestAddCategoryStrict(t *testing.T) {
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{Strict: true})

	_, err := s.AddCategory(model.Category{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Empty(t, s.Categories())
}

func TestUpdateCategory(t *testing.T) {
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{})
	c, _ := s.AddCategory(model.Category{Name: "Festa"})

	c.Name = "Festa Junina"
	c.Color = "#ff0000"
	require.NoError(t, s.UpdateCategory(c))

	got, ok := s.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, "Festa Junina", got.Name)
	assert.Equal(t, "#ff0000", got.Color)

	assert.ErrorIs(t, s.UpdateCategory(model.Category{ID: "custom-missing", Name: "x"}), ErrCategoryNotFound)
	assert.ErrorIs(t, s.UpdateCategory(model.Category{ID: "bebidas", Name: "Drinks"}), ErrDefaultCategory)

	b, _ := s.Get("bebidas")
	assert.Equal(t, "Bebidas", b.Name)
}

func TestDeleteCategory(t *testing.T) {
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{})
	a, _ := s.AddCategory(model.Category{Name: "A"})
	b, _ := s.AddCategory(model.Category{Name: "B"})

	require.NoError(t, s.DeleteCategory(a.ID))
	custom := s.Categories()
	require.Len(t, custom, 1)
	assert.Equal(t, b.ID, custom[0].ID)

	assert.ErrorIs(t, s.DeleteCategory(a.ID), ErrCategoryNotFound)
}

func TestDeleteNeverRemovesDefaultCategories(t *testing.T) {
	backend := persist.NewMemoryBackend()
	backend.Put(StorageKey, []byte(`{"state":{"categories":[
		{"id":"custom-legacy","name":"Legado","isPadrao":true},
		{"id":"custom-1","name":"Minha","isPadrao":false}]},"version":0}`))
	s, _ := openStore(t, backend, Options{})

	for _, c := range s.Builtin() {
		assert.ErrorIs(t, s.DeleteCategory(c.ID), ErrDefaultCategory)
	}
	assert.ErrorIs(t, s.DeleteCategory("custom-legacy"), ErrDefaultCategory)
	assert.ErrorIs(t, s.UpdateCategory(model.Category{ID: "custom-legacy", Name: "x"}), ErrDefaultCategory)

	assert.Len(t, s.Builtin(), 13)
	assert.Len(t, s.Categories(), 2)
	require.NoError(t, s.DeleteCategory("custom-1"))
	assert.Len(t, s.Categories(), 1)
}

func TestCategoriesRehydrationRoundTrip(t *testing.T) {
	backend := persist.NewMemoryBackend()
	s, slot := openStore(t, backend, Options{})
	s.AddCategory(model.Category{Name: "Churrasco", Icon: "grill", Color: "#aa3300"})
	s.AddCategory(model.Category{Name: "Bebê"})
	want := s.Categories()
	require.NoError(t, slot.Close())

	reopened, _ := openStore(t, backend, Options{})
	assert.Equal(t, want, reopened.Categories())
}

func TestCategoriesReplace(t *testing.T) {
	var changes []model.Change
	s, _ := openStore(t, persist.NewMemoryBackend(), Options{OnChange: func(c model.Change) { changes = append(changes, c) }})
	s.AddCategory(model.Category{Name: "Old"})

	s.Replace([]model.Category{
		{ID: "custom-a", Name: "A"},
		{ID: "bebidas", Name: "shadow"},
		{ID: "custom-a", Name: "dup"},
	})

	got := s.Categories()
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name)
	require.Len(t, changes, 2)
	assert.Equal(t, model.ActionReplaced, changes[1].Action)
}
