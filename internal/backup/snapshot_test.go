package backup

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/feirinha/internal/model"
)

func TestSnapshotRoundTrip(t *testing.T) {
	v := 4.5
	snap := Snapshot{
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Lists: []model.ShoppingList{{
			ID:           "l1",
			Name:         "Feira",
			DateCreation: time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC),
			Status:       model.StatusArchived,
			Items: []model.PurchaseItem{
				{ID: "i1", Name: "Tomate", Amount: 2, Unit: "kg", UnitValue: &v, TotalValueItem: 4.5, CategoryID: "frutas_vegetais"},
			},
			TotalExpectedValue: 4.5,
		}},
		Categories:      []model.Category{{ID: "custom-1", Name: "Churrasco", Icon: "grill", Color: "#aa3300"}},
		FavoriteMarkets: []model.Market{{ID: "p1", Name: "Mercado", Latitude: -23.5, Longitude: -46.6}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, snap, "pw"); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Read(&buf, "pw")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Version != FormatVersion {
		t.Errorf("version = %d, want %d", got.Version, FormatVersion)
	}
	if !got.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}
	if len(got.Lists) != 1 || got.Lists[0].Status != model.StatusArchived || len(got.Lists[0].Items) != 1 {
		t.Fatalf("lists = %+v", got.Lists)
	}
	if *got.Lists[0].Items[0].UnitValue != 4.5 {
		t.Errorf("unit value = %v", *got.Lists[0].Items[0].UnitValue)
	}
	if len(got.Categories) != 1 || got.Categories[0].Color != "#aa3300" {
		t.Errorf("categories = %+v", got.Categories)
	}
	if len(got.FavoriteMarkets) != 1 || got.FavoriteMarkets[0].ID != "p1" {
		t.Errorf("markets = %+v", got.FavoriteMarkets)
	}
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	sealed, err := Encrypt([]byte(`{"version":99}`), "pw")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Read(bytes.NewReader(sealed), "pw"); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestReadWrongPassphrase(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Snapshot{}, "pw"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(&buf, "nope"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
}
