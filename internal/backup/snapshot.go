// Package backup exports and restores every store document as one
// passphrase-encrypted file.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dukerupert/feirinha/internal/model"
)

// FormatVersion is written into every snapshot.
const FormatVersion = 1

// maxBackupSize bounds what Read accepts.
const maxBackupSize = 32 << 20

var ErrUnsupportedVersion = errors.New("unsupported backup version")

// Snapshot is the decrypted content of a backup.
type Snapshot struct {
	Version         int                  `json:"version"`
	CreatedAt       time.Time            `json:"created_at"`
	Lists           []model.ShoppingList `json:"lists"`
	Categories      []model.Category     `json:"categories"`
	FavoriteMarkets []model.Market       `json:"favoriteMarkets"`
}

// Write encodes snap as JSON, encrypts it and writes it to w.
func Write(w io.Writer, snap Snapshot, passphrase string) error {
	snap.Version = FormatVersion
	plaintext, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	sealed, err := Encrypt(plaintext, passphrase)
	if err != nil {
		return err
	}
	if _, err := w.Write(sealed); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Read decrypts and decodes a backup produced by Write.
func Read(r io.Reader, passphrase string) (Snapshot, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBackupSize))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read backup: %w", err)
	}
	plaintext, err := Decrypt(data, passphrase)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	return snap, nil
}
