package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/backup"
	"github.com/dukerupert/feirinha/internal/categories"
	"github.com/dukerupert/feirinha/internal/lists"
	"github.com/dukerupert/feirinha/internal/markets"
)

// PassphraseHeader carries the backup passphrase on backup and restore.
const PassphraseHeader = "X-Backup-Passphrase"

type BackupHandler struct {
	lists      *lists.Store
	categories *categories.Store
	markets    *markets.Store
	logger     *zap.Logger
	now        func() time.Time
}

func NewBackupHandler(ls *lists.Store, cs *categories.Store, ms *markets.Store, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{lists: ls, categories: cs, markets: ms, logger: logger, now: time.Now}
}

// Backup returns an encrypted snapshot of every store.
func (h *BackupHandler) Backup(w http.ResponseWriter, r *http.Request) {
	pass := r.Header.Get(PassphraseHeader)
	if pass == "" {
		writeError(w, http.StatusBadRequest, backup.ErrPassphraseRequired.Error())
		return
	}

	snap := backup.Snapshot{
		CreatedAt:       h.now().UTC(),
		Lists:           h.lists.Lists(),
		Categories:      h.categories.Categories(),
		FavoriteMarkets: h.markets.FavoriteMarkets(),
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "feirinha-"+snap.CreatedAt.Format("20060102-150405")+".bak"))
	if err := backup.Write(w, snap, pass); err != nil {
		h.logger.Error("write backup", zap.Error(err))
		return
	}
	h.logger.Info("backup exported",
		zap.Int("lists", len(snap.Lists)),
		zap.Int("categories", len(snap.Categories)),
		zap.Int("markets", len(snap.FavoriteMarkets)),
	)
}

// Restore replaces every store with the content of an encrypted snapshot.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	pass := r.Header.Get(PassphraseHeader)
	if pass == "" {
		writeError(w, http.StatusBadRequest, backup.ErrPassphraseRequired.Error())
		return
	}

	snap, err := backup.Read(r.Body, pass)
	if err != nil {
		switch {
		case errors.Is(err, backup.ErrDecrypt), errors.Is(err, backup.ErrTruncated):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, backup.ErrUnsupportedVersion):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("read backup", zap.Error(err))
			writeError(w, http.StatusBadRequest, "invalid backup")
		}
		return
	}

	h.categories.Replace(snap.Categories)
	h.markets.Replace(snap.FavoriteMarkets)
	h.lists.Replace(snap.Lists)

	h.logger.Info("backup restored", zap.Time("created_at", snap.CreatedAt))
	writeJSON(w, http.StatusOK, map[string]int{
		"lists":           len(h.lists.Lists()),
		"categories":      len(h.categories.Categories()),
		"favoriteMarkets": len(h.markets.FavoriteMarkets()),
	})
}
