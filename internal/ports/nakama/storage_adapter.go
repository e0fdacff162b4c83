package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"tictactoe/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaResultStoreAdapter implements ports.ResultStorePort on Nakama storage.
// Records are system owned.
type NakamaResultStoreAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaResultStoreAdapter(nk runtime.NakamaModule) *NakamaResultStoreAdapter {
	return &NakamaResultStoreAdapter{nk: nk}
}

func (a *NakamaResultStoreAdapter) SaveMatchRecord(ctx context.Context, record ports.MatchRecord) error {
	value, err := json.Marshal(record.Value)
	if err != nil {
		return fmt.Errorf("failed to marshal match record %s: %w", record.Key, err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      record.Collection,
		Key:             record.Key,
		UserID:          "",
		Value:           string(value),
		PermissionRead:  record.PermissionRead,
		PermissionWrite: record.PermissionWrite,
	}})
	if err != nil {
		return fmt.Errorf("failed to store match record %s: %w", record.Key, err)
	}
	return nil
}
