package knowledge

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/mindhub/internal/store"
)

// FingerprintKey is the meta key holding the last seeded fingerprint.
const FingerprintKey = "knowledge_fingerprint"

// SeedResult describes what Seed did.
type SeedResult struct {
	Documents   int
	Fingerprint string
	Skipped     bool
}

// Seed replaces the store contents with records unless the stored
// fingerprint already matches and force is false.
func Seed(ctx context.Context, st store.Store, records []store.Record, force bool) (*SeedResult, error) {
	fp := Fingerprint(records)
	result := &SeedResult{Documents: len(records), Fingerprint: fp}

	if !force {
		prev, err := st.Meta(ctx, FingerprintKey)
		if err != nil {
			return nil, err
		}
		if prev == fp {
			log.Debug("Knowledge unchanged, skipping seed", "fingerprint", fp)
			result.Skipped = true
			return result, nil
		}
	}

	if err := st.ReplaceAll(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to seed content: %w", err)
	}
	if err := st.SetMeta(ctx, FingerprintKey, fp); err != nil {
		return nil, err
	}

	log.Info("Seeded knowledge", "documents", len(records), "fingerprint", fp)
	return result, nil
}
