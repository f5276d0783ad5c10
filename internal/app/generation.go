package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"hostbook/internal/domain"
)

// Cached views of an owner's data live under keys carrying the owner's
// generation. Every mutation stores a fresh generation, so a reader that
// loaded before the write can only fill a key nobody will read again.

const initialGeneration = "0"

func generationKey(owner domain.OwnerID) string { return "gen:" + string(owner) }

func snapshotKey(owner domain.OwnerID, gen string) string {
	return "snapshot:" + string(owner) + ":" + gen
}

func guestsKey(owner domain.OwnerID, gen string) string {
	return "guests:" + string(owner) + ":" + gen
}

// generation reads the owner's current generation. ok is false when the cache
// cannot answer; callers then neither read nor fill owner keys.
func generation(ctx context.Context, c domain.Cache, owner domain.OwnerID) (gen string, ok bool) {
	found, err := c.Get(ctx, generationKey(owner), &gen)
	if err != nil {
		log.Warn().Err(err).Str("owner", string(owner)).Msg("cache generation read failed")
		return "", false
	}
	if !found || gen == "" {
		return initialGeneration, true
	}
	return gen, true
}

// bumpGeneration stores gen as the owner's generation without expiry.
func bumpGeneration(ctx context.Context, c domain.Cache, owner domain.OwnerID, gen string) error {
	return c.Set(ctx, generationKey(owner), gen, 0)
}
