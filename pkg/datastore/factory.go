package datastore

import (
	"fmt"

	"github.com/MauroRinelli/Solship/config"
	"github.com/MauroRinelli/Solship/pkg/redis"
)

// New builds the configured store variant. The local variant owns the Redis
// connection; callers shut it down through redis.Close.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Datastore.Variant {
	case "", "local":
		if err := redis.Init(&cfg.Redis); err != nil {
			return nil, err
		}
		return NewLocalStore(redis.GetClient()), nil
	case "api":
		return NewAPIStore(cfg.API.BaseURL, cfg.API.Token), nil
	default:
		return nil, fmt.Errorf("unknown datastore variant %q", cfg.Datastore.Variant)
	}
}
