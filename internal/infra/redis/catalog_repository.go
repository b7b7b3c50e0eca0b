package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"rapbattle-quiz-service/internal/bank"
	"rapbattle-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches question catalogs from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, bankID string) (domain.Catalog, error)
}

// CatalogRepository caches validated catalogs in Redis as a JSON blob
// per bank (SET bank:{bankID}:catalog) and falls back to a loader on
// cache miss.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, bankID string) (domain.Catalog, error) {
	key := r.catalogKey(bankID)

	if catalog, ok := r.cached(ctx, key); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx, key); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx, bankID)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := bank.Validate(catalog); err != nil {
			return domain.Catalog{}, err
		}

		if data, err := json.Marshal(catalog); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) cached(ctx context.Context, key string) (domain.Catalog, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (r *CatalogRepository) catalogKey(bankID string) string {
	return "bank:" + bankID + ":catalog"
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
