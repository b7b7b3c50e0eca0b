package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"rapbattle-quiz-service/internal/bank"
	"rapbattle-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches question catalogs from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, bankID string) (domain.Catalog, error)
}

// CatalogRepository caches validated catalogs with TTL to avoid
// repeated backing-store hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	catalog   domain.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, bankID string) (domain.Catalog, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[bankID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.catalog, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[bankID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.catalog, nil
		}
		r.mu.RUnlock()

		catalog, err := r.loader.LoadCatalog(ctx, bankID)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := bank.Validate(catalog); err != nil {
			return domain.Catalog{}, err
		}

		r.mu.Lock()
		r.cache[bankID] = cachedCatalog{
			catalog:   catalog,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// StaticCatalogLoader serves catalogs from an in-memory map (useful
// for demos and tests).
type StaticCatalogLoader struct {
	catalogs map[string]domain.Catalog
}

func NewStaticCatalogLoader(catalogs map[string]domain.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalogs: catalogs}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, bankID string) (domain.Catalog, error) {
	if catalog, ok := l.catalogs[bankID]; ok {
		return catalog, nil
	}
	return domain.Catalog{}, domain.ErrBankNotFound
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
