package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"vsxbrowse/internal/domain"
	"vsxbrowse/internal/paging"
)

type cacheEntry struct {
	StoredAt   time.Time          `json:"storedAt"`
	TotalSize  int                `json:"totalSize"`
	Extensions []domain.Extension `json:"extensions"`
}

// CachingProvider serves recent identical searches from disk. Failed
// searches are never stored.
type CachingProvider struct {
	next   paging.SearchProvider[domain.Extension]
	store  *diskv.Diskv
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewCachingProvider wraps next with a diskv store rooted at dir
func NewCachingProvider(next paging.SearchProvider[domain.Extension], dir string, ttl time.Duration, logger *zap.Logger) *CachingProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingProvider{
		next: next,
		store: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    shardTransform,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Named("cache"),
	}
}

// Search returns a fresh cached page or asks the wrapped provider
func (p *CachingProvider) Search(ctx context.Context, filter paging.Filter) (paging.Page[domain.Extension], error) {
	key := cacheKey(filter)

	if page, ok := p.lookup(key); ok {
		p.logger.Debug("cache hit", zap.String("key", key))
		return page, nil
	}

	page, err := p.next.Search(ctx, filter)
	if err != nil {
		return page, err
	}

	p.save(key, page)
	return page, nil
}

// Purge removes every cached page
func (p *CachingProvider) Purge() error {
	return p.store.EraseAll()
}

func (p *CachingProvider) lookup(key string) (paging.Page[domain.Extension], bool) {
	if !p.store.Has(key) {
		return paging.Page[domain.Extension]{}, false
	}
	data, err := p.store.Read(key)
	if err != nil {
		p.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return paging.Page[domain.Extension]{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		p.logger.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = p.store.Erase(key)
		return paging.Page[domain.Extension]{}, false
	}
	if p.now().Sub(entry.StoredAt) > p.ttl {
		_ = p.store.Erase(key)
		return paging.Page[domain.Extension]{}, false
	}

	return paging.Page[domain.Extension]{Items: entry.Extensions, TotalSize: entry.TotalSize}, true
}

func (p *CachingProvider) save(key string, page paging.Page[domain.Extension]) {
	data, err := json.Marshal(cacheEntry{
		StoredAt:   p.now(),
		TotalSize:  page.TotalSize,
		Extensions: page.Items,
	})
	if err != nil {
		p.logger.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := p.store.Write(key, data); err != nil {
		p.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(f paging.Filter) string {
	h := sha256.New()
	for _, part := range []string{f.Category, f.Query, strconv.Itoa(f.Offset), strconv.Itoa(f.Size)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// shardTransform spreads keys over 256 directories
func shardTransform(key string) []string {
	if len(key) < 2 {
		return []string{}
	}
	return []string{key[:2]}
}
