package api

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const downloadTTL = 10 * time.Minute

type exportDownload struct {
	filePath string
	filename string
}

// downloadStore 一次性下载令牌；过期或删除时移除对应文件
type downloadStore struct {
	items *cache.Cache
}

func newDownloadStore(ttl time.Duration) *downloadStore {
	c := cache.New(ttl, 2*ttl)
	c.OnEvicted(func(_ string, v interface{}) {
		if item, ok := v.(exportDownload); ok {
			_ = os.Remove(item.filePath)
		}
	})
	return &downloadStore{items: c}
}

func (s *downloadStore) put(item exportDownload) string {
	token := uuid.NewString()
	s.items.Set(token, item, cache.DefaultExpiration)
	return token
}

func (s *downloadStore) get(token string) (exportDownload, bool) {
	v, ok := s.items.Get(token)
	if !ok {
		return exportDownload{}, false
	}
	item, ok := v.(exportDownload)
	return item, ok
}

func (s *downloadStore) delete(token string) {
	s.items.Delete(token)
}

func (s *downloadStore) flush() {
	for token := range s.items.Items() {
		s.items.Delete(token)
	}
}
