package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is the required in-memory fallback for Store, giving tests
// and local runs a real Put/List round trip without a bucket.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	stamps  map[string]time.Time
	base    string
}

// NewMemStore creates an empty in-memory blob store. base is used to
// build fake public URLs (defaults to "memblob://local").
func NewMemStore(base string) *MemStore {
	if base == "" {
		base = "memblob://local"
	}
	return &MemStore{
		objects: make(map[string][]byte),
		stamps:  make(map[string]time.Time),
		base:    strings.TrimSuffix(base, "/"),
	}
}

func (s *MemStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[path] = cp
	s.stamps[path] = time.Now()
	return s.base + "/" + path, nil
}

func (s *MemStore) List(ctx context.Context, prefix string) ([]Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Object
	for path, data := range s.objects {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		out = append(out, Object{
			Path:       path,
			Size:       int64(len(data)),
			UploadedAt: s.stamps[path],
			URL:        s.base + "/" + path,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("blob: %s: not found", path)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
