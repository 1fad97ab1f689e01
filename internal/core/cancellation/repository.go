package cancellation

import (
	"context"
	"sort"
	"sync"
)

// Repository persists ledger marks per organization (CNPJ) so they survive
// new uploads of the same company.
type Repository interface {
	Load(ctx context.Context, organization string) ([]string, error)
	Save(ctx context.Context, organization, key string) error
	Delete(ctx context.Context, organization, key string) error
}

type memoryRepository struct {
	mu   sync.Mutex
	data map[string]map[string]struct{}
}

// NewMemoryRepository keeps marks in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{data: make(map[string]map[string]struct{})}
}

func (r *memoryRepository) Load(_ context.Context, organization string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for k := range r.data[organization] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *memoryRepository) Save(_ context.Context, organization, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data[organization] == nil {
		r.data[organization] = make(map[string]struct{})
	}
	r.data[organization][key] = struct{}{}
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, organization, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data[organization], key)
	return nil
}
