package posts

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests and development.
type MemoryRepository struct {
	mu        sync.RWMutex
	resource  string
	records   map[uuid.UUID]*Record
	slugIndex map[string]uuid.UUID
}

// NewMemoryRepository creates an empty repository. resource names the
// collection in NotFoundError values.
func NewMemoryRepository(resource string) *MemoryRepository {
	if resource == "" {
		resource = "post"
	}
	return &MemoryRepository{
		resource:  resource,
		records:   make(map[uuid.UUID]*Record),
		slugIndex: make(map[string]uuid.UUID),
	}
}

func (m *MemoryRepository) Create(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := record.Clone()
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	if _, ok := m.slugIndex[copied.Slug]; ok {
		return nil, ErrSlugExists
	}
	m.records[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return copied.Clone(), nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: m.resource, Key: record.ID.String()}
	}
	if owner, taken := m.slugIndex[record.Slug]; taken && owner != record.ID {
		return nil, ErrSlugExists
	}
	delete(m.slugIndex, existing.Slug)
	copied := record.Clone()
	m.records[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return copied.Clone(), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: m.resource, Key: id.String()}
	}
	delete(m.slugIndex, existing.Slug)
	delete(m.records, id)
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: m.resource, Key: id.String()}
	}
	return rec.Clone(), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: m.resource, Key: slug}
	}
	return m.records[id].Clone(), nil
}

// List returns matching records, newest first.
func (m *MemoryRepository) List(_ context.Context, opts ListOptions) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category := strings.TrimSpace(opts.Category)
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		if opts.PublishedOnly && !rec.Published {
			continue
		}
		if category != "" && !strings.EqualFold(rec.Category, category) {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []*Record{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
