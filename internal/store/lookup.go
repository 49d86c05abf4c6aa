package store

import (
	"strings"
	"sync"

	"gorm.io/gorm/clause"

	"vinsync/internal/models"
)

// LookupCache memoizes get-or-create resolution of the name-keyed lookup
// entities for the duration of one import run, so concurrent rows naming
// the same type or tag never race on a duplicate insert. Matching is
// case-sensitive on the trimmed name; an empty name resolves to nil.
type LookupCache struct {
	store *Store

	mu         sync.Mutex
	types      map[string]*models.Type
	categories map[string]*models.Category
	tags       map[string]*models.Tag
	vendors    map[string]*models.Vendor
}

func (s *Store) NewLookupCache() *LookupCache {
	return &LookupCache{
		store:      s,
		types:      make(map[string]*models.Type),
		categories: make(map[string]*models.Category),
		tags:       make(map[string]*models.Tag),
		vendors:    make(map[string]*models.Vendor),
	}
}

func (c *LookupCache) Type(name string) (*models.Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.types[name]; ok {
		return t, nil
	}
	t := &models.Type{Name: name}
	if err := c.store.db.Clauses(clause.OnConflict{DoNothing: true}).Create(t).Error; err != nil {
		return nil, err
	}
	c.types[name] = t
	return t, nil
}

func (c *LookupCache) Category(name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cat, ok := c.categories[name]; ok {
		return cat, nil
	}
	cat := &models.Category{Name: name}
	if err := c.store.db.Clauses(clause.OnConflict{DoNothing: true}).Create(cat).Error; err != nil {
		return nil, err
	}
	c.categories[name] = cat
	return cat, nil
}

func (c *LookupCache) Tag(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tags[name]; ok {
		return t, nil
	}
	t := &models.Tag{Name: name}
	if err := c.store.db.Clauses(clause.OnConflict{DoNothing: true}).Create(t).Error; err != nil {
		return nil, err
	}
	c.tags[name] = t
	return t, nil
}

func (c *LookupCache) Vendor(name, state string) (*models.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.vendors[name]; ok {
		return v, nil
	}
	v := &models.Vendor{Name: name, State: strings.TrimSpace(state)}
	if err := c.store.db.Clauses(clause.OnConflict{DoNothing: true}).Create(v).Error; err != nil {
		return nil, err
	}
	c.vendors[name] = v
	return v, nil
}
