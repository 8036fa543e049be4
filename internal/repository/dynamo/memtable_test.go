package dynamo

import (
	"context"
	"fmt"

	"github.com/kellyw/taskdeck/internal/apperror"
	"github.com/kellyw/taskdeck/internal/store"
)

// memTable is an in-memory stand-in for *store.Table with the same
// contracts: Get returns nil for absent keys, Update requires existence,
// Delete is idempotent, Query only serves configured indexes.
type memTable struct {
	items   map[string]store.Item
	indexes map[string]string
}

func newMemTable(indexes map[string]string) *memTable {
	return &memTable{
		items:   make(map[string]store.Item),
		indexes: indexes,
	}
}

func (m *memTable) Put(_ context.Context, item store.Item) error {
	m.items[itemKey(item)] = copyItem(item)
	return nil
}

func (m *memTable) PutIfAbsent(_ context.Context, item store.Item) error {
	key := itemKey(item)
	if _, exists := m.items[key]; exists {
		return apperror.StoreRejected("put", fmt.Errorf("key already exists"))
	}
	m.items[key] = copyItem(item)
	return nil
}

func (m *memTable) Get(_ context.Context, id string) (store.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

func (m *memTable) Query(_ context.Context, indexName, value string) ([]store.Item, error) {
	attr, ok := m.indexes[indexName]
	if !ok {
		return nil, apperror.IndexNotConfigured("mem", indexName)
	}

	var out []store.Item
	for _, item := range m.items {
		if s, ok := item[attr].(string); ok && s == value {
			out = append(out, copyItem(item))
		}
	}
	return out, nil
}

func (m *memTable) Scan(_ context.Context, filter map[string]string) ([]store.Item, error) {
	var out []store.Item
	for _, item := range m.items {
		match := true
		for attr, want := range filter {
			if s, ok := item[attr].(string); !ok || s != want {
				match = false
				break
			}
		}
		if match {
			out = append(out, copyItem(item))
		}
	}
	return out, nil
}

func (m *memTable) Update(_ context.Context, id string, assigns map[string]any) (store.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, apperror.NotFound("record", id)
	}
	for field, value := range assigns {
		item[field] = value
	}
	return copyItem(item), nil
}

func (m *memTable) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func itemKey(item store.Item) string {
	key, _ := item["id"].(string)
	return key
}

func copyItem(item store.Item) store.Item {
	dup := make(store.Item, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}
