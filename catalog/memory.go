package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/dhamidi/jbind/java"
)

// Memory is a Catalog held in memory. Declarations are decoded when they
// are added.
type Memory struct {
	mu       sync.RWMutex
	nextID   java.ClassID
	entries  map[java.ClassID]*memoryEntry
	byName   map[string][]java.ClassID
	bySimple map[string][]java.ClassID
	byKey    map[string]java.ClassID
}

type memoryEntry struct {
	class   *java.ClassInfo
	methods []*java.MethodInfo
	fields  []*java.FieldInfo
}

func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[java.ClassID]*memoryEntry),
		byName:   make(map[string][]java.ClassID),
		bySimple: make(map[string][]java.ClassID),
		byKey:    make(map[string]java.ClassID),
	}
}

// Add decodes and stores decl. Adding a class a second time for the same
// unit replaces it and keeps its id.
func (m *Memory) Add(ctx context.Context, unit string, decl *java.Declaration) (java.ClassID, error) {
	if decl == nil || decl.Class.Name == "" {
		return 0, fmt.Errorf("add to memory catalog: empty declaration")
	}
	raw := *decl
	raw.Class.Unit = unit

	m.mu.Lock()
	defer m.mu.Unlock()

	key := unit + "\x00" + raw.Class.Name
	id, exists := m.byKey[key]
	if !exists {
		m.nextID++
		id = m.nextID
		m.byKey[key] = id
	}

	class, methods, fields, errs := raw.Decode(id)
	for _, err := range errs {
		log.Warningf("%s", err)
	}
	m.entries[id] = &memoryEntry{class: class, methods: methods, fields: fields}
	if !exists {
		m.byName[class.Name] = append(m.byName[class.Name], id)
		m.bySimple[class.SimpleName] = append(m.bySimple[class.SimpleName], id)
	}
	return id, nil
}

func (m *Memory) LookupClasses(ctx context.Context, units []string, name string) ([]*java.ClassInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.bySimple[name]
	if IsQualified(name) {
		ids = m.byName[name]
	}
	var out []*java.ClassInfo
	for _, id := range ids {
		e := m.entries[id]
		if InUnits(units, e.class.Unit) {
			out = append(out, e.class)
		}
	}
	return out, nil
}

func (m *Memory) LookupClassByID(ctx context.Context, id java.ClassID) (*java.ClassInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("class id %d: %w", id, ErrClassNotFound)
	}
	return e.class, nil
}

func (m *Memory) LookupMethods(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.MethodInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*java.MethodInfo
	for _, id := range classIDs {
		e, ok := m.entries[id]
		if !ok {
			continue
		}
		for _, meth := range e.methods {
			if name == "" || meth.Name == name {
				out = append(out, meth)
			}
		}
	}
	return out, nil
}

func (m *Memory) LookupFields(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.FieldInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*java.FieldInfo
	for _, id := range classIDs {
		e, ok := m.entries[id]
		if !ok {
			continue
		}
		for _, f := range e.fields {
			if name == "" || f.Name == name {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func (m *Memory) LookupSuperTypeNames(ctx context.Context, classID java.ClassID, relation Relation) ([]string, error) {
	c, err := m.LookupClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if relation == Interface {
		return append([]string(nil), c.Interfaces...), nil
	}
	if c.SuperClass == "" {
		return nil, nil
	}
	return []string{c.SuperClass}, nil
}

func (m *Memory) LookupInnerClassNames(ctx context.Context, classIDs []java.ClassID, units []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for _, id := range classIDs {
		e, ok := m.entries[id]
		if !ok || !InUnits(units, e.class.Unit) {
			continue
		}
		names = append(names, e.class.InnerClasses...)
	}
	return SortedSet(names), nil
}

func (m *Memory) Close() error { return nil }

// Len returns the number of stored classes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
