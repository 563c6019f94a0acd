// Package kvstore keeps a declaration catalog in Badger.
//
// Key layout:
//
//	c:<id>                     JSON java.Declaration
//	n:<name>\x00<unit>         id, by binary name
//	s:<simple>\x00<unit>\x00<id>  id, by simple name
//	seq                        id sequence
package kvstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jbind/catalog"
	"github.com/dhamidi/jbind/java"
)

var log = commonlog.GetLogger("jbind.catalog.kv")

const (
	keyPrefixClass  = "c:"
	keyPrefixName   = "n:"
	keyPrefixSimple = "s:"
	keySequence     = "seq"
)

type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens the database in dir. An empty dir gives an in-memory store.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", dir, err)
	}
	seq, err := db.GetSequence([]byte(keySequence), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open id sequence: %w", err)
	}
	return &Store{db: db, seq: seq}, nil
}

func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		log.Warningf("failed to release id sequence: %s", err)
	}
	return s.db.Close()
}

func classKey(id java.ClassID) []byte {
	key := []byte(keyPrefixClass)
	return binary.BigEndian.AppendUint64(key, uint64(id))
}

func nameKey(name, unit string) []byte {
	return []byte(keyPrefixName + name + "\x00" + unit)
}

func simpleKey(simple, unit string, id java.ClassID) []byte {
	key := []byte(keyPrefixSimple + simple + "\x00" + unit + "\x00")
	return binary.BigEndian.AppendUint64(key, uint64(id))
}

func encodeID(id java.ClassID) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

func decodeID(val []byte) (java.ClassID, error) {
	if len(val) != 8 {
		return 0, fmt.Errorf("corrupt class id of %d bytes", len(val))
	}
	return java.ClassID(binary.BigEndian.Uint64(val)), nil
}

func (s *Store) Add(ctx context.Context, unit string, decl *java.Declaration) (java.ClassID, error) {
	if decl == nil || decl.Class.Name == "" {
		return 0, fmt.Errorf("add to kv catalog: empty declaration")
	}
	stored := *decl
	stored.Class.Unit = unit
	data, err := json.Marshal(&stored)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", decl.Class.Name, err)
	}

	var id java.ClassID
	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey(stored.Class.Name, unit))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			n, err := s.seq.Next()
			if err != nil {
				return err
			}
			id = java.ClassID(n + 1)
			if err := txn.Set(nameKey(stored.Class.Name, unit), encodeID(id)); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if id, err = decodeID(val); err != nil {
				return err
			}
			old, err := s.load(txn, id)
			if err != nil {
				return err
			}
			if err := txn.Delete(simpleKey(old.Class.SimpleName(), unit, id)); err != nil {
				return err
			}
		}
		if err := txn.Set(simpleKey(stored.Class.SimpleName(), unit, id), encodeID(id)); err != nil {
			return err
		}
		return txn.Set(classKey(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store %s: %w", decl.Class.Name, err)
	}
	return id, nil
}

func (s *Store) load(txn *badger.Txn, id java.ClassID) (*java.Declaration, error) {
	item, err := txn.Get(classKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("class id %d: %w", id, catalog.ErrClassNotFound)
	}
	if err != nil {
		return nil, err
	}
	var decl java.Declaration
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &decl)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode class id %d: %w", id, err)
	}
	return &decl, nil
}

func (s *Store) declaration(id java.ClassID) (*java.Declaration, error) {
	var decl *java.Declaration
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		decl, err = s.load(txn, id)
		return err
	})
	return decl, err
}

func (s *Store) LookupClasses(ctx context.Context, units []string, name string) ([]*java.ClassInfo, error) {
	prefix := []byte(keyPrefixSimple + name + "\x00")
	if catalog.IsQualified(name) {
		prefix = []byte(keyPrefixName + name + "\x00")
	}

	var decls []*java.Declaration
	var ids []java.ClassID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var found []java.ClassID
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			id, err := decodeID(val)
			if err != nil {
				log.Warningf("skipping %q: %s", it.Item().Key(), err)
				continue
			}
			found = append(found, id)
		}
		sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })

		for _, id := range found {
			decl, err := s.load(txn, id)
			if err != nil {
				return err
			}
			if catalog.InUnits(units, decl.Class.Unit) {
				decls = append(decls, decl)
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up classes %s: %w", name, err)
	}

	out := make([]*java.ClassInfo, len(decls))
	for i, decl := range decls {
		out[i] = catalog.DecodeClass(ids[i], decl.Class)
	}
	return out, nil
}

func (s *Store) LookupClassByID(ctx context.Context, id java.ClassID) (*java.ClassInfo, error) {
	decl, err := s.declaration(id)
	if err != nil {
		return nil, err
	}
	return catalog.DecodeClass(id, decl.Class), nil
}

func (s *Store) LookupMethods(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.MethodInfo, error) {
	var out []*java.MethodInfo
	for _, id := range classIDs {
		decl, err := s.declaration(id)
		if errors.Is(err, catalog.ErrClassNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		class := catalog.DecodeClass(id, decl.Class)
		raws := make([]catalog.StoredMethod, len(decl.Methods))
		for i, m := range decl.Methods {
			raws[i] = catalog.StoredMethod{Order: i, RawMethod: m}
		}
		out = append(out, catalog.DecodeMethods(class, raws, name)...)
	}
	return out, nil
}

func (s *Store) LookupFields(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.FieldInfo, error) {
	var out []*java.FieldInfo
	for _, id := range classIDs {
		decl, err := s.declaration(id)
		if errors.Is(err, catalog.ErrClassNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		class := catalog.DecodeClass(id, decl.Class)
		out = append(out, catalog.DecodeFields(class, decl.Fields, name)...)
	}
	return out, nil
}

func (s *Store) LookupSuperTypeNames(ctx context.Context, classID java.ClassID, relation catalog.Relation) ([]string, error) {
	decl, err := s.declaration(classID)
	if err != nil {
		return nil, err
	}
	if relation == catalog.Interface {
		return decl.Class.Interfaces, nil
	}
	if decl.Class.SuperClass == "" {
		return nil, nil
	}
	return []string{decl.Class.SuperClass}, nil
}

func (s *Store) LookupInnerClassNames(ctx context.Context, classIDs []java.ClassID, units []string) ([]string, error) {
	var names []string
	for _, id := range classIDs {
		decl, err := s.declaration(id)
		if errors.Is(err, catalog.ErrClassNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if catalog.InUnits(units, decl.Class.Unit) {
			names = append(names, decl.Class.InnerClasses...)
		}
	}
	return catalog.SortedSet(names), nil
}
