// Package catalog stores decoded class declarations and answers the
// lookups overload resolution needs: classes by name, members by class,
// supertype names and inner classes.
//
// Stores persist java.Declaration records and hand out java.ClassInfo,
// java.MethodInfo and java.FieldInfo values that callers must treat as
// read-only.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/jbind/java"
)

var log = commonlog.GetLogger("jbind.catalog")

var ErrClassNotFound = errors.New("class not found")

// Relation selects which supertype names LookupSuperTypeNames returns.
type Relation int

const (
	SuperClass Relation = iota
	Interface
)

func (r Relation) String() string {
	if r == Interface {
		return "interface"
	}
	return "superclass"
}

// Catalog is read access to declarations. An empty unit list means every
// unit. Results follow the order of the class ids passed in and, within a
// class, declaration order.
type Catalog interface {
	// LookupClasses finds classes by binary name, or by simple name when
	// name has no package.
	LookupClasses(ctx context.Context, units []string, name string) ([]*java.ClassInfo, error)
	LookupClassByID(ctx context.Context, id java.ClassID) (*java.ClassInfo, error)
	// LookupMethods returns methods named name; an empty name returns all.
	// Constructors are named after the simple class name.
	LookupMethods(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.MethodInfo, error)
	LookupFields(ctx context.Context, classIDs []java.ClassID, name string) ([]*java.FieldInfo, error)
	LookupSuperTypeNames(ctx context.Context, classID java.ClassID, relation Relation) ([]string, error)
	// LookupInnerClassNames returns the sorted, deduplicated member
	// classes of the given classes, restricted to classes in units.
	LookupInnerClassNames(ctx context.Context, classIDs []java.ClassID, units []string) ([]string, error)
}

// Sink receives declarations read from class files.
type Sink interface {
	Add(ctx context.Context, unit string, decl *java.Declaration) (java.ClassID, error)
}

// Store is a catalog that can also be filled.
type Store interface {
	Catalog
	Sink
	Close() error
}

// InUnits reports whether unit is selected by units.
func InUnits(units []string, unit string) bool {
	if len(units) == 0 {
		return true
	}
	for _, u := range units {
		if u == unit {
			return true
		}
	}
	return false
}

// IsQualified reports whether name carries a package.
func IsQualified(name string) bool {
	return strings.ContainsRune(name, '.')
}

// DecodeClass builds a ClassInfo from a raw record, logging signature
// problems.
func DecodeClass(id java.ClassID, raw java.RawClass) *java.ClassInfo {
	c, err := java.NewClassInfo(id, raw)
	if err != nil {
		log.Warningf("%s", err)
	}
	return c
}

// StoredMethod is a raw method with its position in the class file.
type StoredMethod struct {
	Order int
	java.RawMethod
}

// DecodeMethods builds the methods of class named name, all when name is
// empty.
func DecodeMethods(class *java.ClassInfo, raws []StoredMethod, name string) []*java.MethodInfo {
	var out []*java.MethodInfo
	for _, raw := range raws {
		if name != "" && MethodName(class, raw.Name) != name {
			continue
		}
		m, err := java.NewMethodInfo(class, raw.RawMethod, raw.Order)
		if err != nil {
			log.Warningf("%s", err)
		}
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func DecodeFields(class *java.ClassInfo, raws []java.RawField, name string) []*java.FieldInfo {
	var out []*java.FieldInfo
	for _, raw := range raws {
		if name != "" && raw.Name != name {
			continue
		}
		f, err := java.NewFieldInfo(class, raw)
		if err != nil {
			log.Warningf("%s", err)
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// MethodName is the lookup name of a raw method: constructors go by the
// simple class name.
func MethodName(class *java.ClassInfo, raw string) string {
	if raw == "<init>" {
		return class.SimpleName
	}
	return raw
}

// SortedSet returns the sorted distinct values of names.
func SortedSet(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
