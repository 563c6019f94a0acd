package scope

import (
	"fmt"
	"strings"
)

type Import struct {
	// Name is the imported class, or the package or class of a wildcard
	// import. Static imports name the member: java.util.Collections.sort.
	Name     string
	Static   bool
	Wildcard bool
}

// ParseImport reads an import declaration such as
// "import static java.util.Collections.*;". The "import" keyword and the
// trailing semicolon are optional.
func ParseImport(decl string) (Import, error) {
	s := strings.TrimSpace(decl)
	s = strings.TrimSuffix(s, ";")
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "import"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
		s = strings.TrimSpace(rest)
	}

	var imp Import
	if rest, ok := strings.CutPrefix(s, "static "); ok {
		imp.Static = true
		s = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(s, ".*"); ok {
		imp.Wildcard = true
		s = rest
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Import{}, fmt.Errorf("invalid import %q: no name", decl)
	}
	for _, part := range strings.Split(s, ".") {
		if !isIdentifier(part) {
			return Import{}, fmt.Errorf("invalid import %q: bad name segment %q", decl, part)
		}
	}
	if imp.Static && !imp.Wildcard && !strings.Contains(s, ".") {
		return Import{}, fmt.Errorf("invalid import %q: static import needs a class", decl)
	}
	imp.Name = s
	return imp, nil
}

func (imp Import) String() string {
	var sb strings.Builder
	sb.WriteString("import ")
	if imp.Static {
		sb.WriteString("static ")
	}
	sb.WriteString(imp.Name)
	if imp.Wildcard {
		sb.WriteString(".*")
	}
	sb.WriteByte(';')
	return sb.String()
}

// Owner is the class of a static import.
func (imp Import) Owner() string {
	if imp.Wildcard {
		return imp.Name
	}
	if i := strings.LastIndexByte(imp.Name, '.'); i >= 0 {
		return imp.Name[:i]
	}
	return ""
}

// Member is the imported member name of a single static import.
func (imp Import) Member() string {
	if imp.Wildcard {
		return ""
	}
	return imp.Name[strings.LastIndexByte(imp.Name, '.')+1:]
}

// SimpleName is the last segment of a single-type import.
func (imp Import) SimpleName() string {
	return imp.Name[strings.LastIndexByte(imp.Name, '.')+1:]
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}
