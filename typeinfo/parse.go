package typeinfo

import (
	"fmt"
	"strings"
)

// Parse reads a type written in source form, as used on the command line
// and in tests: "int", "java.lang.String[]", "java.util.List<java.lang.String>",
// "java.lang.Object...", "null", "? extends java.lang.Number".
func Parse(s string) (TypeInfo, error) {
	t, rest, err := parseType(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("parse type %q: unexpected %q", s, rest)
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) TypeInfo {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parseType(s string) (TypeInfo, string, error) {
	s = strings.TrimLeft(s, " ")
	if strings.HasPrefix(s, "?") {
		rest := strings.TrimLeft(s[1:], " ")
		if strings.HasPrefix(rest, "extends ") {
			bound, rest, err := parseType(rest[len("extends "):])
			if err != nil {
				return nil, "", err
			}
			return NewWildcard(bound), rest, nil
		}
		if strings.HasPrefix(rest, "super ") {
			_, rest, err := parseType(rest[len("super "):])
			if err != nil {
				return nil, "", err
			}
			return NewWildcard(Object), rest, nil
		}
		return NewWildcard(Object), rest, nil
	}

	end := strings.IndexAny(s, "<>,[]. ")
	for end >= 0 && s[end] == '.' {
		if strings.HasPrefix(s[end:], "...") {
			break
		}
		next := strings.IndexAny(s[end+1:], "<>,[]. ")
		if next < 0 {
			end = -1
			break
		}
		end += next + 1
	}
	if end < 0 {
		end = len(s)
	}
	name := s[:end]
	if name == "" {
		return nil, "", fmt.Errorf("parse type: missing name in %q", s)
	}
	rest := s[end:]

	var t TypeInfo
	switch name {
	case "void":
		t = Void
	case "null":
		t = Null
	default:
		if p, ok := PrimitiveByName(name); ok {
			t = p
		} else {
			t = NewQualified(name)
		}
	}

	if strings.HasPrefix(rest, "<") {
		var args []TypeInfo
		rest = rest[1:]
		for {
			arg, r, err := parseType(rest)
			if err != nil {
				return nil, "", err
			}
			args = append(args, arg)
			r = strings.TrimLeft(r, " ")
			if strings.HasPrefix(r, ",") {
				rest = r[1:]
				continue
			}
			if !strings.HasPrefix(r, ">") {
				return nil, "", fmt.Errorf("parse type: unterminated type arguments in %q", s)
			}
			rest = r[1:]
			break
		}
		t = NewParameterized(name, args...)
	}

	dim := 0
	for strings.HasPrefix(rest, "[]") {
		dim++
		rest = rest[2:]
	}
	t = NewArray(t, dim)
	if strings.HasPrefix(rest, "...") {
		t = NewVararg(t)
		rest = rest[3:]
	}
	return t, rest, nil
}
