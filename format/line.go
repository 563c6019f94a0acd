package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/resolve"
)

// LineEncoder writes one tab-separated record per line. Empty columns are
// written as "-".
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) write(sb *strings.Builder) error {
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *LineEncoder) EncodeDeclaration(d *Declaration) error {
	var sb strings.Builder
	c := d.Class
	name := c.Name
	if len(c.TypeParameters) > 0 {
		name = c.Type().Name()
	}
	fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", c.Kind, name, c.Unit, modifiers(string(c.Visibility), classModifiers(c)))
	if c.SuperClass != "" {
		fmt.Fprintf(&sb, "extends\t%s\n", supertypeName(c, c.SuperClass))
	}
	for _, iface := range c.Interfaces {
		fmt.Fprintf(&sb, "implements\t%s\n", supertypeName(c, iface))
	}
	for _, f := range d.Fields {
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\n", f.Name, f.Type.Name(), modifiers(string(f.Visibility), fieldModifiers(f)))
	}
	for _, m := range d.Methods {
		kind := "method"
		if m.IsConstructor {
			kind = "constructor"
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\n", kind, memberName(m), dash(returnName(m)), parameters(m), modifiers(string(m.Visibility), methodModifiers(m)))
	}
	return e.write(&sb)
}

func (e *LineEncoder) EncodeResolution(r *Resolution) error {
	var sb strings.Builder
	writeResolution(&sb, r)
	return e.write(&sb)
}

func writeResolution(sb *strings.Builder, r *Resolution) {
	status := r.status()
	if r.Err != nil {
		fmt.Fprintf(sb, "%s\t%s\t%s\n", r.Site, status, r.Err)
	} else {
		fmt.Fprintf(sb, "%s\t%s\n", r.Site, status)
	}
	if f := r.Field; f != nil {
		fmt.Fprintf(sb, "field\t%s.%s\t%s\n", f.Field.Class.Name, f.Field.Name, f.Field.Type.Name())
	}
	if r.Result != nil {
		for _, m := range r.Result.Members {
			fmt.Fprintf(sb, "member\t%s\n", m)
		}
	}
	if r.Function != nil {
		for _, def := range r.Function.Definitions() {
			fmt.Fprintf(sb, "function\t%s\n", def)
		}
	}
}

func (e *LineEncoder) EncodeExplanation(site string, ex *resolve.Explanation) error {
	var sb strings.Builder
	for i, group := range ex.Applicable {
		for _, c := range group {
			m := c.Method.WithTypes(c.Parameters, c.Method.Return)
			deferred := "-"
			if c.Deferred {
				deferred = "deferred"
			}
			fmt.Fprintf(&sb, "candidate\t%d\t%s\t%d\t%d\t%s\t%s\n",
				i, m, c.InvokerDistance, c.ArgumentDistance, c.Phase, deferred)
		}
	}
	for _, m := range ex.Rejected {
		fmt.Fprintf(&sb, "rejected\t%s\n", m)
	}
	writeResolution(&sb, &Resolution{Site: site, Result: ex.Result, Err: ex.Err})
	return e.write(&sb)
}

func (e *LineEncoder) EncodeAudit(a resolve.AuditSnapshot) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "methods\t%d\n", a.Methods)
	fmt.Fprintf(&sb, "classes\t%d\n", a.Classes)
	fmt.Fprintf(&sb, "fields\t%d\n", a.Fields)
	fmt.Fprintf(&sb, "method_references\t%d\n", a.MethodReferences)
	fmt.Fprintf(&sb, "exact\t%d\n", a.Exact)
	fmt.Fprintf(&sb, "approximate\t%d\n", a.Approximate)
	fmt.Fprintf(&sb, "unresolved\t%d\n", a.Unresolved)
	return e.write(&sb)
}

// supertypeName is the parameterized form of a supertype when c's
// signature gives one.
func supertypeName(c *java.ClassInfo, name string) string {
	for _, t := range c.ParameterizedSupertypes {
		if t.QualifiedName() == name {
			return t.Name()
		}
	}
	return name
}

func parameters(m *java.MethodInfo) string {
	parts := make([]string, len(m.Arguments))
	for i, a := range m.Arguments {
		parts[i] = a.Name()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func modifiers(visibility string, mods []string) string {
	return strings.Join(append([]string{visibility}, mods...), ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
