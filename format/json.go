package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/jbind/java"
	"github.com/dhamidi/jbind/resolve"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) write(v any) error {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

type jsonClass struct {
	Name           string       `json:"name"`
	SimpleName     string       `json:"simpleName"`
	Package        string       `json:"package"`
	Unit           string       `json:"unit"`
	Kind           string       `json:"kind"`
	Visibility     string       `json:"visibility"`
	Modifiers      []string     `json:"modifiers,omitempty"`
	TypeParameters []string     `json:"typeParameters,omitempty"`
	OuterClass     string       `json:"outerClass,omitempty"`
	SuperClass     string       `json:"superClass,omitempty"`
	Interfaces     []string     `json:"interfaces,omitempty"`
	Supertypes     []string     `json:"parameterizedSupertypes,omitempty"`
	Fields         []jsonField  `json:"fields,omitempty"`
	Methods        []jsonMethod `json:"methods,omitempty"`
}

type jsonField struct {
	Class      string   `json:"class,omitempty"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Visibility string   `json:"visibility"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

type jsonMethod struct {
	Class          string   `json:"class,omitempty"`
	Name           string   `json:"name"`
	TypeParameters []string `json:"typeParameters,omitempty"`
	Parameters     []string `json:"parameters"`
	ReturnType     string   `json:"returnType,omitempty"`
	Throws         []string `json:"throws,omitempty"`
	Visibility     string   `json:"visibility"`
	Modifiers      []string `json:"modifiers,omitempty"`
	Constructor    bool     `json:"constructor,omitempty"`
}

type jsonCandidate struct {
	Method           jsonMethod `json:"method"`
	Root             string     `json:"root"`
	InvokerDistance  int        `json:"invokerDistance"`
	ArgumentDistance int        `json:"argumentDistance"`
	Phase            string     `json:"phase"`
	Deferred         bool       `json:"deferred,omitempty"`
}

type jsonResolution struct {
	Site     string       `json:"site"`
	Status   string       `json:"status"`
	Exact    bool         `json:"exact"`
	Members  []jsonMethod `json:"members"`
	Field    *jsonField   `json:"field,omitempty"`
	Function []string     `json:"function,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type jsonExplanation struct {
	Site       string            `json:"site"`
	Applicable [][]jsonCandidate `json:"applicable"`
	Rejected   []jsonMethod      `json:"rejected,omitempty"`
	Resolution jsonResolution    `json:"resolution"`
}

func (e *JSONEncoder) EncodeDeclaration(d *Declaration) error {
	c := d.Class
	data := jsonClass{
		Name:       c.Name,
		SimpleName: c.SimpleName,
		Package:    c.Package,
		Unit:       c.Unit,
		Kind:       string(c.Kind),
		Visibility: string(c.Visibility),
		Modifiers:  classModifiers(c),
		OuterClass: c.OuterClass,
		SuperClass: c.SuperClass,
		Interfaces: c.Interfaces,
	}
	for _, f := range c.TypeParameters {
		data.TypeParameters = append(data.TypeParameters, f.Symbol()+" extends "+f.Bound().Name())
	}
	for _, t := range c.ParameterizedSupertypes {
		data.Supertypes = append(data.Supertypes, t.Name())
	}
	for _, f := range d.Fields {
		data.Fields = append(data.Fields, buildField(f, false))
	}
	for _, m := range d.Methods {
		data.Methods = append(data.Methods, buildMethod(m, false))
	}
	return e.write(data)
}

func (e *JSONEncoder) EncodeResolution(r *Resolution) error {
	return e.write(buildResolution(r))
}

func (e *JSONEncoder) EncodeExplanation(site string, ex *resolve.Explanation) error {
	data := jsonExplanation{
		Site:       site,
		Applicable: make([][]jsonCandidate, len(ex.Applicable)),
		Resolution: buildResolution(&Resolution{Site: site, Result: ex.Result, Err: ex.Err}),
	}
	for i, group := range ex.Applicable {
		data.Applicable[i] = make([]jsonCandidate, len(group))
		for j, c := range group {
			data.Applicable[i][j] = jsonCandidate{
				Method:           buildMethod(c.Method.WithTypes(c.Parameters, c.Method.Return), true),
				Root:             c.Root,
				InvokerDistance:  c.InvokerDistance,
				ArgumentDistance: c.ArgumentDistance,
				Phase:            c.Phase.String(),
				Deferred:         c.Deferred,
			}
		}
	}
	for _, m := range ex.Rejected {
		data.Rejected = append(data.Rejected, buildMethod(m, true))
	}
	return e.write(data)
}

func (e *JSONEncoder) EncodeAudit(a resolve.AuditSnapshot) error {
	return e.write(a)
}

func buildResolution(r *Resolution) jsonResolution {
	data := jsonResolution{Site: r.Site, Status: r.status(), Members: []jsonMethod{}}
	if r.Result != nil {
		data.Exact = r.Result.Exact
		for _, m := range r.Result.Members {
			data.Members = append(data.Members, buildMethod(m, true))
		}
	}
	if r.Field != nil {
		f := buildField(r.Field.Field, true)
		data.Field = &f
	}
	if r.Function != nil {
		for _, def := range r.Function.Definitions() {
			data.Function = append(data.Function, def.String())
		}
	}
	if r.Err != nil {
		data.Error = r.Err.Error()
	}
	return data
}

func buildField(f *java.FieldInfo, withClass bool) jsonField {
	data := jsonField{
		Name:       f.Name,
		Type:       f.Type.Name(),
		Visibility: string(f.Visibility),
		Modifiers:  fieldModifiers(f),
	}
	if withClass && f.Class != nil {
		data.Class = f.Class.Name
	}
	return data
}

func buildMethod(m *java.MethodInfo, withClass bool) jsonMethod {
	data := jsonMethod{
		Name:        memberName(m),
		Parameters:  make([]string, len(m.Arguments)),
		ReturnType:  returnName(m),
		Throws:      m.Throws,
		Visibility:  string(m.Visibility),
		Modifiers:   methodModifiers(m),
		Constructor: m.IsConstructor,
	}
	for i, a := range m.Arguments {
		data.Parameters[i] = a.Name()
	}
	for _, f := range m.TypeParameters {
		data.TypeParameters = append(data.TypeParameters, f.Symbol())
	}
	if withClass && m.Class != nil {
		data.Class = m.Class.Name
	}
	return data
}
