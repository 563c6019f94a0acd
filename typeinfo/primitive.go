package typeinfo

var (
	Boolean = &Primitive{name: "boolean"}
	Byte    = &Primitive{name: "byte"}
	Char    = &Primitive{name: "char"}
	Short   = &Primitive{name: "short"}
	Int     = &Primitive{name: "int"}
	Long    = &Primitive{name: "long"}
	Float   = &Primitive{name: "float"}
	Double  = &Primitive{name: "double"}
)

var primitives = map[string]*Primitive{
	"boolean": Boolean,
	"byte":    Byte,
	"char":    Char,
	"short":   Short,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
}

var boxes = map[string]string{
	"boolean": "java.lang.Boolean",
	"byte":    "java.lang.Byte",
	"char":    "java.lang.Character",
	"short":   "java.lang.Short",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
}

var unboxes = func() map[string]*Primitive {
	m := make(map[string]*Primitive, len(boxes))
	for p, b := range boxes {
		m[b] = primitives[p]
	}
	return m
}()

// numeric widening order; char sits beside short and widens to int.
var wideningRank = map[string]int{
	"byte":   0,
	"short":  1,
	"char":   1,
	"int":    2,
	"long":   3,
	"float":  4,
	"double": 5,
}

func PrimitiveByName(name string) (*Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

// Box returns the wrapper class of p.
func Box(p *Primitive) *Qualified {
	return NewQualified(boxes[p.name])
}

// Unbox returns the primitive wrapped by the class named name.
func Unbox(name string) (*Primitive, bool) {
	p, ok := unboxes[name]
	return p, ok
}

// WideningSteps reports whether from widens to to by a primitive widening
// conversion and how many steps it takes. Identity is zero steps.
func WideningSteps(from, to *Primitive) (int, bool) {
	if from.name == to.name {
		return 0, true
	}
	rf, okf := wideningRank[from.name]
	rt, okt := wideningRank[to.name]
	if !okf || !okt || rt <= rf {
		return 0, false
	}
	// nothing widens to char
	if to.name == "char" {
		return 0, false
	}
	return rt - rf, true
}
