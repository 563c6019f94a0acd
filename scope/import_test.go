package scope

import "testing"

func TestParseImport(t *testing.T) {
	tests := []struct {
		in   string
		want Import
	}{
		{"import java.util.List;", Import{Name: "java.util.List"}},
		{"java.util.*", Import{Name: "java.util", Wildcard: true}},
		{"import static java.util.Collections.sort;", Import{Name: "java.util.Collections.sort", Static: true}},
		{"import static java.util.Collections.*;", Import{Name: "java.util.Collections", Static: true, Wildcard: true}},
		{"  import   java.util.Map.Entry ;", Import{Name: "java.util.Map.Entry"}},
		{"importer.Thing", Import{Name: "importer.Thing"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseImport(tt.in)
			if err != nil {
				t.Fatalf("ParseImport: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseImport = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseImportErrors(t *testing.T) {
	for _, in := range []string{"", "import ;", "import java..util;", "import static Foo;", "import 1abc.X;"} {
		if _, err := ParseImport(in); err == nil {
			t.Errorf("ParseImport(%q) succeeded", in)
		}
	}
}

func TestImportParts(t *testing.T) {
	single := Import{Name: "java.util.Collections.sort", Static: true}
	if single.Owner() != "java.util.Collections" || single.Member() != "sort" {
		t.Errorf("Owner/Member = %q/%q", single.Owner(), single.Member())
	}
	wild := Import{Name: "java.util.Collections", Static: true, Wildcard: true}
	if wild.Owner() != "java.util.Collections" || wild.Member() != "" {
		t.Errorf("wildcard Owner/Member = %q/%q", wild.Owner(), wild.Member())
	}
	if got := wild.String(); got != "import static java.util.Collections.*;" {
		t.Errorf("String() = %q", got)
	}
}
