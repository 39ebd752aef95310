package keys

import (
	"reflect"
	"testing"
)

func TestExpectedBaseOnly(t *testing.T) {
	got := Expected("m-42", "", "")
	want := []string{"module:m-42"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected = %v, want %v", got, want)
	}
}

func TestExpectedWithLanguage(t *testing.T) {
	got := Expected("m-42", "de", "")
	want := []string{"module:m-42", "module:m-42:de"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected = %v, want %v", got, want)
	}
	if got[0] != Expected("m-42", "", "")[0] {
		t.Fatal("base key must match the base-only call")
	}
}

func TestExpectedWithLanguageAndDepartment(t *testing.T) {
	got := Expected("m-42", "fr", "sales")
	want := []string{"module:m-42", "module:m-42:fr", "module:m-42:sales:fr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected = %v, want %v", got, want)
	}
}

func TestExpectedLanguageCaseNormalized(t *testing.T) {
	upper := Expected("m-1", "EN-US", "hr")
	lower := Expected("m-1", "en-us", "hr")
	if !reflect.DeepEqual(upper, lower) {
		t.Fatalf("case-differing language tags diverged: %v vs %v", upper, lower)
	}
}

func TestExpectedDepartmentWithoutLanguage(t *testing.T) {
	got := Expected("m-1", "", "sales")
	want := []string{"module:m-1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("department without language must add nothing, got %v", got)
	}
}

func TestExpectedComponents(t *testing.T) {
	cases := []struct {
		email, landing bool
		want           []string
	}{
		{false, false, []string{"campaign:c-7"}},
		{true, false, []string{"campaign:c-7", "campaign:c-7:email"}},
		{false, true, []string{"campaign:c-7", "campaign:c-7:landing"}},
		{true, true, []string{"campaign:c-7", "campaign:c-7:email", "campaign:c-7:landing"}},
	}
	for _, c := range cases {
		got := ExpectedComponents("c-7", c.email, c.landing)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ExpectedComponents(%v,%v) = %v, want %v", c.email, c.landing, got, c.want)
		}
	}
}

func TestExpectedTrimsWhitespace(t *testing.T) {
	got := Expected("  m-9 ", " PT ", "")
	want := []string{"module:m-9", "module:m-9:pt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected = %v, want %v", got, want)
	}
}
