package oasdoc_test

import (
	"encoding/json"
	"testing"

	oasdoc "github.com/reoring/oasdoc"
)

func sampleServer() oasdoc.Server {
	return oasdoc.NewServer("https://{env}.example.com/v1").
		WithDescription("main").
		WithVariable("env", oasdoc.NewServerVariable("prod").WithEnum("prod", "staging")).
		WithVariable("region", oasdoc.NewServerVariable("us")).
		WithExtensions(oasdoc.Ext("x-zone", "a"))
}

// Variable names are emitted sorted; only extensions carry insertion order.
func TestServer_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(sampleServer())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"url":"https://{env}.example.com/v1","description":"main",` +
		`"variables":{"env":{"default":"prod","enum":["prod","staging"]},"region":{"default":"us"}},"x-zone":"a"}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}
}

func TestServer_JSONRoundTrip(t *testing.T) {
	want := sampleServer()
	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got oasdoc.Server
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestParseServer_Variables(t *testing.T) {
	js := []byte(`{"url":"https://api.example.com","variables":{"env":{"default":"prod","enum":["prod","dev"],"x-hidden":true}}}`)
	s, err := oasdoc.ParseServer(oasdoc.JSONBytes(js))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, ok := s.Variables["env"]
	if !ok {
		t.Fatalf("variables: %+v", s.Variables)
	}
	if v.Default != "prod" || len(v.Enum) != 2 || v.Enum[0] != "prod" || v.Enum[1] != "dev" {
		t.Fatalf("env: %+v", v)
	}
	if !v.Extensions.Has("x-hidden") {
		t.Fatalf("env extensions: %v", v.Extensions.Keys())
	}
}

func TestParseServer_MissingURL(t *testing.T) {
	_, err := oasdoc.ParseServer(oasdoc.JSONBytes([]byte(`{"description":"d"}`)))
	iss, ok := oasdoc.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != oasdoc.CodeRequired || iss[0].Path != "/url" {
		t.Fatalf("expected required /url, got: %v", err)
	}
}

// A variable missing its default is reported under the variable's own path.
func TestParseServer_VariableMissingDefault(t *testing.T) {
	js := []byte(`{"url":"u","variables":{"env":{"enum":["a"]}}}`)
	_, err := oasdoc.ParseServer(oasdoc.JSONBytes(js))
	iss, ok := oasdoc.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got: %v", err)
	}
	if iss[0].Code != oasdoc.CodeRequired || iss[0].Path != "/variables/env/default" {
		t.Fatalf("issue: %+v", iss[0])
	}
}

// Enum entries must be strings; a bad element is reported by index.
func TestParseServerVariable_EnumElementMismatch(t *testing.T) {
	js := []byte(`{"default":"a","enum":["a",2,"c"]}`)
	_, err := oasdoc.ParseServerVariable(oasdoc.JSONBytes(js))
	iss, ok := oasdoc.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got: %v", err)
	}
	if iss[0].Code != oasdoc.CodeInvalidType || iss[0].Path != "/enum/1" {
		t.Fatalf("issue: %+v", iss[0])
	}
}

func TestServerVariable_EmptyEnumOmitted(t *testing.T) {
	b, err := json.Marshal(oasdoc.NewServerVariable("prod"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"default":"prod"}` {
		t.Fatalf("got %s", b)
	}
}

// A decoded empty enum compares equal to an absent one.
func TestServerVariable_NilAndEmptyEnumEqual(t *testing.T) {
	a, err := oasdoc.ParseServerVariable(oasdoc.JSONBytes([]byte(`{"default":"d","enum":[]}`)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Enum == nil || len(a.Enum) != 0 {
		t.Fatalf("enum should decode non-nil empty, got %#v", a.Enum)
	}
	if !a.Equal(oasdoc.NewServerVariable("d")) {
		t.Fatalf("expected nil==empty enum equality")
	}
}

func TestServer_WithVariableKeepsExisting(t *testing.T) {
	base := oasdoc.NewServer("u").WithVariable("a", oasdoc.NewServerVariable("1"))
	derived := base.WithVariable("b", oasdoc.NewServerVariable("2"))
	if len(base.Variables) != 1 {
		t.Fatalf("base mutated: %+v", base.Variables)
	}
	if len(derived.Variables) != 2 || derived.Variables["a"].Default != "1" || derived.Variables["b"].Default != "2" {
		t.Fatalf("derived: %+v", derived.Variables)
	}
}
