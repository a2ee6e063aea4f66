package oasdoc_test

import (
	"encoding/json"
	"testing"

	oasdoc "github.com/reoring/oasdoc"
)

func TestTag_BuilderChain(t *testing.T) {
	tag := oasdoc.NewTag("pets").
		WithDescription("Pet operations").
		WithExternalDocs(oasdoc.NewExternalDocumentation("https://example.com/docs").WithDescription("More about pets")).
		WithExtensions(oasdoc.Ext("x-badge", "gold"))

	if tag.Name != "pets" {
		t.Fatalf("name: %q", tag.Name)
	}
	if tag.Description == nil || *tag.Description != "Pet operations" {
		t.Fatalf("description: %v", tag.Description)
	}
	if tag.ExternalDocs == nil || tag.ExternalDocs.URL != "https://example.com/docs" {
		t.Fatalf("externalDocs: %v", tag.ExternalDocs)
	}
	if v, ok := tag.Extensions.Get("x-badge"); !ok || v != "gold" {
		t.Fatalf("x-badge: %v %v", v, ok)
	}
}

// TestTag_BuilderLeavesReceiverUntouched checks the chained builders return
// copies instead of mutating the receiver.
func TestTag_BuilderLeavesReceiverUntouched(t *testing.T) {
	base := oasdoc.NewTag("pets").WithExtensions(oasdoc.Ext("x-a", "1"))
	derived := base.WithDescription("added").WithExtensions(oasdoc.Ext("x-b", "2"))

	if base.Description != nil {
		t.Fatalf("base description mutated: %v", *base.Description)
	}
	if base.Extensions.Has("x-b") {
		t.Fatalf("base extensions mutated: %v", base.Extensions.Keys())
	}
	if !derived.Extensions.Has("x-a") || !derived.Extensions.Has("x-b") {
		t.Fatalf("derived extensions: %v", derived.Extensions.Keys())
	}
}

// TestTag_WithExtensionsMergeKeepsPosition verifies merge semantics: an
// existing key keeps its position and takes the new value, new keys append.
func TestTag_WithExtensionsMergeKeepsPosition(t *testing.T) {
	tag := oasdoc.NewTag("t").
		WithExtensions(oasdoc.Ext("x-a", "1"), oasdoc.Ext("x-b", "2")).
		WithExtensions(oasdoc.Ext("x-a", "9"), oasdoc.Ext("x-c", "3"))

	wantKeys := []string{"x-a", "x-b", "x-c"}
	gotKeys := tag.Extensions.Keys()
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("keys: %v", gotKeys)
	}
	for i, k := range wantKeys {
		if gotKeys[i] != k {
			t.Fatalf("keys: got %v, want %v", gotKeys, wantKeys)
		}
	}
	if v, _ := tag.Extensions.Get("x-a"); v != "9" {
		t.Fatalf("x-a: %v", v)
	}
}

func TestTag_MarshalJSON_FieldOrder(t *testing.T) {
	tag := oasdoc.NewTag("pets").
		WithDescription("Pet operations").
		WithExternalDocs(oasdoc.NewExternalDocumentation("https://example.com").WithDescription("docs")).
		WithExtensions(oasdoc.Ext("x-b", "2"), oasdoc.Ext("x-a", "1"))

	b, err := json.Marshal(tag)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"pets","description":"Pet operations","externalDocs":{"url":"https://example.com","description":"docs"},"x-b":"2","x-a":"1"}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}
}

func TestTag_MarshalJSON_OmitsAbsentOptionals(t *testing.T) {
	b, err := json.Marshal(oasdoc.NewTag("pets"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"name":"pets"}` {
		t.Fatalf("got %s", b)
	}
}

// An empty description is still a present description; only nil is omitted.
func TestTag_MarshalJSON_EmptyStringIsPresent(t *testing.T) {
	b, err := json.Marshal(oasdoc.NewTag("pets").WithDescription(""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"name":"pets","description":""}` {
		t.Fatalf("got %s", b)
	}
}

// A builder-made extension that collides with a typed wire key is skipped at
// serialization; the typed field wins.
func TestTag_MarshalJSON_ExtensionCollidingWithTypedKey(t *testing.T) {
	tag := oasdoc.NewTag("real").WithExtensions(
		oasdoc.Ext("name", "shadow"),
		oasdoc.Ext("x-keep", "yes"),
	)
	b, err := json.Marshal(tag)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"name":"real","x-keep":"yes"}` {
		t.Fatalf("got %s", b)
	}
}

func TestParseTag_RoutesKnownAndUnknownKeys(t *testing.T) {
	js := []byte(`{"x-first":true,"name":"pets","zzz":{"deep":[1,"two"]},"description":"d"}`)
	tag, err := oasdoc.ParseTag(oasdoc.JSONBytes(js))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tag.Name != "pets" || tag.Description == nil || *tag.Description != "d" {
		t.Fatalf("fields: %+v", tag)
	}
	gotKeys := tag.Extensions.Keys()
	if len(gotKeys) != 2 || gotKeys[0] != "x-first" || gotKeys[1] != "zzz" {
		t.Fatalf("extension order: %v", gotKeys)
	}
	v, _ := tag.Extensions.Get("zzz")
	obj, ok := v.(*oasdoc.Map)
	if !ok {
		t.Fatalf("zzz decoded as %T", v)
	}
	deep, _ := obj.Get("deep")
	arr, ok := deep.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("deep: %v", deep)
	}
	if arr[0] != json.Number("1") || arr[1] != "two" {
		t.Fatalf("deep values: %v", arr)
	}
}

func TestParseTag_MissingRequired(t *testing.T) {
	_, err := oasdoc.ParseTag(oasdoc.JSONBytes([]byte(`{"description":"d"}`)))
	iss, ok := oasdoc.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got: %v", err)
	}
	if iss[0].Code != oasdoc.CodeRequired || iss[0].Path != "/name" {
		t.Fatalf("issue: %+v", iss[0])
	}
}

func TestParseTag_TypeMismatch(t *testing.T) {
	_, err := oasdoc.ParseTag(oasdoc.JSONBytes([]byte(`{"name":123}`)))
	iss, ok := oasdoc.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected issues, got: %v", err)
	}
	if iss[0].Code != oasdoc.CodeInvalidType || iss[0].Path != "/name" {
		t.Fatalf("issue: %+v", iss[0])
	}
	if iss[0].Params["expected"] != "string" || iss[0].Params["got"] != "number" {
		t.Fatalf("params: %v", iss[0].Params)
	}
}

// A mismatched optional is reported but does not stop the walk; later keys
// still decode.
func TestParseTag_MismatchContinuesWalk(t *testing.T) {
	js := []byte(`{"name":"pets","description":[1,2],"x-after":"ok"}`)
	_, err := oasdoc.ParseTag(oasdoc.JSONBytes(js))
	iss, ok := oasdoc.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got: %v", err)
	}
	if iss[0].Code != oasdoc.CodeInvalidType || iss[0].Path != "/description" {
		t.Fatalf("issue: %+v", iss[0])
	}
}

// Duplicate keys resolve silently by default: last value wins, typed and
// extension keys alike, and extension keys keep their first position.
func TestParseTag_DuplicateKeysLastWins(t *testing.T) {
	js := []byte(`{"name":"a","x-k":1,"name":"b","x-k":2,"x-z":3}`)
	tag, err := oasdoc.ParseTag(oasdoc.JSONBytes(js))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tag.Name != "b" {
		t.Fatalf("name: %q", tag.Name)
	}
	gotKeys := tag.Extensions.Keys()
	if len(gotKeys) != 2 || gotKeys[0] != "x-k" || gotKeys[1] != "x-z" {
		t.Fatalf("extension order: %v", gotKeys)
	}
	if v, _ := tag.Extensions.Get("x-k"); v != json.Number("2") {
		t.Fatalf("x-k: %v", v)
	}
}

// An explicit null on an optional field yields the absent state.
func TestParseTag_NullOptionalMeansAbsent(t *testing.T) {
	tag, err := oasdoc.ParseTag(oasdoc.JSONBytes([]byte(`{"name":"pets","description":null,"externalDocs":null}`)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tag.Description != nil || tag.ExternalDocs != nil {
		t.Fatalf("optionals not cleared: %+v", tag)
	}
	b, err := json.Marshal(tag)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"name":"pets"}` {
		t.Fatalf("got %s", b)
	}
}

func TestTag_JSONRoundTrip(t *testing.T) {
	want := oasdoc.NewTag("pets").
		WithDescription("Pet operations").
		WithExternalDocs(oasdoc.NewExternalDocumentation("https://example.com").WithDescription("docs")).
		WithExtensions(oasdoc.Ext("x-order", json.Number("3")), oasdoc.Ext("x-on", true))

	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got oasdoc.Tag
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestTag_Equal(t *testing.T) {
	a := oasdoc.NewTag("t").WithExtensions(oasdoc.Ext("x-a", "1"), oasdoc.Ext("x-b", "2"))
	b := oasdoc.NewTag("t").WithExtensions(oasdoc.Ext("x-a", "1"), oasdoc.Ext("x-b", "2"))
	if !a.Equal(b) {
		t.Fatalf("expected equal")
	}
	// Same entries, different insertion order: not equal.
	c := oasdoc.NewTag("t").WithExtensions(oasdoc.Ext("x-b", "2"), oasdoc.Ext("x-a", "1"))
	if a.Equal(c) {
		t.Fatalf("expected order-sensitive inequality")
	}
	if a.Equal(oasdoc.NewTag("u").WithExtensions(oasdoc.Ext("x-a", "1"), oasdoc.Ext("x-b", "2"))) {
		t.Fatalf("expected name inequality")
	}
}

func TestExternalDocumentation_ParseAndRequire(t *testing.T) {
	docs, err := oasdoc.ParseExternalDocumentation(oasdoc.JSONBytes([]byte(`{"url":"https://example.com","x-note":"n"}`)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if docs.URL != "https://example.com" || !docs.Extensions.Has("x-note") {
		t.Fatalf("docs: %+v", docs)
	}

	_, err = oasdoc.ParseExternalDocumentation(oasdoc.JSONBytes([]byte(`{"description":"d"}`)))
	iss, ok := oasdoc.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != oasdoc.CodeRequired || iss[0].Path != "/url" {
		t.Fatalf("expected required /url, got: %v", err)
	}
}

// Issues inside a nested object carry the nested path.
func TestParseTag_NestedIssuePath(t *testing.T) {
	js := []byte(`{"name":"pets","externalDocs":{"description":7}}`)
	_, err := oasdoc.ParseTag(oasdoc.JSONBytes(js))
	iss, ok := oasdoc.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got: %v", err)
	}
	var paths []string
	for _, it := range iss {
		paths = append(paths, it.Code+" "+it.Path)
	}
	if len(iss) != 2 {
		t.Fatalf("issues: %v", paths)
	}
	if iss[0].Code != oasdoc.CodeInvalidType || iss[0].Path != "/externalDocs/description" {
		t.Fatalf("first issue: %+v", iss[0])
	}
	if iss[1].Code != oasdoc.CodeRequired || iss[1].Path != "/externalDocs/url" {
		t.Fatalf("second issue: %+v", iss[1])
	}
}
