package oasdoc

// Package oasdoc provides:
//
// - Typed OpenAPI metadata objects (Tag, Info, Server, ...) that keep every
//   unrecognized wire key as an ordered specification extension
// - Chained With* builders over plain value types (no shared mutable state)
// - Order-preserving serialization: typed fields in declaration order, then
//   extensions in insertion order, for both JSON and YAML
// - A stable error model via Issues (JSON Pointer, code, message) with
//   duplicate-key/unknown-key strictness and depth/size guards
//
// Design policy:
// - Keep only public APIs in the root package; put the token layer under
//   internal/engine and message catalogs under i18n/.
// - One file per document object; each replicates the same field-routing
//   pattern instead of hiding it behind reflection.
// - Prefer black-box testing against public APIs.
//
// Collision semantics:
// - Deserialization routes known wire keys into typed fields and everything
//   else into Extensions, so a decoded value never holds an extension whose
//   key shadows a typed field. If such a value is built by hand, the typed
//   field wins at serialization and the extension entry is skipped.
//
// Duplicate keys:
// - Repeated keys in one wire object resolve to the last occurrence's value
//   at the first occurrence's position. Strictness.OnDuplicateKey raises
//   them to warnings or errors.
//
// Typical usage:
//
//	t := oasdoc.NewTag("pets").
//		WithDescription("Pet operations").
//		WithExtensions(oasdoc.Ext("x-internal", true))
//	data, err := json.Marshal(t)
//
//	parsed, err := oasdoc.ParseTag(oasdoc.JSONBytes(data))
//	parsed, err = oasdoc.ParseTag(oasdoc.YAMLBytes(doc), oasdoc.ParseOpt{
//		Strictness: oasdoc.Strictness{OnDuplicateKey: oasdoc.Error},
//	})
//
// Values are plain Go values: copying is cheap, concurrent reads are safe,
// and builders return updated copies. Extension storage is shared between a
// value and its builder results until WithExtensions clones it; mutate
// Extensions directly only on values you own.
