// Package codemap builds blueprint graphs from Python source trees and from
// natural-language prompts. The scan pipeline runs scanner -> extractor ->
// resolver -> graph building -> layout; the prompt pipeline normalizes a
// capability-produced draft or a keyword template into the same schema.
package codemap

import "github.com/blueprinthq/blueprintd/internal/blueprint"

// CallKind classifies a call expression by the shape of its callee
type CallKind int

const (
	// CallName is a bare call: foo()
	CallName CallKind = iota
	// CallSelf is a call on the enclosing instance: self.foo()
	CallSelf
	// CallAttr is a call through another named object: obj.foo()
	CallAttr
)

// CallSite represents one call expression found inside a definition body
type CallSite struct {
	Kind CallKind
	Name string // bare name being called
	Base string // receiver name for CallSelf/CallAttr, "" for CallName
}

// Definition represents one discovered function or method
type Definition struct {
	// ID starts as the raw "<module>-<Class>-<name>" identifier and is
	// rewritten in place to its sanitized form before edges are built.
	ID         string
	Name       string
	ClassName  string // "" for module-level functions
	Module     string // dotted path relative to the codebase root
	File       string // absolute path of the originating file
	Calls      []CallSite
	EventNames []string
}

// Stats summarizes a mapping run
type Stats struct {
	FilesScanned int `json:"files_scanned,omitempty"`
	Functions    int `json:"functions"`
	Connections  int `json:"connections"`
}

// Result is a successfully produced blueprint plus its stats
type Result struct {
	Blueprint blueprint.Blueprint `json:"blueprint"`
	Stats     Stats               `json:"stats"`
}
