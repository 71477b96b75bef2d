package codemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defsFixture() []*Definition {
	return []*Definition{
		{ID: "m-A-run", Name: "run", ClassName: "A"},
		{ID: "m-A-step", Name: "step", ClassName: "A"},
		{ID: "m-B-step", Name: "step", ClassName: "B"},
		{ID: "m-helper", Name: "helper"},
	}
}

func TestResolveSelfCallPrefersOwnClass(t *testing.T) {
	defs := defsFixture()
	r := NewResolver(defs)

	// A.run calls self.step() -> A.step, never B.step
	target := r.Resolve(defs[0], CallSite{Kind: CallSelf, Name: "step", Base: "self"})
	assert.Same(t, defs[1], target)
}

func TestResolveSelfCallOutsideClassFallsThrough(t *testing.T) {
	defs := defsFixture()
	r := NewResolver(defs)

	// a module-level caller cannot resolve self.step: two candidates, no base
	target := r.Resolve(defs[3], CallSite{Kind: CallSelf, Name: "step", Base: "self"})
	assert.Nil(t, target)
}

func TestResolveGloballyUniqueName(t *testing.T) {
	defs := defsFixture()
	r := NewResolver(defs)

	target := r.Resolve(defs[0], CallSite{Kind: CallName, Name: "helper"})
	assert.Same(t, defs[3], target)
}

func TestResolveAmbiguousNameYieldsNoEdge(t *testing.T) {
	defs := defsFixture()
	r := NewResolver(defs)

	target := r.Resolve(defs[3], CallSite{Kind: CallName, Name: "step"})
	assert.Nil(t, target)
}

func TestResolveAttrCallByBaseClass(t *testing.T) {
	defs := defsFixture()
	r := NewResolver(defs)

	// b.step() where B matches a candidate class name
	target := r.Resolve(defs[3], CallSite{Kind: CallAttr, Name: "step", Base: "B"})
	assert.Same(t, defs[2], target)
}

func TestResolveAttrCallUnknownBase(t *testing.T) {
	defs := defsFixture()
	r := NewResolver(defs)

	target := r.Resolve(defs[3], CallSite{Kind: CallAttr, Name: "step", Base: "queue"})
	assert.Nil(t, target)
}

func TestResolveUnknownName(t *testing.T) {
	defs := defsFixture()
	r := NewResolver(defs)

	target := r.Resolve(defs[0], CallSite{Kind: CallName, Name: "print"})
	assert.Nil(t, target)
}

func TestResolveSelfCallMissingInClassUsesUniqueName(t *testing.T) {
	defs := []*Definition{
		{ID: "m-A-run", Name: "run", ClassName: "A"},
		{ID: "m-B-step", Name: "step", ClassName: "B"},
	}
	r := NewResolver(defs)

	// self.step() in A: no A.step, but the name is globally unique
	target := r.Resolve(defs[0], CallSite{Kind: CallSelf, Name: "step", Base: "self"})
	assert.Same(t, defs[1], target)
}
