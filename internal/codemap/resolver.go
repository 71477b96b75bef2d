package codemap

// Resolver matches call sites against the definitions discovered in a scan.
// The policy is deliberately conservative: prefer no edge over a wrong edge.
type Resolver struct {
	byName map[string][]*Definition
}

// NewResolver indexes definitions by bare name, preserving discovery order
func NewResolver(defs []*Definition) *Resolver {
	byName := make(map[string][]*Definition)
	for _, d := range defs {
		byName[d.Name] = append(byName[d.Name], d)
	}
	return &Resolver{byName: byName}
}

// Resolve returns the target definition for a call site owned by caller, or
// nil when the call is ambiguous or unknown. Tiers apply in strict order:
//
//  1. a self call resolves within the caller's enclosing class
//  2. a name that is globally unique resolves to its only definition
//  3. a call with a base resolves to a candidate whose class or name matches
func (r *Resolver) Resolve(caller *Definition, call CallSite) *Definition {
	candidates := r.byName[call.Name]

	switch call.Kind {
	case CallSelf:
		if caller.ClassName != "" {
			for _, c := range candidates {
				if c.ClassName == caller.ClassName {
					return c
				}
			}
		}
	case CallName, CallAttr:
		// no class-scoped tier
	}

	if len(candidates) == 1 {
		return candidates[0]
	}

	if call.Base != "" {
		for _, c := range candidates {
			if c.ClassName == call.Base || c.Name == call.Base {
				return c
			}
		}
	}

	return nil
}
