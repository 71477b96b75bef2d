package codemap

import (
	"context"
	"strconv"
	"strings"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

// Draft is the loosely-typed graph produced by the text-completion
// capability before normalization.
type Draft struct {
	Components  []DraftComponent  `json:"components"`
	Connections []DraftConnection `json:"connections"`
}

// DraftComponent is a candidate node; either ID or Name may be missing
type DraftComponent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// DraftConnection is a candidate edge; endpoints may be given as node names
// instead of ids
type DraftConnection struct {
	From     string `json:"from"`
	To       string `json:"to"`
	FromName string `json:"from_name"`
	ToName   string `json:"to_name"`
}

// DraftGenerator produces a blueprint draft from a natural-language prompt.
// Implementations wrap the external text-completion capability.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, prompt string, base *blueprint.Blueprint) (*Draft, error)
}

// graphMerge accumulates a merged graph: base components and connections are
// carried over verbatim and seed the name-keyed dedup table.
type graphMerge struct {
	components  []blueprint.Component
	connections []blueprint.Connection
	idByName    map[string]string
	byID        map[string]int // component id -> index into components
	edgeSeen    map[blueprint.Connection]bool
}

func newGraphMerge(base *blueprint.Blueprint) *graphMerge {
	g := &graphMerge{
		idByName: make(map[string]string),
		byID:     make(map[string]int),
		edgeSeen: make(map[blueprint.Connection]bool),
	}
	if base == nil {
		return g
	}
	for _, comp := range base.Components {
		g.byID[comp.ID] = len(g.components)
		g.components = append(g.components, comp)
		if comp.Name != "" {
			g.idByName[comp.Name] = comp.ID
		}
	}
	for _, conn := range base.Connections {
		g.connections = append(g.connections, conn)
		g.edgeSeen[conn] = true
	}
	return g
}

// ensure returns the id for a named component, appending a new one with
// default ports when the name is not yet known. New ids are sanitized from
// idHint and suffixed -2, -3, ... until unique.
func (g *graphMerge) ensure(name, ctype, idHint string, metadata map[string]interface{}) string {
	if id, ok := g.idByName[name]; ok {
		return id
	}
	if ctype == "" {
		ctype = blueprint.TypeFunction
	}

	baseID := sanitizeID(idHint)
	id := baseID
	for suffix := 1; ; suffix++ {
		if _, taken := g.byID[id]; !taken {
			break
		}
		id = baseID + "-" + strconv.Itoa(suffix+1)
	}

	g.byID[id] = len(g.components)
	g.components = append(g.components, blueprint.Component{
		ID:       id,
		Type:     ctype,
		Name:     name,
		Width:    blueprint.DefaultWidth,
		Height:   blueprint.DefaultHeight,
		Inputs:   blueprint.DefaultInputs(),
		Outputs:  blueprint.DefaultOutputs(),
		Metadata: metadata,
	})
	g.idByName[name] = id
	return id
}

// addEdge connects two components through their first output and input
// ports. Missing ports drop the edge; exact duplicates are suppressed.
func (g *graphMerge) addEdge(fromID, toID string) {
	fromIdx, ok := g.byID[fromID]
	if !ok {
		return
	}
	toIdx, ok := g.byID[toID]
	if !ok {
		return
	}

	fromPort := g.components[fromIdx].FirstOutput()
	toPort := g.components[toIdx].FirstInput()
	if fromPort == "" || toPort == "" {
		return
	}

	conn := blueprint.Connection{
		From: fromID + "-" + fromPort,
		To:   toID + "-" + toPort,
	}
	if g.edgeSeen[conn] {
		return
	}
	g.edgeSeen[conn] = true
	g.connections = append(g.connections, conn)
}

func (g *graphMerge) result(generatedBy, prompt string) *Result {
	assignLayout(g.components)
	return &Result{
		Blueprint: blueprint.Blueprint{
			Components:  g.components,
			Connections: g.connections,
			Metadata: map[string]interface{}{
				"generated_by": generatedBy,
				"prompt":       prompt,
			},
		},
		Stats: Stats{
			Functions:   len(g.components),
			Connections: len(g.connections),
		},
	}
}

// normalizeDraft merges a capability-produced draft into the blueprint
// schema, deduplicating against the base graph by name.
func normalizeDraft(draft *Draft, base *blueprint.Blueprint, prompt string) *Result {
	g := newGraphMerge(base)

	meta := func() map[string]interface{} {
		return map[string]interface{}{
			"generated_from": prompt,
			"source":         GeneratedByAIModel,
		}
	}

	for _, comp := range draft.Components {
		name := comp.Name
		if name == "" {
			name = comp.ID
		}
		if name == "" {
			continue
		}
		idHint := comp.ID
		if idHint == "" {
			idHint = "gen-" + name
		}
		g.ensure(name, comp.Type, idHint, meta())
	}

	for _, conn := range draft.Connections {
		fromID := resolveEndpoint(g, conn.FromName, conn.From, prompt, meta)
		toID := resolveEndpoint(g, conn.ToName, conn.To, prompt, meta)
		if fromID == "" || toID == "" {
			continue
		}
		g.addEdge(fromID, toID)
	}

	return g.result(GeneratedByAIModel, prompt)
}

// resolveEndpoint turns a draft connection endpoint into a component id.
// Names go through ensure (so edges can introduce new nodes); raw ids have
// any trailing "-<port>" suffix stripped.
func resolveEndpoint(g *graphMerge, name, id, prompt string, meta func() map[string]interface{}) string {
	if name != "" {
		return g.ensure(name, blueprint.TypeFunction, "gen-"+name, meta())
	}
	if idx := strings.LastIndex(id, "-"); idx > 0 {
		return id[:idx]
	}
	return id
}
