package codemap

import (
	"strings"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

// nodeSpec names a template node and its component type
type nodeSpec struct {
	name string
	kind string
}

// edgeSpec names a directed template edge by node name
type edgeSpec struct {
	from string
	to   string
}

// graphTemplate is a keyword-triggered starting graph for prompt generation
type graphTemplate struct {
	keywords []string
	nodes    []nodeSpec
	edges    []edgeSpec
}

// augmentRule appends a subgraph when any of its keywords appears in the
// prompt. Rules run in declaration order after template selection.
type augmentRule struct {
	keywords []string
	nodes    []nodeSpec
	edges    []edgeSpec
}

// promptTemplates are evaluated in order; the first keyword hit wins
var promptTemplates = []graphTemplate{
	{
		keywords: []string{"arduino", "microcontroller", "stepper", "laser", "sensor", "keyboard", "keys"},
		nodes: []nodeSpec{
			{"Computer Input (WASD)", blueprint.TypeModule},
			{"Serial Link", blueprint.TypeModule},
			{"Arduino / MCU", blueprint.TypeModule},
			{"Motor Driver", blueprint.TypeModule},
			{"Stepper Motors", blueprint.TypeModule},
			{"Laser Module", blueprint.TypeModule},
			{"Sensors / Limits", blueprint.TypeModule},
			{"Control Loop", blueprint.TypeFunction},
			{"Telemetry", blueprint.TypeFunction},
		},
		edges: []edgeSpec{
			{"Computer Input (WASD)", "Serial Link"},
			{"Serial Link", "Arduino / MCU"},
			{"Arduino / MCU", "Control Loop"},
			{"Control Loop", "Motor Driver"},
			{"Motor Driver", "Stepper Motors"},
			{"Control Loop", "Laser Module"},
			{"Sensors / Limits", "Control Loop"},
			{"Control Loop", "Telemetry"},
			{"Telemetry", "Computer Input (WASD)"},
		},
	},
	{
		keywords: []string{"ecommerce", "shop", "product", "order", "cart", "checkout"},
		nodes: []nodeSpec{
			{"Clients", blueprint.TypeModule},
			{"API Gateway", blueprint.TypeModule},
			{"Auth Service", blueprint.TypeFunction},
			{"Product Service", blueprint.TypeFunction},
			{"Order Service", blueprint.TypeFunction},
			{"Payment Service", blueprint.TypeFunction},
			{"Inventory Service", blueprint.TypeFunction},
			{"Search Service", blueprint.TypeFunction},
			{"Message Queue", blueprint.TypeModule},
			{"Cache", blueprint.TypeModule},
			{"Database", blueprint.TypeModule},
			{"Object Storage", blueprint.TypeModule},
		},
		edges: []edgeSpec{
			{"Clients", "API Gateway"},
			{"API Gateway", "Auth Service"},
			{"API Gateway", "Product Service"},
			{"API Gateway", "Order Service"},
			{"API Gateway", "Search Service"},
			{"Order Service", "Payment Service"},
			{"Order Service", "Message Queue"},
			{"Payment Service", "Message Queue"},
			{"Inventory Service", "Message Queue"},
			{"Message Queue", "Inventory Service"},
			{"Product Service", "Cache"},
			{"Product Service", "Database"},
			{"Order Service", "Database"},
			{"Inventory Service", "Database"},
			{"Search Service", "Object Storage"},
			{"Product Service", "Object Storage"},
		},
	},
	{
		keywords: []string{"analytics", "warehouse", "pipeline", "etl", "stream"},
		nodes: []nodeSpec{
			{"Ingestion", blueprint.TypeFunction},
			{"Stream Processor", blueprint.TypeFunction},
			{"Data Lake", blueprint.TypeModule},
			{"Warehouse", blueprint.TypeModule},
			{"Dashboard", blueprint.TypeModule},
			{"ML Service", blueprint.TypeFunction},
		},
		edges: []edgeSpec{
			{"Ingestion", "Stream Processor"},
			{"Stream Processor", "Data Lake"},
			{"Stream Processor", "Warehouse"},
			{"Warehouse", "Dashboard"},
			{"Data Lake", "ML Service"},
			{"ML Service", "Warehouse"},
		},
	},
}

// genericTemplate is the fallback when no keyword set matches
var genericTemplate = graphTemplate{
	nodes: []nodeSpec{
		{"Client", blueprint.TypeModule},
		{"API", blueprint.TypeModule},
		{"Service A", blueprint.TypeFunction},
		{"Service B", blueprint.TypeFunction},
		{"Database", blueprint.TypeModule},
	},
	edges: []edgeSpec{
		{"Client", "API"},
		{"API", "Service A"},
		{"API", "Service B"},
		{"Service A", "Database"},
		{"Service B", "Database"},
	},
}

// augmentRules run in order after template selection
var augmentRules = []augmentRule{
	{
		keywords: []string{"web", "dashboard", "ui", "interface"},
		nodes: []nodeSpec{
			{"Web Interface", blueprint.TypeModule},
			{"API", blueprint.TypeModule},
		},
		edges: []edgeSpec{
			{"Web Interface", "API"},
			{"API", "Telemetry"},
		},
	},
	{
		keywords: []string{"payment", "billing", "stripe", "pay"},
		nodes: []nodeSpec{
			{"Payment Gateway", blueprint.TypeModule},
			{"Billing Service", blueprint.TypeFunction},
			{"Database", blueprint.TypeModule},
		},
		edges: []edgeSpec{
			{"API", "Payment Gateway"},
			{"Payment Gateway", "Billing Service"},
			{"Billing Service", "Database"},
		},
	},
	{
		keywords: []string{"motor", "axis", "stepper"},
		nodes: []nodeSpec{
			{"Motor Driver 2", blueprint.TypeModule},
			{"Stepper Motors 2", blueprint.TypeModule},
			{"Control Loop", blueprint.TypeFunction},
		},
		edges: []edgeSpec{
			{"Control Loop", "Motor Driver 2"},
			{"Motor Driver 2", "Stepper Motors 2"},
		},
	},
	{
		keywords: []string{"sensor", "limit", "feedback"},
		nodes: []nodeSpec{
			{"Sensor Array", blueprint.TypeModule},
			{"Control Loop", blueprint.TypeFunction},
		},
		edges: []edgeSpec{
			{"Sensor Array", "Control Loop"},
		},
	},
	{
		keywords: []string{"laser"},
		nodes: []nodeSpec{
			{"Laser Module", blueprint.TypeModule},
			{"Control Loop", blueprint.TypeFunction},
		},
		edges: []edgeSpec{
			{"Control Loop", "Laser Module"},
		},
	},
}

func containsAny(prompt string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(prompt, k) {
			return true
		}
	}
	return false
}

// selectTemplate picks the first template whose keywords appear in the
// (lowercased) prompt, falling back to the generic graph.
func selectTemplate(prompt string) graphTemplate {
	for _, tmpl := range promptTemplates {
		if containsAny(prompt, tmpl.keywords) {
			return tmpl
		}
	}
	return genericTemplate
}

// generateFromTemplates builds a blueprint from the keyword template library,
// merged over the optional base graph.
func generateFromTemplates(prompt string, base *blueprint.Blueprint) *Result {
	lower := strings.ToLower(prompt)
	tmpl := selectTemplate(lower)

	g := newGraphMerge(base)
	meta := func() map[string]interface{} {
		return map[string]interface{}{"generated_from": prompt}
	}

	for _, node := range tmpl.nodes {
		g.ensure(node.name, node.kind, "gen-"+node.name, meta())
	}

	edges := make([]edgeSpec, 0, len(tmpl.edges))
	edges = append(edges, tmpl.edges...)

	for _, rule := range augmentRules {
		if !containsAny(lower, rule.keywords) {
			continue
		}
		for _, node := range rule.nodes {
			g.ensure(node.name, node.kind, "gen-"+node.name, meta())
		}
		edges = append(edges, rule.edges...)
	}

	for _, edge := range edges {
		fromID := g.ensure(edge.from, blueprint.TypeFunction, "gen-"+edge.from, meta())
		toID := g.ensure(edge.to, blueprint.TypeFunction, "gen-"+edge.to, meta())
		g.addEdge(fromID, toID)
	}

	return g.result(GeneratedByPromptMapper, prompt)
}
