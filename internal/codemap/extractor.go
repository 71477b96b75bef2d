package codemap

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Extractor parses Python source files and extracts function and method
// definitions together with the call sites their bodies contain.
type Extractor struct {
	parser      *sitter.Parser
	eventSuffix string // matched case-insensitively against decorator callee names
}

// NewExtractor creates an extractor. eventSuffix configures event-decorator
// detection; "on" matches socketio.on("...") style decorators.
func NewExtractor(eventSuffix string) *Extractor {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	if eventSuffix == "" {
		eventSuffix = "on"
	}

	return &Extractor{
		parser:      parser,
		eventSuffix: strings.ToLower(eventSuffix),
	}
}

// ExtractFile parses one file and returns the definitions it contains.
// Callers treat errors as non-fatal: a file that cannot be read or parsed
// contributes zero definitions.
func (e *Extractor) ExtractFile(ctx context.Context, path, module string) ([]*Definition, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return e.ExtractSource(ctx, source, path, module)
}

// ExtractSource parses raw source content
func (e *Extractor) ExtractSource(ctx context.Context, source []byte, path, module string) ([]*Definition, error) {
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return nil, fmt.Errorf("syntax error in %s", path)
	}

	st := &traversal{module: module, file: path}
	e.walk(tree.RootNode(), source, st)
	return st.defs, nil
}

// traversal carries the enclosing-class and enclosing-definition frames
// threaded through the recursive walk. No state is shared across calls.
type traversal struct {
	module string
	file   string

	classStack []string
	defStack   []*Definition
	defs       []*Definition
}

func (t *traversal) currentClass() string {
	if len(t.classStack) == 0 {
		return ""
	}
	return t.classStack[len(t.classStack)-1]
}

func (t *traversal) currentDef() *Definition {
	if len(t.defStack) == 0 {
		return nil
	}
	return t.defStack[len(t.defStack)-1]
}

func (e *Extractor) walk(node *sitter.Node, source []byte, st *traversal) {
	switch node.Type() {
	case "class_definition":
		name := fieldContent(node, "name", source)
		st.classStack = append(st.classStack, name)
		e.walkChildren(node, source, st)
		st.classStack = st.classStack[:len(st.classStack)-1]
		return

	case "function_definition":
		def := e.newDefinition(node, source, st)
		st.defs = append(st.defs, def)
		st.defStack = append(st.defStack, def)
		e.walkChildren(node, source, st)
		st.defStack = st.defStack[:len(st.defStack)-1]
		return

	case "call":
		if def := st.currentDef(); def != nil {
			if call, ok := classifyCall(node, source); ok {
				def.Calls = append(def.Calls, call)
			}
		}
	}

	e.walkChildren(node, source, st)
}

func (e *Extractor) walkChildren(node *sitter.Node, source []byte, st *traversal) {
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), source, st)
	}
}

// newDefinition builds a Definition for a function_definition node. Nested
// functions are recorded top-level, scoped by the innermost enclosing class.
func (e *Extractor) newDefinition(node *sitter.Node, source []byte, st *traversal) *Definition {
	name := fieldContent(node, "name", source)
	class := st.currentClass()

	rawID := st.module + "-"
	if class != "" {
		rawID += class + "-"
	}
	rawID += name

	return &Definition{
		ID:         rawID,
		Name:       name,
		ClassName:  class,
		Module:     st.module,
		File:       st.file,
		EventNames: e.decoratorEvents(node, source),
	}
}

// decoratorEvents inspects the decorators attached to a definition and
// collects event names from call decorators whose callee name ends in the
// configured suffix and whose first argument is a string literal.
func (e *Extractor) decoratorEvents(node *sitter.Node, source []byte) []string {
	parent := node.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return nil
	}

	var events []string
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		dec := parent.NamedChild(i)
		if dec.Type() != "decorator" {
			continue
		}
		call := namedChildOfType(dec, "call")
		if call == nil {
			continue
		}
		name, ok := calleeName(call.ChildByFieldName("function"), source)
		if !ok || !strings.HasSuffix(strings.ToLower(name), e.eventSuffix) {
			continue
		}
		args := call.ChildByFieldName("arguments")
		if args == nil || args.NamedChildCount() == 0 {
			continue
		}
		if literal, ok := stringLiteral(args.NamedChild(0), source); ok {
			events = append(events, literal)
		}
	}
	return events
}

// classifyCall maps a call node onto the closed CallSite variant. Callee
// shapes other than a bare name or a single-level attribute access are
// discarded.
func classifyCall(node *sitter.Node, source []byte) (CallSite, bool) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return CallSite{}, false
	}

	switch fn.Type() {
	case "identifier":
		return CallSite{Kind: CallName, Name: fn.Content(source)}, true

	case "attribute":
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if obj == nil || attr == nil || obj.Type() != "identifier" {
			return CallSite{}, false
		}
		base := obj.Content(source)
		kind := CallAttr
		if base == "self" {
			kind = CallSelf
		}
		return CallSite{Kind: kind, Name: attr.Content(source), Base: base}, true
	}

	return CallSite{}, false
}

// calleeName returns the bare name of a callee expression: the identifier
// itself, or the attribute name of a single attribute access.
func calleeName(fn *sitter.Node, source []byte) (string, bool) {
	if fn == nil {
		return "", false
	}
	switch fn.Type() {
	case "identifier":
		return fn.Content(source), true
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(source), true
		}
	}
	return "", false
}

// stringLiteral extracts the value of a Python string literal node
func stringLiteral(node *sitter.Node, source []byte) (string, bool) {
	if node == nil || node.Type() != "string" {
		return "", false
	}
	s := node.Content(source)
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)], true
		}
	}
	return "", false
}

func fieldContent(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(source)
}

func namedChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}
