package codemap

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
	"github.com/blueprinthq/blueprintd/internal/config"
	"github.com/blueprinthq/blueprintd/internal/gitmeta"
)

// Generation path tags recorded in blueprint metadata
const (
	GeneratedByCodeMap      = "code_map_service"
	GeneratedByAIModel      = "ai_model"
	GeneratedByPromptMapper = "prompt_mapper"
)

var idSanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// sanitizeID makes a DOM-safe id by replacing every run of characters
// outside [A-Za-z0-9_-] with a single hyphen.
func sanitizeID(raw string) string {
	return idSanitizePattern.ReplaceAllString(raw, "-")
}

// Mapper builds blueprint graphs from a sandboxed codebase root and from
// natural-language prompts. A Mapper holds no per-request state; concurrent
// calls are safe.
type Mapper struct {
	root        string
	maxFiles    int
	excludeDirs []string
	drafts      DraftGenerator // optional text-completion capability
}

// New creates a mapper rooted at root. drafts may be nil, in which case
// prompt generation always uses the heuristic template path.
func New(root string, maxFiles int, excludeDirs []string, drafts DraftGenerator) (*Mapper, error) {
	probe, err := NewScanner(root, maxFiles, excludeDirs)
	if err != nil {
		return nil, fmt.Errorf("invalid codebase root: %w", err)
	}
	if len(excludeDirs) == 0 {
		excludeDirs = config.DefaultExcludeDirs
	}
	return &Mapper{
		root:        probe.Root(),
		maxFiles:    maxFiles,
		excludeDirs: excludeDirs,
		drafts:      drafts,
	}, nil
}

// scanSettings resolves per-scan limits from the project file and the
// request, falling back to server configuration.
func (m *Mapper) scanSettings(requestMaxFiles int) (maxFiles int, excludeDirs []string, eventSuffix string) {
	maxFiles = m.maxFiles
	excludeDirs = m.excludeDirs
	eventSuffix = "on"

	project, err := config.LoadProjectConfig(m.root)
	if err != nil {
		log.Warn().Err(err).Str("root", m.root).Msg("ignoring malformed project file")
		return maxFiles, excludeDirs, eventSuffix
	}
	if project.MaxFiles > 0 {
		maxFiles = project.MaxFiles
	}
	if len(project.ExcludeDirs) > 0 {
		excludeDirs = project.ExcludeDirs
	}
	if project.EventDecoratorSuffix != "" {
		eventSuffix = project.EventDecoratorSuffix
	}
	if requestMaxFiles > 0 {
		maxFiles = requestMaxFiles
	}
	return maxFiles, excludeDirs, eventSuffix
}

// MapCodebase builds a blueprint from the Python files under subpath.
// Request-level failures (path escape) are returned as errors; individual
// files that fail to parse are skipped.
func (m *Mapper) MapCodebase(ctx context.Context, subpath string, requestMaxFiles int) (*Result, error) {
	maxFiles, excludeDirs, eventSuffix := m.scanSettings(requestMaxFiles)

	scanner, err := NewScanner(m.root, maxFiles, excludeDirs)
	if err != nil {
		return nil, err
	}
	dir, err := scanner.Resolve(subpath)
	if err != nil {
		return nil, err
	}

	files, err := scanner.ListFiles(dir)
	if err != nil {
		return nil, err
	}

	extractor := NewExtractor(eventSuffix)
	var defs []*Definition
	for _, file := range files {
		fileDefs, err := extractor.ExtractFile(ctx, file, scanner.ModulePath(file))
		if err != nil {
			log.Debug().Err(err).Str("file", file).Msg("skipping unparsable file")
			continue
		}
		defs = append(defs, fileDefs...)
	}

	components := make([]blueprint.Component, 0, len(defs))
	for _, def := range defs {
		def.ID = sanitizeID(def.ID)

		label := def.Module + "."
		if def.ClassName != "" {
			label += def.ClassName + "."
		}
		label += def.Name

		components = append(components, blueprint.Component{
			ID:      def.ID,
			Type:    blueprint.TypeFunction,
			Name:    label,
			Width:   blueprint.DefaultWidth,
			Height:  blueprint.DefaultHeight,
			Inputs:  blueprint.DefaultInputs(),
			Outputs: blueprint.DefaultOutputs(),
			Metadata: map[string]interface{}{
				"module": def.Module,
				"file":   def.File,
				"class":  def.ClassName,
			},
		})
	}

	connections := m.resolveConnections(defs, defs)
	assignLayout(components)

	metadata := map[string]interface{}{
		"generated_by": GeneratedByCodeMap,
		"root":         dir,
		"file_count":   len(files),
	}
	if sha := gitmeta.HeadSHA(m.root); sha != "" {
		metadata["commit"] = sha
	}

	log.Info().
		Str("path", dir).
		Int("files", len(files)).
		Int("functions", len(defs)).
		Int("connections", len(connections)).
		Msg("mapped codebase")

	return &Result{
		Blueprint: blueprint.Blueprint{
			Components:  components,
			Connections: connections,
			Metadata:    metadata,
		},
		Stats: Stats{
			FilesScanned: len(files),
			Functions:    len(defs),
			Connections:  len(connections),
		},
	}, nil
}

// MapFile builds a blueprint from a single Python file, including event
// nodes for any event-subscription decorators found.
func (m *Mapper) MapFile(ctx context.Context, subpath string) (*Result, error) {
	_, _, eventSuffix := m.scanSettings(0)

	scanner, err := NewScanner(m.root, m.maxFiles, m.excludeDirs)
	if err != nil {
		return nil, err
	}
	file, err := scanner.Resolve(subpath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, subpath)
	}

	module := scanner.ModulePath(file)
	extractor := NewExtractor(eventSuffix)
	defs, err := extractor.ExtractFile(ctx, file, module)
	if err != nil {
		log.Debug().Err(err).Str("file", file).Msg("file failed to parse")
		defs = nil
	}

	var components []blueprint.Component

	// Event nodes first, one per distinct event name, in encounter order
	eventIDs := make(map[string]string)
	for _, def := range defs {
		for _, ev := range def.EventNames {
			if _, ok := eventIDs[ev]; ok {
				continue
			}
			rawID := module + "-event-" + ev
			evID := sanitizeID(rawID)
			eventIDs[ev] = evID
			components = append(components, blueprint.Component{
				ID:      evID,
				Type:    blueprint.TypeModule,
				Name:    "event: " + ev,
				Width:   200,
				Height:  100,
				Inputs:  []blueprint.Port{},
				Outputs: []blueprint.Port{{ID: "out", Name: "emit", Type: "any"}},
				Metadata: map[string]interface{}{
					"event":       ev,
					"file":        file,
					"original_id": rawID,
				},
			})
		}
	}

	for _, def := range defs {
		def.ID = sanitizeID(def.ID)

		label := ""
		if def.ClassName != "" {
			label = def.ClassName + "."
		}
		label += def.Name + "()"

		components = append(components, blueprint.Component{
			ID:      def.ID,
			Type:    blueprint.TypeFunction,
			Name:    label,
			Width:   blueprint.DefaultWidth,
			Height:  blueprint.DefaultHeight,
			Inputs:  blueprint.DefaultInputs(),
			Outputs: blueprint.DefaultOutputs(),
			Metadata: map[string]interface{}{
				"module": def.Module,
				"file":   file,
				"class":  def.ClassName,
				"events": def.EventNames,
			},
		})
	}

	var connections []blueprint.Connection
	for _, def := range defs {
		for _, ev := range def.EventNames {
			if evID, ok := eventIDs[ev]; ok {
				connections = append(connections, blueprint.Connection{
					From: evID + "-out",
					To:   def.ID + "-in",
				})
			}
		}
	}
	connections = append(connections, m.resolveConnections(defs, defs)...)

	assignLayout(components)

	return &Result{
		Blueprint: blueprint.Blueprint{
			Components:  components,
			Connections: connections,
			Metadata: map[string]interface{}{
				"generated_by": GeneratedByCodeMap,
				"file":         file,
				"module":       module,
			},
		},
		Stats: Stats{
			FilesScanned: 1,
			Functions:    len(defs),
			Connections:  len(connections),
		},
	}, nil
}

// resolveConnections emits one edge per resolved call site, in definition
// order. Unresolved calls contribute nothing.
func (m *Mapper) resolveConnections(callers, universe []*Definition) []blueprint.Connection {
	resolver := NewResolver(universe)

	var connections []blueprint.Connection
	for _, def := range callers {
		for _, call := range def.Calls {
			target := resolver.Resolve(def, call)
			if target == nil {
				continue
			}
			connections = append(connections, blueprint.Connection{
				From: def.ID + "-out",
				To:   target.ID + "-in",
			})
		}
	}
	return connections
}

// GenerateFromPrompt produces a blueprint from a natural-language prompt.
// The capability draft path is tried first when available; any capability
// failure falls back to the keyword template library.
func (m *Mapper) GenerateFromPrompt(ctx context.Context, prompt string, base *blueprint.Blueprint) (*Result, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if m.drafts != nil {
		draft, err := m.drafts.GenerateDraft(ctx, prompt, base)
		if err == nil {
			return normalizeDraft(draft, base, prompt), nil
		}
		log.Warn().Err(err).Msg("draft generation failed, using template fallback")
	}

	return generateFromTemplates(prompt, base), nil
}
