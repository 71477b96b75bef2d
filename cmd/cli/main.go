package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
	"github.com/blueprinthq/blueprintd/internal/codemap"
	"github.com/blueprinthq/blueprintd/internal/config"
)

var version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:     "blueprintd",
		Short:   "BlueprintBuddy - map codebases into architecture blueprints",
		Long:    `blueprintd turns Python codebases and natural-language prompts into blueprint diagrams.`,
		Version: version,
	}

	rootCmd.AddCommand(mapCmd())
	rootCmd.AddCommand(mapFileCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newMapper builds a mapper rooted at root, with server config as fallback.
// CLI runs never use completion drafts; generation is template-only.
func newMapper(root string, maxFiles int) (*codemap.Mapper, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if root == "" {
		root = cfg.CodebaseRoot
	}
	if maxFiles == 0 {
		maxFiles = cfg.CodemapMaxFiles
	}
	return codemap.New(root, maxFiles, cfg.CodemapExcludeDirs, nil)
}

// writeResult emits the blueprint as JSON to stdout or a file
func writeResult(result *codemap.Result, output string) error {
	data, err := json.MarshalIndent(result.Blueprint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}

	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info().Str("path", output).Msg("blueprint written")
	return nil
}

func mapCmd() *cobra.Command {
	var (
		root     string
		path     string
		maxFiles int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map a Python codebase into a blueprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapper, err := newMapper(root, 0)
			if err != nil {
				return err
			}

			result, err := mapper.MapCodebase(context.Background(), path, maxFiles)
			if err != nil {
				return fmt.Errorf("failed to map codebase: %w", err)
			}

			log.Info().
				Int("files", result.Stats.FilesScanned).
				Int("functions", result.Stats.Functions).
				Int("connections", result.Stats.Connections).
				Msg("codebase mapped")

			return writeResult(result, output)
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "Codebase root (defaults to CODEBASE_ROOT)")
	cmd.Flags().StringVarP(&path, "path", "p", ".", "Directory to map, relative to the root")
	cmd.Flags().IntVarP(&maxFiles, "max-files", "m", 0, "Maximum number of files to scan")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")

	return cmd
}

func mapFileCmd() *cobra.Command {
	var (
		root   string
		file   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "map-file",
		Short: "Map a single Python file, including event subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapper, err := newMapper(root, 0)
			if err != nil {
				return err
			}

			result, err := mapper.MapFile(context.Background(), file)
			if err != nil {
				return fmt.Errorf("failed to map file: %w", err)
			}
			return writeResult(result, output)
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "Codebase root (defaults to CODEBASE_ROOT)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "File to map, relative to the root")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func generateCmd() *cobra.Command {
	var (
		prompt string
		base   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a blueprint from a natural-language prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapper, err := newMapper("", 0)
			if err != nil {
				return err
			}

			var baseBP *blueprint.Blueprint
			if base != "" {
				data, err := os.ReadFile(base)
				if err != nil {
					return fmt.Errorf("failed to read base blueprint: %w", err)
				}
				baseBP = &blueprint.Blueprint{}
				if err := json.Unmarshal(data, baseBP); err != nil {
					return fmt.Errorf("invalid base blueprint: %w", err)
				}
			}

			result, err := mapper.GenerateFromPrompt(context.Background(), prompt, baseBP)
			if err != nil {
				return fmt.Errorf("failed to generate blueprint: %w", err)
			}
			return writeResult(result, output)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "What to generate")
	cmd.Flags().StringVarP(&base, "base", "b", "", "Existing blueprint JSON to extend")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")
	cmd.MarkFlagRequired("prompt")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <blueprint.json>",
		Short: "Validate a blueprint file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read blueprint: %w", err)
			}

			var bp blueprint.Blueprint
			if err := json.Unmarshal(data, &bp); err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}
			if err := bp.Validate(); err != nil {
				return fmt.Errorf("invalid blueprint: %w", err)
			}

			fmt.Printf("OK: %d components, %d connections\n", len(bp.Components), len(bp.Connections))
			return nil
		},
	}
	return cmd
}
