package codemap

import "errors"

var (
	// ErrPathEscape indicates a requested subpath resolved outside the
	// sandboxed codebase root
	ErrPathEscape = errors.New("requested path is outside the allowed codebase root")

	// ErrNotFound indicates a requested file does not exist
	ErrNotFound = errors.New("file not found")

	// ErrEmptyPrompt indicates a generation request carried no prompt text
	ErrEmptyPrompt = errors.New("prompt is required")
)
