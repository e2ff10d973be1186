package lexical

import (
	"path/filepath"
	"strings"
)

// Language represents a tracked source language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangJSX        Language = "jsx"
	LangUnknown    Language = "unknown"
)

func (l Language) String() string { return string(l) }

// DetectLanguage maps a file path to its language by extension.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".jsx":
		return LangJSX
	default:
		return LangUnknown
	}
}

// DefaultExtensions is the tracked-extension set used when the
// configuration does not override it.
func DefaultExtensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx"}
}
