package runtime

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// extToLanguage maps file extensions to canonical language names.
var extToLanguage = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".py":   "python",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".java": "java",
	".php":  "php",
	".rb":   "ruby",
}

// langToGrammar maps language names to tree-sitter Language objects.
// Lazily initialized on first call via sync.Once.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"go":         golang.GetLanguage(),
			"typescript": ts.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"python":     python.GetLanguage(),
			"rust":       rust.GetLanguage(),
			"c":          c.GetLanguage(),
			"cpp":        cpp.GetLanguage(),
			"java":       java.GetLanguage(),
			"php":        php.GetLanguage(),
			"ruby":       ruby.GetLanguage(),
		}
	})
}

// LanguageForFile returns the canonical language name for a file path based
// on its extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extToLanguage[ext]
	return lang, ok
}

// ParserForLanguage returns the tree-sitter Language for a canonical language
// name. Returns (nil, false) if the language is not supported.
func ParserForLanguage(lang string) (*sitter.Language, bool) {
	initGrammars()
	l, ok := langToGrammar[lang]
	return l, ok
}

// Languages returns the supported language names, sorted.
func Languages() []string {
	out := make([]string, 0, len(captureQueries))
	for lang := range captureQueries {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// ExtensionsFor returns the sorted file extensions mapped to lang.
func ExtensionsFor(lang string) []string {
	var out []string
	for ext, l := range extToLanguage {
		if l == lang {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// CaptureQuery returns the capture query for a language.
//
// Each pattern tags the construct node with its kind (@contract, @function,
// @state_variable, @local_variable, or @variable when the kind depends on
// the enclosing construct) and its name node with @name. Variables are
// captured on their identifier so that several names declared together
// stay siblings.
func CaptureQuery(lang string) (string, bool) {
	q, ok := captureQueries[lang]
	return q, ok
}

var captureQueries = map[string]string{
	"go": `
(type_spec name: (type_identifier) @name) @contract
(type_alias name: (type_identifier) @name) @contract
(function_declaration name: (identifier) @name) @function
(method_declaration name: (field_identifier) @name) @function
(func_literal) @function
(field_declaration name: (field_identifier) @state_variable @name)
(var_spec name: (identifier) @local_variable @name)
(const_spec name: (identifier) @local_variable @name)
(short_var_declaration left: (expression_list (identifier) @local_variable @name))
`,
	"python": `
(class_definition name: (identifier) @name) @contract
(function_definition name: (identifier) @name) @function
(lambda) @function
(assignment left: (identifier) @variable @name)
`,
	"java": `
(class_declaration name: (identifier) @name) @contract
(interface_declaration name: (identifier) @name) @contract
(enum_declaration name: (identifier) @name) @contract
(method_declaration name: (identifier) @name) @function
(constructor_declaration name: (identifier) @name) @function
(lambda_expression) @function
(field_declaration declarator: (variable_declarator name: (identifier) @state_variable @name))
(local_variable_declaration declarator: (variable_declarator name: (identifier) @local_variable @name))
`,
	"javascript": `
(class_declaration name: (identifier) @name) @contract
(function_declaration name: (identifier) @name) @function
(method_definition name: (property_identifier) @name) @function
(arrow_function) @function
(field_definition property: (property_identifier) @state_variable @name)
(variable_declarator name: (identifier) @variable @name)
`,
	"typescript": `
(class_declaration name: (type_identifier) @name) @contract
(interface_declaration name: (type_identifier) @name) @contract
(function_declaration name: (identifier) @name) @function
(method_definition name: (property_identifier) @name) @function
(arrow_function) @function
(public_field_definition name: (property_identifier) @state_variable @name)
(variable_declarator name: (identifier) @variable @name)
`,
	"rust": `
(struct_item name: (type_identifier) @name) @contract
(enum_item name: (type_identifier) @name) @contract
(trait_item name: (type_identifier) @name) @contract
(impl_item type: (type_identifier) @name) @contract
(function_item name: (identifier) @name) @function
(closure_expression) @function
(field_declaration name: (field_identifier) @state_variable @name)
(let_declaration pattern: (identifier) @local_variable @name)
`,
	"c": `
(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @contract
(function_definition declarator: (function_declarator declarator: (identifier) @name)) @function
(field_declaration declarator: (field_identifier) @state_variable @name)
(declaration declarator: (identifier) @local_variable @name)
(declaration declarator: (init_declarator declarator: (identifier) @local_variable @name))
`,
	"cpp": `
(class_specifier name: (type_identifier) @name body: (field_declaration_list)) @contract
(struct_specifier name: (type_identifier) @name body: (field_declaration_list)) @contract
(function_definition declarator: (function_declarator declarator: (identifier) @name)) @function
(function_definition declarator: (function_declarator declarator: (field_identifier) @name)) @function
(lambda_expression) @function
(field_declaration declarator: (field_identifier) @state_variable @name)
(declaration declarator: (identifier) @local_variable @name)
(declaration declarator: (init_declarator declarator: (identifier) @local_variable @name))
`,
	"php": `
(class_declaration name: (name) @name) @contract
(interface_declaration name: (name) @name) @contract
(function_definition name: (name) @name) @function
(method_declaration name: (name) @name) @function
(property_element (variable_name (name) @state_variable @name))
(assignment_expression left: (variable_name (name) @local_variable @name))
`,
	"ruby": `
(class name: (constant) @name) @contract
(module name: (constant) @name) @contract
(method name: (identifier) @name) @function
(singleton_method name: (identifier) @name) @function
(assignment left: (instance_variable) @state_variable @name)
(assignment left: (identifier) @local_variable @name)
`,
}
