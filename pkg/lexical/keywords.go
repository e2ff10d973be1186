package lexical

// reservedWords holds the fixed keyword set excluded from usage
// matching. Covers JavaScript reserved words, literals, and the
// contextual TypeScript keywords that appear in declaration position.
var reservedWords = map[string]bool{
	// Statements and declarations
	"break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "let": true, "new": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true,
	"throw": true, "try": true, "typeof": true, "var": true,
	"void": true, "while": true, "with": true, "yield": true,
	// Literals
	"true": true, "false": true, "null": true, "undefined": true,
	// Future-reserved and module syntax
	"implements": true, "interface": true, "package": true,
	"private": true, "protected": true, "public": true,
	"as": true, "from": true, "of": true,
	// Contextual TypeScript keywords
	"type": true, "namespace": true, "declare": true, "readonly": true,
	"abstract": true, "async": true, "await": true, "get": true,
	"set": true, "keyof": true, "infer": true, "is": true,
}
