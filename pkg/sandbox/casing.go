package sandbox

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// Case conversions offered to author code. Word boundaries follow strcase:
// separators, case changes and digits.

func words(s string) []string {
	return strings.Fields(strcase.ToDelimited(s, ' '))
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

// CamelCase: "my template" -> "myTemplate"
func CamelCase(s string) string { return strcase.ToLowerCamel(s) }

// PascalCase: "my template" -> "MyTemplate"
func PascalCase(s string) string { return strcase.ToCamel(s) }

// SnakeCase: "MyTemplate" -> "my_template"
func SnakeCase(s string) string { return strcase.ToSnake(s) }

// KebabCase: "MyTemplate" -> "my-template"
func KebabCase(s string) string { return strcase.ToKebab(s) }

// ConstantCase: "myTemplate" -> "MY_TEMPLATE"
func ConstantCase(s string) string { return strcase.ToScreamingSnake(s) }

// DotCase: "My Template" -> "my.template"
func DotCase(s string) string { return strcase.ToDelimited(s, '.') }

// PathCase: "myTemplate" -> "my/template"
func PathCase(s string) string { return strcase.ToDelimited(s, '/') }

// NoCase splits into lower-case words: "my-template" -> "my template"
func NoCase(s string) string { return strings.Join(words(s), " ") }

// SentenceCase upper-cases the first word only: "my-template" -> "My template"
func SentenceCase(s string) string {
	w := words(s)
	if len(w) == 0 {
		return ""
	}
	w[0] = capitalize(w[0])
	return strings.Join(w, " ")
}

// CapitalCase upper-cases every word: "my-template" -> "My Template"
func CapitalCase(s string) string {
	w := words(s)
	for i := range w {
		w[i] = capitalize(w[i])
	}
	return strings.Join(w, " ")
}

// HeaderCase joins capitalised words with dashes: "content type" -> "Content-Type"
func HeaderCase(s string) string {
	return strings.ReplaceAll(CapitalCase(s), " ", "-")
}

var caseHelpers = map[string]func(string) string{
	"camelCase":    CamelCase,
	"pascalCase":   PascalCase,
	"snakeCase":    SnakeCase,
	"kebabCase":    KebabCase,
	"paramCase":    KebabCase,
	"constantCase": ConstantCase,
	"dotCase":      DotCase,
	"pathCase":     PathCase,
	"noCase":       NoCase,
	"sentenceCase": SentenceCase,
	"capitalCase":  CapitalCase,
	"headerCase":   HeaderCase,
}
