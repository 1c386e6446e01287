package dispatch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TypeName returns the handler type name bound to an action:
// PascalCase(group) + PascalCase(action). Words are split on '-', '_', '.'
// and spaces, so "issue" + "bulk-edit" yields "IssueBulkEdit".
func TypeName(group, action string) string {
	return pascalCase(group) + pascalCase(action)
}

func pascalCase(value string) string {
	words := strings.FieldsFunc(value, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, word := range words {
		b.WriteString(caser.String(word))
	}
	return b.String()
}
