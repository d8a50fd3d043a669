// Package noteprops rewrites named `key: value` property lines in markdown
// note templates.
package noteprops

import (
	"fmt"
	"regexp"
)

// SetProperty replaces the value of a `name: ...` line in text.
//
// The match is line-oriented: everything from `name:` up to the line break is
// rewritten. If the template does not declare the property, text is returned
// unchanged and no line is inserted. Templates must pre-declare every
// property they want populated; callers have to tolerate this.
//
// Calls for distinct properties are order-independent since each one targets
// its own line.
func SetProperty(text, name, value string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(name) + `:.*\n`)
	return re.ReplaceAllString(text, fmt.Sprintf("%s: %s\n", name, value))
}
