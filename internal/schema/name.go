package schema

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/xushengj/bundlekit/internal/diag"
)

// illegalNameChars is the punctuation set forbidden in schema names,
// per spec.md §3/§4.2.
const illegalNameChars = `.[]()<>\/+=*~'"` + "`" + `,?@#$%^&|:;`

// ValidateName checks a candidate name against the engine's name-legality
// rules: non-empty, printable, free of whitespace/control characters and
// the illegal punctuation set, and not a pure integer literal. On
// failure it emits the matching diagnostic and returns false.
func ValidateName(d diag.Sink, name string) bool {
	if name == "" {
		d.Diagnostic(diag.Err_Schema_BadName_Empty)
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(illegalNameChars, r) || !unicode.IsPrint(r) {
			d.Diagnostic(diag.Err_Schema_BadName_IllegalChar, diag.StringParam(string(r)))
			return false
		}
	}
	if _, err := strconv.ParseInt(name, 10, 64); err == nil {
		d.Diagnostic(diag.Err_Schema_BadName_PureNumber, diag.StringParam(name))
		return false
	}
	return true
}
