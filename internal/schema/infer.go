package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lucas-arr/leadgate/internal/models"
)

// Phone-looking string: optional +, a digit, then 6+ of digits, spaces,
// dashes or parens.
var phoneRe = regexp.MustCompile(`^\+?\d[\d\s\-()]{6,}$`)

// Field names that mark a string as plausibly a phone number. Without the
// name hint a datetime-looking or id-looking digit string would be
// misclassified, so phone inference requires both shape and name.
var phoneNameHints = []string{"phone", "tel", "mobile", "cell", "fax"}

// InferType picks the declared type for a new field from its first sample
// value. Precedence is most-specific first:
//
//	boolean → number → email → datetime → phone (name-hinted) → string
//
// The order matters: numeric strings must not be read as emails, and
// datetime-shaped strings must win over the permissive phone pattern.
// String always matches, so inference never fails.
func InferType(name string, value any) models.FieldType {
	switch v := value.(type) {
	case bool:
		return models.FieldTypeBoolean
	case float64:
		return models.FieldTypeNumber
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return models.FieldTypeString
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return models.FieldTypeNumber
		}
		if emailRe.MatchString(s) {
			return models.FieldTypeEmail
		}
		if isDatetime(s) {
			return models.FieldTypeDatetime
		}
		if phoneRe.MatchString(s) && nameHintsPhone(name) {
			return models.FieldTypePhone
		}
	}
	return models.FieldTypeString
}

func isDatetime(s string) bool {
	if _, err := Coerce(s, models.FieldTypeDatetime); err != nil {
		return false
	}
	return true
}

func nameHintsPhone(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range phoneNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
