package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lucas-arr/leadgate/internal/models"
)

// Conservative local@domain shape. Upstream CRM data is too messy for
// RFC 5322 validation; this catches the obvious non-emails only.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Accepted datetime layouts, tried in order. CRMs send RFC 3339, but also
// offset-less timestamps, space-separated ones, and bare dates.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CoercionError reports that a single value does not match its declared
// type. It never fails an ingest call: the resolver demotes the field to
// unknown and moves on.
type CoercionError struct {
	Field        string
	DeclaredType models.FieldType
	RawValue     any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("field %q: value %v does not coerce to %s",
		e.Field, e.RawValue, e.DeclaredType)
}

// Coerce validates one raw payload value against a declared type and
// returns its typed form.
//
// Lenient by policy: JSON null passes through as null under every type
// (present-but-null must not demote a field), and an empty email string —
// a present-but-blank value, common from webhook forms — is treated as
// null rather than a failure. Objects and arrays never coerce; only
// scalars have typed slots.
func Coerce(value any, declared models.FieldType) (Value, error) {
	if value == nil {
		return NullValue(), nil
	}

	fail := func() (Value, error) {
		return Value{}, &CoercionError{DeclaredType: declared, RawValue: value}
	}

	switch declared {
	case models.FieldTypeString:
		switch v := value.(type) {
		case string:
			return StringValue(v), nil
		case float64:
			return StringValue(strconv.FormatFloat(v, 'f', -1, 64)), nil
		case bool:
			return StringValue(strconv.FormatBool(v)), nil
		}
		return fail()

	case models.FieldTypeNumber:
		switch v := value.(type) {
		case float64:
			return NumberValue(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fail()
			}
			return NumberValue(f), nil
		}
		return fail()

	case models.FieldTypeBoolean:
		switch v := value.(type) {
		case bool:
			return BoolValue(v), nil
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true":
				return BoolValue(true), nil
			case "false":
				return BoolValue(false), nil
			}
		}
		return fail()

	case models.FieldTypeDatetime:
		s, ok := value.(string)
		if !ok {
			return fail()
		}
		s = strings.TrimSpace(s)
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return TimeValue(t), nil
			}
		}
		return fail()

	case models.FieldTypeEmail:
		s, ok := value.(string)
		if !ok {
			return fail()
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return NullValue(), nil
		}
		if !emailRe.MatchString(s) {
			return fail()
		}
		return StringValue(s), nil

	case models.FieldTypePhone:
		// No E.164 enforcement — upstream phone data is inconsistent.
		// Strip whitespace and pass through.
		s, ok := value.(string)
		if !ok {
			return fail()
		}
		s = strings.Join(strings.Fields(s), "")
		if s == "" {
			return NullValue(), nil
		}
		return StringValue(s), nil
	}

	return fail()
}
