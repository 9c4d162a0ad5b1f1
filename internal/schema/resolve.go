package schema

import (
	"sort"

	"github.com/lucas-arr/leadgate/internal/models"
)

// Resolution partitions the top-level keys of one payload. Known and
// Unknown never overlap, and together (plus any excluded keys) they cover
// every key exactly once.
type Resolution struct {
	// Known maps field name to its coerced value.
	Known map[string]Value
	// Unknown holds names with no definition, or whose value failed
	// coercion. Sorted, so resolutions of the same payload compare equal.
	Unknown []string
}

// KnownData converts the known mapping to plain Go values for persistence.
func (r Resolution) KnownData() map[string]any {
	data := make(map[string]any, len(r.Known))
	for name, v := range r.Known {
		data[name] = v.Interface()
	}
	return data
}

// DefinitionIndex keys a definition list by field name (exact,
// case-sensitive — "Email" and "email" are distinct slots).
func DefinitionIndex(defs []models.FieldDefinition) map[string]models.FieldDefinition {
	index := make(map[string]models.FieldDefinition, len(defs))
	for _, def := range defs {
		index[def.FieldName] = def
	}
	return index
}

// Resolve classifies each top-level payload key against the account's
// current definitions. A key with a matching definition is coerced: on
// success it is known, on failure it is demoted to unknown — one bad
// field never blocks the rest of the payload. Keys without a definition
// are unknown. Keys in excluded are skipped entirely.
//
// Keys are independent; an empty payload resolves to an empty result and
// is not an error (upstream systems send empty heartbeats).
func Resolve(defs map[string]models.FieldDefinition, payload map[string]any, excluded map[string]struct{}) Resolution {
	res := Resolution{
		Known:   make(map[string]Value, len(payload)),
		Unknown: make([]string, 0),
	}

	for key, raw := range payload {
		if _, skip := excluded[key]; skip {
			continue
		}
		def, ok := defs[key]
		if !ok {
			res.Unknown = append(res.Unknown, key)
			continue
		}
		value, err := Coerce(raw, def.DataType)
		if err != nil {
			res.Unknown = append(res.Unknown, key)
			continue
		}
		res.Known[key] = value
	}

	sort.Strings(res.Unknown)
	return res
}
