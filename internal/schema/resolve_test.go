package schema_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/schema"
	"github.com/stretchr/testify/require"
)

func defs(fields ...models.FieldDefinition) map[string]models.FieldDefinition {
	return schema.DefinitionIndex(fields)
}

func def(name string, dt models.FieldType) models.FieldDefinition {
	return models.FieldDefinition{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		FieldName: name,
		DataType:  dt,
	}
}

func TestResolvePartitionsKeysExactly(t *testing.T) {
	index := defs(
		def("email", models.FieldTypeEmail),
		def("score", models.FieldTypeNumber),
	)
	payload := map[string]any{
		"email":   "a@b.com",
		"score":   "not-a-number", // defined but fails coercion
		"company": "Acme",         // no definition
	}

	res := schema.Resolve(index, payload, nil)

	// Every key lands in exactly one bucket.
	require.Len(t, res.Known, 1)
	require.Equal(t, "a@b.com", res.Known["email"].Interface())
	require.Equal(t, []string{"company", "score"}, res.Unknown)
	for _, name := range res.Unknown {
		require.NotContains(t, res.Known, name)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	index := defs(
		def("email", models.FieldTypeEmail),
		def("joined", models.FieldTypeDatetime),
	)
	payload := map[string]any{
		"email":  "a@b.com",
		"joined": "2024-01-15",
		"extra":  true,
	}

	first := schema.Resolve(index, payload, nil)
	second := schema.Resolve(index, payload, nil)
	require.Equal(t, first, second)
}

func TestResolveEmptyPayload(t *testing.T) {
	res := schema.Resolve(defs(def("email", models.FieldTypeEmail)), map[string]any{}, nil)
	require.Empty(t, res.Known)
	require.Empty(t, res.Unknown)
	require.NotNil(t, res.Known)
	require.NotNil(t, res.Unknown)
}

func TestResolveFieldNamesAreCaseSensitive(t *testing.T) {
	index := defs(def("email", models.FieldTypeEmail))
	res := schema.Resolve(index, map[string]any{"Email": "a@b.com"}, nil)
	require.Empty(t, res.Known)
	require.Equal(t, []string{"Email"}, res.Unknown)
}

func TestResolveSkipsExcludedKeys(t *testing.T) {
	index := defs(def("email", models.FieldTypeEmail))
	excluded := map[string]struct{}{"BATCH_ID": {}}
	res := schema.Resolve(index, map[string]any{
		"email":    "a@b.com",
		"BATCH_ID": "xyz",
	}, excluded)

	require.Contains(t, res.Known, "email")
	require.NotContains(t, res.Known, "BATCH_ID")
	require.Empty(t, res.Unknown)
}

// A value that coerces successfully comes back as the coerced value, not
// the raw one — the lead stores what validation produced.
func TestResolveKnownDataHoldsCoercedValues(t *testing.T) {
	index := defs(
		def("score", models.FieldTypeNumber),
		def("joined", models.FieldTypeDatetime),
	)
	res := schema.Resolve(index, map[string]any{
		"score":  "7",
		"joined": "2024-01-15 10:30:00",
	}, nil)

	data := res.KnownData()
	require.Equal(t, 7.0, data["score"])
	require.Equal(t, "2024-01-15T10:30:00Z", data["joined"])
}
