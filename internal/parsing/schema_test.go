package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSchemaFieldOrderFollowsFirstAppearance(t *testing.T) {
	docs := []ObjectDoc{
		NewObjectDoc("first_name", "Ada", "last_name", "Lovelace"),
		NewObjectDoc("last_name", "Turing", "first_name", "Alan", "age", "41"),
	}
	schema := InferSchema(docs)
	require.Len(t, schema.Fields, 3)
	assert.Equal(t, "first_name", schema.Fields[0].Name)
	assert.Equal(t, "last_name", schema.Fields[1].Name)
	assert.Equal(t, "age", schema.Fields[2].Name)
}

func TestInferSchemaMissingFieldBecomesNullable(t *testing.T) {
	docs := []ObjectDoc{
		NewObjectDoc("name", "Ada", "age", "41"),
		NewObjectDoc("name", "Alan"),
	}
	schema := InferSchema(docs)
	age := schema.FieldByName("age")
	require.NotNil(t, age)
	assert.True(t, age.Nullable)
	name := schema.FieldByName("name")
	require.NotNil(t, name)
	assert.False(t, name.Nullable)
}

func TestInferSchemaNullableIsMonotoneAcrossLaterExamples(t *testing.T) {
	docs := []ObjectDoc{
		NewObjectDoc("name", "Ada", "age", "41"),
		NewObjectDoc("name", "Alan"),
		NewObjectDoc("name", "Grace", "age", "34"),
	}
	schema := InferSchema(docs)
	age := schema.FieldByName("age")
	require.NotNil(t, age)
	assert.True(t, age.Nullable, "a field missing in one example must stay nullable once a later example restores it")
}

func TestInferSchemaWidensIntegerAndFloatToFloat(t *testing.T) {
	docs := []ObjectDoc{
		NewObjectDoc("amount", "10"),
		NewObjectDoc("amount", "10.5"),
	}
	schema := InferSchema(docs)
	amount := schema.FieldByName("amount")
	require.NotNil(t, amount)
	assert.Equal(t, KindFloat, amount.Kind)
}

func TestInferSchemaCollapsesDateDisagreementToString(t *testing.T) {
	docs := []ObjectDoc{
		NewObjectDoc("when", "2024-01-05"),
		NewObjectDoc("when", "2024-01-05T10:00:00"),
	}
	schema := InferSchema(docs)
	when := schema.FieldByName("when")
	require.NotNil(t, when)
	assert.Equal(t, KindString, when.Kind)
}

func TestInferSchemaIsMonotoneUnderMoreExamples(t *testing.T) {
	// Testable property: merging a superset of examples never drops a field or narrows a kind
	// that was already widened by the subset.
	subset := []ObjectDoc{
		NewObjectDoc("id", "1", "amount", "10"),
	}
	superset := []ObjectDoc{
		NewObjectDoc("id", "1", "amount", "10"),
		NewObjectDoc("id", "2", "amount", "10.5"),
	}
	subsetSchema := InferSchema(subset)
	supersetSchema := InferSchema(superset)

	for _, f := range subsetSchema.Fields {
		sup := supersetSchema.FieldByName(f.Name)
		require.NotNil(t, sup, "field %s must survive under more examples", f.Name)
		supRank, ok1 := kindRank[sup.Kind]
		subRank, ok2 := kindRank[f.Kind]
		if ok1 && ok2 {
			assert.GreaterOrEqual(t, supRank, subRank, "kind for %s must only widen, never narrow", f.Name)
		}
	}
}

func TestInferSchemaNestedObjectSchema(t *testing.T) {
	docs := []ObjectDoc{
		NewObjectDoc("address", NewObjectDoc("city", "Boston", "zip", "02134")),
	}
	schema := InferSchema(docs)
	addr := schema.FieldByName("address")
	require.NotNil(t, addr)
	assert.Equal(t, KindObject, addr.Kind)
	require.NotNil(t, addr.ObjectSchema)
	assert.NotNil(t, addr.ObjectSchema.FieldByName("city"))
}
