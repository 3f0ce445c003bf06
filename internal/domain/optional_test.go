package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invois/internal/domain"
)

type optPayload struct {
	Notes  domain.Optional[string]  `json:"notes"`
	Amount domain.Optional[float64] `json:"amount"`
}

func TestOptional_AbsentField(t *testing.T) {
	var p optPayload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

	assert.False(t, p.Notes.Present)
	assert.False(t, p.Notes.Valid)
}

func TestOptional_NullField(t *testing.T) {
	var p optPayload
	require.NoError(t, json.Unmarshal([]byte(`{"notes": null}`), &p))

	assert.True(t, p.Notes.Present)
	assert.False(t, p.Notes.Valid)
}

func TestOptional_ValueField(t *testing.T) {
	var p optPayload
	require.NoError(t, json.Unmarshal([]byte(`{"notes": "paid in cash", "amount": 42.5}`), &p))

	assert.True(t, p.Notes.Present)
	assert.True(t, p.Notes.Valid)
	assert.Equal(t, "paid in cash", p.Notes.Value)
	assert.Equal(t, 42.5, p.Amount.Value)
}

func TestOptional_TypeMismatchErrors(t *testing.T) {
	var p optPayload
	err := json.Unmarshal([]byte(`{"amount": "not even close to a number []"}`), &p)
	assert.Error(t, err)
}

func TestOptional_Set(t *testing.T) {
	o := domain.Set("hello")
	assert.True(t, o.Present)
	assert.True(t, o.Valid)
	assert.Equal(t, "hello", o.Value)
}

func TestOptional_MarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(domain.Set(3.5))
	require.NoError(t, err)
	assert.Equal(t, `3.5`, string(data))

	data, err = json.Marshal(domain.Optional[float64]{Present: true})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(data))
}

func TestFlexFloat_Number(t *testing.T) {
	var f domain.FlexFloat
	require.NoError(t, json.Unmarshal([]byte(`12.5`), &f))
	assert.Equal(t, 12.5, f.Float64())
}

func TestFlexFloat_NumericString(t *testing.T) {
	var f domain.FlexFloat
	require.NoError(t, json.Unmarshal([]byte(`"99.9"`), &f))
	assert.Equal(t, 99.9, f.Float64())
}

func TestFlexFloat_GarbageCoercesToZero(t *testing.T) {
	var f domain.FlexFloat = 7
	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &f))
	assert.Equal(t, 0.0, f.Float64())
}

func TestFlexFloat_NullCoercesToZero(t *testing.T) {
	var f domain.FlexFloat = 7
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Equal(t, 0.0, f.Float64())
}
