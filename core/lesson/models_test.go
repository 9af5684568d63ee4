package lesson

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edumaster/core"
)

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Price
	}{
		{name: "number", json: `{"price": 29.99}`, want: 29.99},
		{name: "zero", json: `{"price": 0}`, want: 0},
		{name: "numeric string", json: `{"price": " 12.5 "}`, want: 12.5},
		{name: "garbage string", json: `{"price": "free"}`, want: 0},
		{name: "null", json: `{"price": null}`, want: 0},
		{name: "missing", json: `{}`, want: 0},
		{name: "negative", json: `{"price": -3}`, want: 0},
		{name: "object", json: `{"price": {"amount": 3}}`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Lesson
			require.NoError(t, json.Unmarshal([]byte(tt.json), &l))
			assert.Equal(t, tt.want, l.Price)
		})
	}
}

func TestNormalizeClassLevel(t *testing.T) {
	assert.Equal(t, "Grade 1 Secondary", NormalizeClassLevel("1"))
	assert.Equal(t, "Grade 5 Secondary", NormalizeClassLevel(" 5 "))
	assert.Equal(t, "6", NormalizeClassLevel("6"))
	assert.Equal(t, "Grade 2 Secondary", NormalizeClassLevel("Grade 2 Secondary"))
	assert.Equal(t, "", NormalizeClassLevel("  "))
}

func TestFilter_QueryParams(t *testing.T) {
	paid := true
	unpaid := false

	assert.Empty(t, Filter{}.QueryParams())
	assert.Equal(t,
		map[string]string{"search": "algebra", "classLevel": "Grade 3 Secondary", "isPaid": "true"},
		Filter{Search: " algebra ", ClassLevel: "3", IsPaid: &paid}.QueryParams(),
	)
	assert.Equal(t, map[string]string{"isPaid": "false"}, Filter{IsPaid: &unpaid}.QueryParams())
}

func TestFilter_Match(t *testing.T) {
	l := Lesson{Title: "Intro to Algebra", Subject: "Math", ClassLevel: "Grade 1 Secondary", IsPaid: true}
	free := false

	assert.True(t, Filter{}.Match(l))
	assert.True(t, Filter{Search: "ALGEBRA"}.Match(l))
	assert.True(t, Filter{Search: "math", ClassLevel: "1"}.Match(l))
	assert.False(t, Filter{ClassLevel: "2"}.Match(l))
	assert.False(t, Filter{IsPaid: &free}.Match(l))
	assert.False(t, Filter{Search: "physics"}.Match(l))
}

func newValidator() *validator.Validate {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	return validate
}

func TestNewLesson_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name    string
		data    NewLesson
		wantErr bool
	}{
		{name: "valid", data: NewLesson{Title: "Algebra", ClassLevel: "1", Price: 10}},
		{name: "blank title", data: NewLesson{Title: "   ", ClassLevel: "1"}, wantErr: true},
		{name: "unknown class level", data: NewLesson{Title: "Algebra", ClassLevel: "Grade 9"}, wantErr: true},
		{name: "negative price", data: NewLesson{Title: "Algebra", ClassLevel: "1", Price: -1}, wantErr: true},
		{name: "bad video url", data: NewLesson{Title: "Algebra", ClassLevel: "1", VideoURL: "not a url"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
