package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredData(t *testing.T) {
	data, err := ParseStructuredData([]byte(`{"name":"Jane Doe","skills":["Go",3,"Rust"],"education":"BSc","work_experience":null}`))
	require.NoError(t, err)

	name, ok := data.Name()
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", name)

	skills, ok := data.Skills()
	require.True(t, ok)
	assert.Equal(t, []string{"Go", "3", "Rust"}, skills)

	education, ok := data.Education()
	require.True(t, ok)
	assert.Equal(t, []string{"BSc"}, education)

	_, ok = data.WorkExperience()
	assert.False(t, ok)
	assert.True(t, data.Has(FieldWorkExperience))
}

func TestParseStructuredData_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[]`, `"x"`, `1`, `null`, ``} {
		_, err := ParseStructuredData([]byte(raw))
		assert.ErrorIs(t, err, ErrNotObject, raw)
	}

	_, err := ParseStructuredData([]byte(`{`))
	assert.Error(t, err)
}

func TestStructuredData_MissingKeys(t *testing.T) {
	data := StructuredData{}
	_, ok := data.Name()
	assert.False(t, ok)
	_, ok = data.Skills()
	assert.False(t, ok)
	assert.False(t, data.Has(FieldSkills))
}

func TestStructuredData_SetSkills(t *testing.T) {
	data := StructuredData{"name": "Jane", "skills": []any{"Rust", "Go"}}
	data.SetSkills([]string{"Go", "Rust"})

	raw, err := data.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jane","skills":["Go","Rust"]}`, string(raw))
}
