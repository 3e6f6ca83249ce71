package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/domain"
)

func TestDefinitions_Valid(t *testing.T) {
	t.Parallel()

	defs := Definitions()
	require.Len(t, defs, 13)

	slugs := map[string]bool{}
	for _, def := range defs {
		assert.NoError(t, Validate(def), def.Slug)
		assert.False(t, slugs[def.Slug], "duplicate slug %s", def.Slug)
		slugs[def.Slug] = true
	}

	for group, members := range Groups() {
		for _, slug := range members {
			assert.True(t, slugs[slug], "group %s references unknown slug %s", group, slug)
		}
	}
}

func TestDefinitions_FreshCopies(t *testing.T) {
	t.Parallel()

	first := Definitions()
	first[0].Mapping.Categories.Map["ecovillage"] = "changed"

	second := Definitions()
	assert.Equal(t, "community", second[0].Mapping.Categories.Map["ecovillage"])
}

func TestValidate(t *testing.T) {
	t.Parallel()

	bad := "every tuesday"
	src := domain.Source{
		Slug:     "broken",
		Name:     "Broken",
		Type:     "FTP",
		Mapping:  domain.FieldMapping{Lat: "lat"},
		Schedule: &bad,
	}

	err := Validate(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidMapping)
	assert.Contains(t, err.Error(), `unknown source type "FTP"`)
	assert.Contains(t, err.Error(), "every tuesday")
}
