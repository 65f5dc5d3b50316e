package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElementFileNameValid(t *testing.T) {
	imp, err := ParseElementFileName("A_letter_blue.png")
	require.NoError(t, err)
	assert.Equal(t, "A", imp.Name)
	assert.Equal(t, "letter", imp.Category)
	assert.Equal(t, "blue", imp.ColorLabel)
	assert.False(t, imp.IsSVG)

	imp, err = ParseElementFileName("7_Number_Gold.SVG")
	require.NoError(t, err)
	assert.Equal(t, "7", imp.Name)
	assert.Equal(t, "number", imp.Category)
	assert.Equal(t, "gold", imp.ColorLabel)
	assert.True(t, imp.IsSVG)

	imp, err = ParseElementFileName("Star_shape_red.png")
	require.NoError(t, err)
	assert.Equal(t, "shape", imp.Category)
}

func TestParseElementFileNameInvalid(t *testing.T) {
	for _, name := range []string{
		"A_letter_blue.jpg",
		"A_letter.png",
		"A_letter_blue_extra.png",
		"A_pet_blue.png",
		"_letter_blue.png",
		"A_letter_.svg",
		"noextension",
	} {
		_, err := ParseElementFileName(name)
		assert.Error(t, err, "filename %q", name)
	}
}
