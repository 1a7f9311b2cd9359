package inspect

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	tests := []struct {
		value    string
		category Category
		hex      string
	}{
		{"#ff0000", Color, "#ff0000"},
		{"#f00", Color, "#ff0000"},
		{"red", Color, "#ff0000"},
		{"rgb(0, 0, 255)", Color, "#0000ff"},
		{"bold", Keyword, ""},
		{"calc(1px + 2px)", Function, ""},
		{"4px", Dimension, ""},
		{"50%", Percentage, ""},
		{"1.5", Number, ""},
		{`"Helvetica"`, String, ""},
		{"url(a.png)", URL, ""},
		{"1px solid red", List, ""},
		{"   ", Empty, ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := Value(tt.value)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.hex, got.Hex)
		})
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "color", Color.String())
	assert.Equal(t, "unknown", Category(99).String())
	b, err := Dimension.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "dimension", string(b))
}

func TestInfoDecodesFromJSON(t *testing.T) {
	var info Info
	require.NoError(t, json.Unmarshal([]byte(`{"category":"color","hex":"#336699"}`), &info))
	assert.Equal(t, Info{Category: Color, Hex: "#336699"}, info)

	data, err := json.Marshal(Info{Category: Empty})
	require.NoError(t, err)
	var back Info
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Empty, back.Category)

	assert.ErrorContains(t, json.Unmarshal([]byte(`{"category":"colour"}`), &info), "unknown value category")
}
