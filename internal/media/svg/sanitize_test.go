package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStripsScripts(t *testing.T) {
	input := []byte(`<svg><script>alert(1)</script><rect width="1"/></svg>`)

	clean, err := Sanitize(input)
	require.NoError(t, err)
	assert.NotContains(t, string(clean), "script")
	assert.Contains(t, string(clean), "<rect")
}

func TestSanitizeStripsEventHandlers(t *testing.T) {
	input := []byte(`<svg onload="alert(1)"><circle onclick="steal()" r="5"/></svg>`)

	clean, err := Sanitize(input)
	require.NoError(t, err)
	assert.NotContains(t, string(clean), "onload")
	assert.NotContains(t, string(clean), "onclick")
	assert.Contains(t, string(clean), "<circle")
}

func TestSanitizeRejectsNonSVG(t *testing.T) {
	_, err := Sanitize([]byte(`<html><body>hi</body></html>`))
	assert.Error(t, err)
}

func TestSanitizePassesCleanDocument(t *testing.T) {
	input := []byte(`<svg viewBox="0 0 10 10"><path d="M0 0h10v10z"/></svg>`)

	clean, err := Sanitize(input)
	require.NoError(t, err)
	assert.Equal(t, input, clean)
}
