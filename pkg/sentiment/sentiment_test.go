package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPositive(t *testing.T) {
	c := NewVADER()

	result, err := c.Classify("I absolutely love this, it is amazing and wonderful!")
	require.NoError(t, err)
	assert.Equal(t, LabelPositive, result.Label)
	assert.Greater(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestClassifyNegative(t *testing.T) {
	c := NewVADER()

	result, err := c.Classify("This is horrible, I hate it so much, worst thing ever")
	require.NoError(t, err)
	assert.Equal(t, LabelNegative, result.Label)
	assert.Greater(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestClassifyNeutral(t *testing.T) {
	c := NewVADER()

	result, err := c.Classify("The video was uploaded on Tuesday")
	require.NoError(t, err)
	assert.Equal(t, LabelNeutral, result.Label)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestClassifyEmptyText(t *testing.T) {
	c := NewVADER()

	for _, text := range []string{"", "   ", "\n\t"} {
		result, err := c.Classify(text)
		require.NoError(t, err)
		assert.Equal(t, LabelNeutral, result.Label)
		assert.Equal(t, 1.0, result.Score)
	}
}

func TestClassifyScoreAlwaysInRange(t *testing.T) {
	c := NewVADER()

	texts := []string{
		"ok",
		"AMAZING!!! BEST EVER!!! LOVE LOVE LOVE",
		"terrible awful disgusting hate hate hate",
		"emoji only comment",
		"1234567890",
	}

	for _, text := range texts {
		result, err := c.Classify(text)
		require.NoError(t, err, "text: %q", text)
		assert.GreaterOrEqual(t, result.Score, 0.0, "text: %q", text)
		assert.LessOrEqual(t, result.Score, 1.0, "text: %q", text)
		assert.Contains(t, []string{LabelPositive, LabelNegative, LabelNeutral}, result.Label)
	}
}
