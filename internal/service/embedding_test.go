package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipesnap/backend/internal/model"
)

func TestGenerateEmbedding(t *testing.T) {
	t.Run("deterministic and normalised", func(t *testing.T) {
		a := GenerateEmbedding("Tomato Basil Pasta")
		b := GenerateEmbedding("tomato basil pasta")
		assert.Equal(t, a.Slice(), b.Slice())
		assert.Len(t, a.Slice(), model.EmbeddingDimensions)

		var norm float64
		for _, v := range a.Slice() {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	})

	t.Run("empty text gives zero vector", func(t *testing.T) {
		for _, v := range GenerateEmbedding("  ").Slice() {
			assert.Zero(t, v)
		}
	})

	t.Run("punctuation is ignored", func(t *testing.T) {
		assert.Equal(t, GenerateEmbedding("eggs, milk").Slice(), GenerateEmbedding("eggs milk").Slice())
	})
}
