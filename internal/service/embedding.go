package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/recipesnap/backend/internal/model"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// GenerateEmbedding returns a deterministic hashed bag-of-words embedding
// for the given text. The vector is L2-normalised so that distances compare
// word overlap rather than text length.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, model.EmbeddingDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%model.EmbeddingDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}

// recipeEmbeddingText is the text a stored recipe is embedded from
func recipeEmbeddingText(recipe types.Recipe) string {
	return recipe.Name + " " + strings.Join(recipe.Ingredients, " ")
}
