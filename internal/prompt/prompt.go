// Package prompt renders the few-shot classification prompt.
package prompt

import (
	"fmt"
	"math/rand"
	"strings"

	"biaseval/internal/dataset"
)

// instructionHeader is the fixed instruction block shared by the full and
// simplified prompts. The wording is part of the evaluation protocol and
// must not drift between runs.
const instructionHeader = "You are an expert in identifying regional biases in comments about Indian states and regions. " +
	"Task: Classify if the comment contains regional bias related to Indian states or regions.\n\n" +
	"Instructions:\n" +
	"- Regional Bias (1): Comments that contain stereotypes, prejudices, or biases about specific Indian states or regions.\n" +
	"- Non-Regional Bias (0): Comments that don't contain regional stereotypes or biases about Indian states.\n\n"

// FewShot builds the full prompt: instruction header, every example in one
// seeded random permutation, then the target comment with a classification
// placeholder. The same seed always yields the same permutation.
func FewShot(examples []dataset.Record, comment string, seed int64) string {
	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	var b strings.Builder
	b.WriteString(instructionHeader)
	b.WriteString("Examples:\n")
	for _, idx := range order {
		ex := examples[idx]
		fmt.Fprintf(&b, "Comment: \"%s\"\n", ex.CleanedComment)
		fmt.Fprintf(&b, "Classification: %d\n\n", ex.Label)
	}
	fmt.Fprintf(&b, "Now classify this comment:\n\"%s\"\nClassification:", comment)
	return b.String()
}

// Simplified is the fallback used when the full prompt exceeds the token
// budget: the enumerated examples are dropped wholesale, nothing else
// changes. There is no intermediate compression strategy.
func Simplified(comment string) string {
	var b strings.Builder
	b.WriteString(instructionHeader)
	b.WriteString("Examples are provided separately. Based on these instructions:\n\n")
	fmt.Fprintf(&b, "Classify this comment:\n\"%s\"\nClassification:", comment)
	return b.String()
}

// EstimateTokens estimates the token count of a prompt using the chars/4
// approximation. The serving side tokenizes for real; this is only the
// budget guard for the simplified-prompt fallback.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}
