// Package token estimates the generation-stage cost of text. The default
// estimator uses the 4-characters-per-token approximation; a tiktoken-backed
// estimator is available when exact counts matter more than speed.
package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator converts text into an abstract token cost.
type Estimator interface {
	Estimate(text string) int
}

// Heuristic approximates one token per four characters.
type Heuristic struct{}

func (Heuristic) Estimate(text string) int {
	return len(text) / 4
}

// Tiktoken counts tokens with a real BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding (e.g. "cl100k_base").
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("token: load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Estimate(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
