// Package analyzer measures a value tree: its shape, its encoded sizes and
// how it compares to the equivalent JSON.
package analyzer

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/mcncl/terse/internal/bridge"
	"github.com/mcncl/terse/internal/config"
	"github.com/mcncl/terse/internal/formatter"
	"github.com/mcncl/terse/internal/models"
	"github.com/zeebo/blake3"
)

// charsPerToken is the rough ratio used for token estimates.
const charsPerToken = 4

// Stats describes a value tree.
type Stats struct {
	// Counts holds the number of values of each kind, keyed by kind name.
	Counts map[string]int `json:"counts" yaml:"counts"`
	// Values is the total number of values, containers included.
	Values int `json:"values" yaml:"values"`
	// Members is the total number of object entries.
	Members int `json:"members" yaml:"members"`
	// UniqueKeys counts distinct object keys across the tree.
	UniqueKeys int `json:"uniqueKeys" yaml:"unique_keys"`
	// MaxDepth is the deepest container nesting; a scalar root is 0.
	MaxDepth int `json:"maxDepth" yaml:"max_depth"`

	CompactBytes int `json:"compactBytes" yaml:"compact_bytes"`
	PrettyBytes  int `json:"prettyBytes" yaml:"pretty_bytes"`
	// JSONBytes is the compact JSON size, or 0 when the tree holds values
	// JSON cannot represent.
	JSONBytes int `json:"jsonBytes" yaml:"json_bytes"`
	// Savings is the fraction of JSON bytes saved by the compact encoding.
	Savings float64 `json:"savings" yaml:"savings"`

	EstimatedTokens     int `json:"estimatedTokens" yaml:"estimated_tokens"`
	JSONEstimatedTokens int `json:"jsonEstimatedTokens" yaml:"json_estimated_tokens"`

	// Fingerprint is the BLAKE3 hash of the compact encoding, in hex. Equal
	// trees with the same member order share a fingerprint.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

// Analyzer computes Stats.
type Analyzer struct {
	indent int
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{indent: formatter.DefaultIndent}
}

// NewAnalyzerWithConfig creates an Analyzer that measures pretty output with
// the configured indent.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	a := NewAnalyzer()
	if cfg != nil {
		a.indent = cfg.Encode.Indent
	}
	return a
}

// Analyze measures v with the default analyzer.
func Analyze(v *models.Value) Stats {
	return NewAnalyzer().Analyze(v)
}

// Analyze measures v.
func (a *Analyzer) Analyze(v *models.Value) Stats {
	stats := Stats{Counts: make(map[string]int)}
	keys := make(map[string]struct{})
	stats.MaxDepth = a.walk(v, 0, &stats, keys)
	stats.UniqueKeys = len(keys)

	compact := formatter.Encode(v, false, a.indent)
	stats.CompactBytes = len(compact)
	stats.PrettyBytes = len(formatter.Encode(v, true, a.indent))
	stats.EstimatedTokens = estimateTokens(compact)

	sum := blake3.Sum256([]byte(compact))
	stats.Fingerprint = hex.EncodeToString(sum[:])

	if js, err := bridge.ToJSON(v, 0); err == nil {
		stats.JSONBytes = len(js)
		stats.JSONEstimatedTokens = estimateTokens(string(js))
		if stats.JSONBytes > 0 {
			stats.Savings = 1 - float64(stats.CompactBytes)/float64(stats.JSONBytes)
		}
	}
	return stats
}

// walk counts v and its descendants and returns the deepest nesting below
// depth.
func (a *Analyzer) walk(v *models.Value, depth int, stats *Stats, keys map[string]struct{}) int {
	stats.Values++
	stats.Counts[v.Kind().String()]++

	deepest := depth
	switch v.Kind() {
	case models.KindArray:
		deepest = depth + 1
		for _, item := range v.Items() {
			deepest = max(deepest, a.walk(item, depth+1, stats, keys))
		}
	case models.KindObject:
		deepest = depth + 1
		for _, entry := range v.Object().Entries() {
			stats.Members++
			keys[entry.Key] = struct{}{}
			deepest = max(deepest, a.walk(entry.Value, depth+1, stats, keys))
		}
	}
	return deepest
}

func estimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + charsPerToken - 1) / charsPerToken
}
