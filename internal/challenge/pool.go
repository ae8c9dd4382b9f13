// Package challenge tracks time-boxed goals with exactly-once-claimable XP
// payouts. Instances are generated deterministically from a template pool so
// a regeneration after restart produces the same challenges.
package challenge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/stretchkit/progression/internal/domain"
)

//go:embed challenge_pool.schema.json
var poolSchema []byte

//go:embed challenge_pool.default.json
var defaultPool []byte

// Pool holds the validated challenge templates, split by category.
type Pool struct {
	daily  []domain.ChallengeTemplate
	weekly []domain.ChallengeTemplate
}

// LoadPool reads and validates the challenge pool config. An empty path loads
// the embedded default pool.
func LoadPool(path string) (*Pool, error) {
	data := defaultPool
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read challenge pool config: %w", err)
		}
	}

	if err := validatePoolBytes(data); err != nil {
		return nil, fmt.Errorf("challenge pool config invalid: %w", err)
	}

	var cfg domain.ChallengePoolConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse challenge pool config: %w", err)
	}

	pool := &Pool{}
	for _, tpl := range cfg.ChallengePool {
		switch tpl.Category {
		case domain.ChallengeCategoryDaily:
			pool.daily = append(pool.daily, tpl)
		case domain.ChallengeCategoryWeekly:
			pool.weekly = append(pool.weekly, tpl)
		default:
			return nil, fmt.Errorf("%w: unknown challenge category %q", domain.ErrInvalidInput, tpl.Category)
		}
	}

	if len(pool.daily) == 0 || len(pool.weekly) == 0 {
		return nil, fmt.Errorf("%w: challenge pool needs at least one daily and one weekly template", domain.ErrInvalidInput)
	}

	return pool, nil
}

// validatePoolBytes validates the config document against the embedded schema.
func validatePoolBytes(data []byte) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(poolSchema)))
	if err != nil {
		return fmt.Errorf("failed to parse embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("challenge_pool.schema.json", schemaDoc); err != nil {
		return fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("challenge_pool.schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("failed to parse JSON data: %w", err)
	}

	return schema.Validate(doc)
}
