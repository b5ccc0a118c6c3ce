// Package harness executes declarative YAML scenarios against a full
// service stack (engine, canary routing, rollback, store) and snapshots the
// outcome as canonical JSON for golden-file comparison.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ringswap/internal/service"
	"github.com/roach88/ringswap/internal/swap"
)

// Scenario is one declarative end-to-end test: a config block, a fixed
// sequence of proposal ids for determinism, and an ordered list of runs.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the raw configuration block, validated through the same
	// schema as a production config file.
	Config map[string]any `yaml:"config,omitempty"`

	// ProposalIDs are consumed in order by every engine execution of the
	// scenario (baseline, candidate, and shadow runs alike). Running out
	// of ids fails the scenario, which catches unexpected extra runs.
	ProposalIDs []string `yaml:"proposal_ids"`

	Runs []RunStep `yaml:"runs"`
}

// RunStep is one matching run within a scenario.
type RunStep struct {
	Intents        []IntentStep       `yaml:"intents"`
	AssetValues    map[string]float64 `yaml:"asset_values,omitempty"`
	EdgeOverrides  []OverrideStep     `yaml:"edge_overrides,omitempty"`
	Now            string             `yaml:"now"`
	MaxProposals   int                `yaml:"max_proposals,omitempty"`
	Actor          ActorStep          `yaml:"actor"`
	IdempotencyKey string             `yaml:"idempotency_key,omitempty"`
}

// IntentStep declares one swap intent. Status defaults to active.
type IntentStep struct {
	ID      string    `yaml:"id"`
	Actor   ActorStep `yaml:"actor"`
	Offered []string  `yaml:"offered"`
	Wanted  []string  `yaml:"wanted"`
	Status  string    `yaml:"status,omitempty"`
}

// OverrideStep declares one edge override. Status defaults to active.
type OverrideStep struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Status    string `yaml:"status,omitempty"`
	ExpiresAt string `yaml:"expires_at,omitempty"`
}

// ActorStep identifies an actor. Type defaults to "user".
type ActorStep struct {
	Type string `yaml:"type,omitempty"`
	ID   string `yaml:"id"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently dropping assertions.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.ProposalIDs) == 0 {
		return fmt.Errorf("proposal_ids list is required and must be non-empty")
	}
	if len(s.Runs) == 0 {
		return fmt.Errorf("runs list is required and must be non-empty")
	}

	for i, run := range s.Runs {
		if len(run.Intents) == 0 {
			return fmt.Errorf("runs[%d]: intents list is required", i)
		}
		if run.Now == "" {
			return fmt.Errorf("runs[%d]: now is required", i)
		}
		if _, err := time.Parse(time.RFC3339, run.Now); err != nil {
			return fmt.Errorf("runs[%d]: now: %w", i, err)
		}
		if run.Actor.ID == "" {
			return fmt.Errorf("runs[%d]: actor.id is required", i)
		}
		for j, intent := range run.Intents {
			if intent.ID == "" {
				return fmt.Errorf("runs[%d].intents[%d]: id is required", i, j)
			}
			if intent.Actor.ID == "" {
				return fmt.Errorf("runs[%d].intents[%d]: actor.id is required", i, j)
			}
		}
		for j, ov := range run.EdgeOverrides {
			if ov.From == "" || ov.To == "" {
				return fmt.Errorf("runs[%d].edge_overrides[%d]: from and to are required", i, j)
			}
			if ov.ExpiresAt != "" {
				if _, err := time.Parse(time.RFC3339, ov.ExpiresAt); err != nil {
					return fmt.Errorf("runs[%d].edge_overrides[%d]: expires_at: %w", i, j, err)
				}
			}
		}
	}
	return nil
}

// Request converts a run step into the service boundary contract.
func (r RunStep) Request() (service.RunRequest, error) {
	now, err := time.Parse(time.RFC3339, r.Now)
	if err != nil {
		return service.RunRequest{}, err
	}

	intents := make([]swap.SwapIntent, len(r.Intents))
	for i, step := range r.Intents {
		status := swap.IntentStatus(step.Status)
		if step.Status == "" {
			status = swap.IntentActive
		}
		intents[i] = swap.SwapIntent{
			ID:      step.ID,
			Actor:   step.Actor.ref(),
			Offered: step.Offered,
			Wanted:  step.Wanted,
			Status:  status,
		}
	}

	overrides := make([]swap.EdgeOverride, len(r.EdgeOverrides))
	for i, step := range r.EdgeOverrides {
		status := swap.OverrideStatus(step.Status)
		if step.Status == "" {
			status = swap.OverrideActive
		}
		ov := swap.EdgeOverride{
			FromIntentID: step.From,
			ToIntentID:   step.To,
			Status:       status,
		}
		if step.ExpiresAt != "" {
			ov.ExpiresAt, err = time.Parse(time.RFC3339, step.ExpiresAt)
			if err != nil {
				return service.RunRequest{}, err
			}
		}
		overrides[i] = ov
	}

	return service.RunRequest{
		Intents:        intents,
		AssetValuesUSD: r.AssetValues,
		EdgeOverrides:  overrides,
		Now:            now,
		MaxProposals:   r.MaxProposals,
		Actor:          r.Actor.ref(),
		IdempotencyKey: r.IdempotencyKey,
	}, nil
}

// LoadRunStep reads a single run-request YAML file (the RunStep shape, used
// by the CLI run command).
func LoadRunStep(path string) (*RunStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run request: %w", err)
	}

	var step RunStep
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&step); err != nil {
		return nil, fmt.Errorf("parse run request: %w", err)
	}

	if len(step.Intents) == 0 {
		return nil, fmt.Errorf("invalid run request %s: intents list is required", path)
	}
	if step.Now == "" {
		return nil, fmt.Errorf("invalid run request %s: now is required", path)
	}
	if step.Actor.ID == "" {
		return nil, fmt.Errorf("invalid run request %s: actor.id is required", path)
	}
	return &step, nil
}

func (a ActorStep) ref() swap.ActorRef {
	typ := a.Type
	if typ == "" {
		typ = "user"
	}
	return swap.ActorRef{Type: typ, ID: a.ID}
}
