package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ringswap/internal/canary"
	"github.com/roach88/ringswap/internal/engine"
)

//go:embed schema.cue
var schemaCUE string

// fileConfig mirrors the CUE schema for decoding. Field names must match
// the schema keys.
type fileConfig struct {
	Scope    string `json:"scope"`
	DBPath   string `json:"db_path"`
	LogLevel string `json:"log_level"`

	MaxProposals int `json:"max_proposals"`
	MaxDecisions int `json:"max_decisions"`

	Candidate struct {
		MinCycleLength    int   `json:"min_cycle_length"`
		MaxCycleLength    int   `json:"max_cycle_length"`
		MaxCyclesExplored int64 `json:"max_cycles_explored"`
		TimeoutMs         int64 `json:"timeout_ms"`
		Diagnostics       bool  `json:"diagnostics"`
	} `json:"candidate"`

	Primary fileRollout `json:"primary"`
	Canary  fileRollout `json:"canary"`

	Shadow struct {
		Enabled    bool `json:"enabled"`
		ForceError bool `json:"force_error"`
		MaxDiffs   int  `json:"max_diffs"`
	} `json:"shadow"`
}

type fileRollout struct {
	Enabled       bool   `json:"enabled"`
	RolloutBps    int64  `json:"rollout_bps"`
	Salt          string `json:"salt"`
	ForceError    bool   `json:"force_error"`
	ForceBucketV2 bool   `json:"force_bucket_v2"`

	FallbackOnTimeout bool `json:"fallback_on_timeout"`
	FallbackOnLimited bool `json:"fallback_on_limited"`

	RollbackReset      bool `json:"rollback_reset"`
	RollbackWindowRuns int  `json:"rollback_window_runs"`

	MaxErrorRateBps            int64 `json:"max_error_rate_bps"`
	MaxTimeoutRateBps          int64 `json:"max_timeout_rate_bps"`
	MaxLimitedRateBps          int64 `json:"max_limited_rate_bps"`
	MinNonNegativeDeltaRateBps int64 `json:"min_non_negative_delta_rate_bps"`
}

// Load reads the YAML file at path, applies RINGSWAP_* environment
// overrides, validates the merged document against the embedded CUE schema,
// and returns the resolved Config. An empty path loads defaults plus
// environment overrides only.
func Load(path string) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	if err := applyEnv(raw); err != nil {
		return Config{}, err
	}

	return FromMap(raw)
}

// FromMap validates a raw document (e.g. a test scenario's config block)
// against the schema and resolves it, exactly like a file load.
func FromMap(raw map[string]any) (Config, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	fc, err := validate(raw)
	if err != nil {
		return Config{}, err
	}
	return resolve(fc), nil
}

// validate unifies the raw document with the CUE schema, which both checks
// constraints and fills defaults, then decodes the concrete result.
func validate(raw map[string]any) (fileConfig, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fileConfig{}, fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fileConfig{}, fmt.Errorf("lookup #Config: %w", err)
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fileConfig{}, fmt.Errorf("encode config document: %w", err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return fileConfig{}, fmt.Errorf("invalid config: %w", err)
	}

	var fc fileConfig
	if err := unified.Decode(&fc); err != nil {
		return fileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return fc, nil
}

// resolve maps the validated file document onto the domain structs.
func resolve(fc fileConfig) Config {
	return Config{
		Scope:        fc.Scope,
		DBPath:       fc.DBPath,
		LogLevel:     fc.LogLevel,
		MaxProposals: fc.MaxProposals,
		MaxDecisions: fc.MaxDecisions,
		Candidate: engine.Config{
			Version:           engine.VersionCandidate,
			MinCycleLength:    fc.Candidate.MinCycleLength,
			MaxCycleLength:    fc.Candidate.MaxCycleLength,
			MaxCyclesExplored: fc.Candidate.MaxCyclesExplored,
			TimeoutMs:         fc.Candidate.TimeoutMs,
			Diagnostics:       fc.Candidate.Diagnostics,
		},
		Primary: resolveRollout(fc.Primary),
		Canary:  resolveRollout(fc.Canary),
		Shadow: canary.ShadowConfig{
			Enabled:    fc.Shadow.Enabled,
			ForceError: fc.Shadow.ForceError,
			MaxDiffs:   fc.Shadow.MaxDiffs,
		},
	}
}

func resolveRollout(fr fileRollout) canary.RolloutConfig {
	return canary.RolloutConfig{
		Enabled:                    fr.Enabled,
		RolloutBps:                 fr.RolloutBps,
		Salt:                       fr.Salt,
		ForceError:                 fr.ForceError,
		ForceBucketV2:              fr.ForceBucketV2,
		FallbackOnTimeout:          fr.FallbackOnTimeout,
		FallbackOnLimited:          fr.FallbackOnLimited,
		RollbackReset:              fr.RollbackReset,
		RollbackWindowRuns:         fr.RollbackWindowRuns,
		MaxErrorRateBps:            fr.MaxErrorRateBps,
		MaxTimeoutRateBps:          fr.MaxTimeoutRateBps,
		MaxLimitedRateBps:          fr.MaxLimitedRateBps,
		MinNonNegativeDeltaRateBps: fr.MinNonNegativeDeltaRateBps,
	}
}

// envOverride maps one environment variable onto a document path.
type envOverride struct {
	name string
	path []string
	kind string // "string", "int", "bool"
}

var envOverrides = []envOverride{
	{"RINGSWAP_SCOPE", []string{"scope"}, "string"},
	{"RINGSWAP_DB_PATH", []string{"db_path"}, "string"},
	{"RINGSWAP_LOG_LEVEL", []string{"log_level"}, "string"},
	{"RINGSWAP_PRIMARY_ENABLED", []string{"primary", "enabled"}, "bool"},
	{"RINGSWAP_CANARY_ENABLED", []string{"canary", "enabled"}, "bool"},
	{"RINGSWAP_CANARY_ROLLOUT_BPS", []string{"canary", "rollout_bps"}, "int"},
	{"RINGSWAP_SHADOW_ENABLED", []string{"shadow", "enabled"}, "bool"},
	{"RINGSWAP_ROLLBACK_RESET", []string{"primary", "rollback_reset"}, "bool"},
}

// applyEnv writes recognized RINGSWAP_* variables into the raw document so
// they pass through the same schema validation as file values.
func applyEnv(raw map[string]any) error {
	for _, o := range envOverrides {
		val, ok := os.LookupEnv(o.name)
		if !ok {
			continue
		}

		var parsed any
		switch o.kind {
		case "string":
			parsed = val
		case "int":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", o.name, err)
			}
			parsed = n
		case "bool":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("%s: %w", o.name, err)
			}
			parsed = b
		}

		setPath(raw, o.path, parsed)
	}
	return nil
}

func setPath(raw map[string]any, path []string, val any) {
	for _, key := range path[:len(path)-1] {
		next, ok := raw[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			raw[key] = next
		}
		raw = next
	}
	raw[path[len(path)-1]] = val
}
