// Package config provides Viper-based configuration loading for the skirmish runner.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/voltfall/tactics/internal/game/combat"
)

// ContentConfig points the loader at the YAML content tree.
type ContentConfig struct {
	// Dir is the content root holding weapons/, actors/ and scenarios/.
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig holds PostgreSQL connection settings for the encounter
// report store.
type DatabaseConfig struct {
	// Enabled turns report persistence on. The remaining fields are only
	// consulted when it is true.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is the log format: json, console
	Format string `mapstructure:"format"`
}

// CombatConfig carries the engine tuning knobs. Defaults mirror the stock
// engine tuning, so a config file only needs the knobs it changes. Scenario
// files can still override individual knobs on top of this section.
type CombatConfig struct {
	MaxAP                 int     `mapstructure:"max_ap"`
	AttackCost            int     `mapstructure:"attack_cost"`
	MoveCost              int     `mapstructure:"move_cost"`
	BaseMovementRange     int     `mapstructure:"base_movement_range"`
	GridWidth             int     `mapstructure:"grid_width"`
	GridHeight            int     `mapstructure:"grid_height"`
	CoverHalfPenalty      int     `mapstructure:"cover_half_penalty"`
	CoverFullPenalty      int     `mapstructure:"cover_full_penalty"`
	CoverHalfDamageMult   float64 `mapstructure:"cover_half_damage_mult"`
	CoverFullDamageMult   float64 `mapstructure:"cover_full_damage_mult"`
	EscapeMinRound        int     `mapstructure:"escape_min_round"`
	EscapeBaseChance      int     `mapstructure:"escape_base_chance"`
	SacrificeEscapeChance int     `mapstructure:"sacrifice_escape_chance"`
	EscapeMoraleLoss      int     `mapstructure:"escape_morale_loss"`
	ArmorReduction        float64 `mapstructure:"armor_reduction"`
	FailedEscapeDamagePct float64 `mapstructure:"failed_escape_damage_pct"`
}

// Tuning converts the section into an engine tuning value.
func (c CombatConfig) Tuning() combat.Tuning {
	return combat.Tuning{
		MaxAP:                 c.MaxAP,
		AttackCost:            c.AttackCost,
		MoveCost:              c.MoveCost,
		BaseMovementRange:     c.BaseMovementRange,
		GridWidth:             c.GridWidth,
		GridHeight:            c.GridHeight,
		CoverHalfPenalty:      c.CoverHalfPenalty,
		CoverFullPenalty:      c.CoverFullPenalty,
		CoverHalfDamageMult:   c.CoverHalfDamageMult,
		CoverFullDamageMult:   c.CoverFullDamageMult,
		EscapeMinRound:        c.EscapeMinRound,
		EscapeBaseChance:      c.EscapeBaseChance,
		SacrificeEscapeChance: c.SacrificeEscapeChance,
		EscapeMoraleLoss:      c.EscapeMoraleLoss,
		ArmorReduction:        c.ArmorReduction,
		FailedEscapeDamagePct: c.FailedEscapeDamagePct,
	}
}

// SimConfig holds settings for the headless encounter runner.
type SimConfig struct {
	// MaxRounds aborts a run that has not terminated after this many rounds.
	MaxRounds int `mapstructure:"max_rounds"`
	// PolicyScript is a path to a Lua squad policy. Empty selects the
	// built-in aggressive policy.
	PolicyScript string `mapstructure:"policy_script"`
	// ScriptInstructionLimit caps Lua opcodes per policy decision.
	// Zero uses the sandbox default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the root configuration structure.
type Config struct {
	Content  ContentConfig  `mapstructure:"content"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Sim      SimConfig      `mapstructure:"sim"`
}

// Validate checks all sections and returns an error listing every violation.
//
// Postcondition: Returns nil only if the configuration is usable as-is.
func (c Config) Validate() error {
	var errs []string

	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Combat.Tuning().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.Dir == "" {
		return errors.New("content.dir must not be empty")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("sim.max_rounds must be >= 1, got %d", s.MaxRounds))
	}
	if s.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("sim.script_instruction_limit must be >= 0, got %d", s.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with VOLTFALL_ prefix
	v.SetEnvPrefix("VOLTFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the configuration that results from applying defaults and
// environment overrides without reading any file.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Default() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VOLTFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("content.dir", "content")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "voltfall")
	v.SetDefault("database.password", "voltfall")
	v.SetDefault("database.name", "voltfall")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	t := combat.DefaultTuning()
	v.SetDefault("combat.max_ap", t.MaxAP)
	v.SetDefault("combat.attack_cost", t.AttackCost)
	v.SetDefault("combat.move_cost", t.MoveCost)
	v.SetDefault("combat.base_movement_range", t.BaseMovementRange)
	v.SetDefault("combat.grid_width", t.GridWidth)
	v.SetDefault("combat.grid_height", t.GridHeight)
	v.SetDefault("combat.cover_half_penalty", t.CoverHalfPenalty)
	v.SetDefault("combat.cover_full_penalty", t.CoverFullPenalty)
	v.SetDefault("combat.cover_half_damage_mult", t.CoverHalfDamageMult)
	v.SetDefault("combat.cover_full_damage_mult", t.CoverFullDamageMult)
	v.SetDefault("combat.escape_min_round", t.EscapeMinRound)
	v.SetDefault("combat.escape_base_chance", t.EscapeBaseChance)
	v.SetDefault("combat.sacrifice_escape_chance", t.SacrificeEscapeChance)
	v.SetDefault("combat.escape_morale_loss", t.EscapeMoraleLoss)
	v.SetDefault("combat.armor_reduction", t.ArmorReduction)
	v.SetDefault("combat.failed_escape_damage_pct", t.FailedEscapeDamagePct)

	v.SetDefault("sim.max_rounds", 200)
	v.SetDefault("sim.policy_script", "")
	v.SetDefault("sim.script_instruction_limit", 0)
}
