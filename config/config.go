// Package config provides configuration loading and access for the reef simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/reef/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// MaxWorldSize bounds world.size; the template library cannot score larger worlds.
const MaxWorldSize = 1024

// Config holds all simulation configuration parameters.
type Config struct {
	World         WorldConfig         `yaml:"world"`
	Run           RunConfig           `yaml:"run"`
	Light         LightConfig         `yaml:"light"`
	Energy        EnergyConfig        `yaml:"energy"`
	Recruitment   RecruitmentConfig   `yaml:"recruitment"`
	Disturbance   DisturbanceConfig   `yaml:"disturbance"`
	Sedimentation SedimentationConfig `yaml:"sedimentation"`
	Forms         FormsConfig         `yaml:"forms"`
	Morphology    MorphologyConfig    `yaml:"morphology"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Debug         DebugConfig         `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the world dimensions and seed.
type WorldConfig struct {
	Size int   `yaml:"size"`
	Seed int64 `yaml:"seed"`
}

// RunConfig holds run length and calendar.
type RunConfig struct {
	Ticks        int `yaml:"ticks"`
	TicksPerYear int `yaml:"ticks_per_year"`
}

// LightConfig holds light field parameters.
type LightConfig struct {
	Surface          float64 `yaml:"surface"`
	Transmittance    float64 `yaml:"transmittance"`
	ReferenceDepth   float64 `yaml:"reference_depth"`
	Lateral          float64 `yaml:"lateral"`
	ReconvergePasses int     `yaml:"reconverge_passes"`
}

// EnergyConfig holds resource economics.
type EnergyConfig struct {
	Maintenance float64 `yaml:"maintenance"` // Cost per owned voxel per tick
}

// Schedule fires when (tick + Offset) % Frequency == 0. Frequency 0 disables it.
type Schedule struct {
	Frequency int `yaml:"frequency"`
	Offset    int `yaml:"offset"`
}

// Fires reports whether the schedule triggers on tick.
func (s Schedule) Fires(tick int) bool {
	if s.Frequency <= 0 {
		return false
	}
	return (tick+s.Offset)%s.Frequency == 0
}

// RecruitmentConfig holds spawning parameters.
type RecruitmentConfig struct {
	Initial        int     `yaml:"initial"`
	Frequency      int     `yaml:"frequency"`
	Offset         int     `yaml:"offset"`
	Count          int     `yaml:"count"`
	RandomForms    bool    `yaml:"random_forms"`
	StartResources float64 `yaml:"start_resources"`
}

// Schedule returns the recruitment schedule.
func (r RecruitmentConfig) Schedule() Schedule {
	return Schedule{Frequency: r.Frequency, Offset: r.Offset}
}

// DisturbanceConfig holds the two disturbance severities.
type DisturbanceConfig struct {
	SurvivalChance float64        `yaml:"survival_chance"`
	Low            SeverityConfig `yaml:"low"`
	High           SeverityConfig `yaml:"high"`
}

// SeverityConfig is one disturbance regime. Min/Max bound the dislodgement
// threshold drawn per event; colonies with a larger shape factor die.
type SeverityConfig struct {
	Frequency int     `yaml:"frequency"`
	Offset    int     `yaml:"offset"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
}

// Schedule returns the severity's schedule.
func (s SeverityConfig) Schedule() Schedule {
	return Schedule{Frequency: s.Frequency, Offset: s.Offset}
}

// SedimentationConfig holds reclamation scheduling.
type SedimentationConfig struct {
	Frequency int `yaml:"frequency"`
	Offset    int `yaml:"offset"`
}

// Schedule returns the sedimentation schedule.
func (s SedimentationConfig) Schedule() Schedule {
	return Schedule{Frequency: s.Frequency, Offset: s.Offset}
}

// FormConfig holds per-growth-form parameters.
type FormConfig struct {
	ResourceCap float64 `yaml:"resource_cap"`
	Mortality   float64 `yaml:"mortality"` // Yearly probability
}

// FormsConfig holds one FormConfig per growth form.
type FormsConfig struct {
	Encrusting    FormConfig `yaml:"encrusting"`
	Hemispherical FormConfig `yaml:"hemispherical"`
	Tabular       FormConfig `yaml:"tabular"`
	Branching     FormConfig `yaml:"branching"`
	Corymbose     FormConfig `yaml:"corymbose"`
}

// For returns the parameters of a growth form.
func (f *FormsConfig) For(form components.GrowthForm) *FormConfig {
	switch form {
	case components.Encrusting:
		return &f.Encrusting
	case components.Hemispherical:
		return &f.Hemispherical
	case components.Tabular:
		return &f.Tabular
	case components.Branching:
		return &f.Branching
	case components.Corymbose:
		return &f.Corymbose
	}
	panic(fmt.Sprintf("config: invalid growth form %d", uint8(form)))
}

// MorphologyConfig holds template geometry.
type MorphologyConfig struct {
	StemHeight int     `yaml:"stem_height"`
	StemRadius float64 `yaml:"stem_radius"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogCapacity int `yaml:"log_capacity"`
	LogEvery    int `yaml:"log_every"`
	PerfWindow  int `yaml:"perf_window"`
}

// DebugConfig holds development switches.
type DebugConfig struct {
	CheckInvariants bool `yaml:"check_invariants"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Years float64 // run.ticks in years
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Years = 0
	if c.Run.TicksPerYear > 0 {
		c.Derived.Years = float64(c.Run.Ticks) / float64(c.Run.TicksPerYear)
	}
}

// Refresh recomputes derived values after in-place edits. It validates first.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate rejects out-of-range parameters. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.World.Size >= 2 && c.World.Size <= MaxWorldSize, "world.size %d not in [2, %d]", c.World.Size, MaxWorldSize)
	check(c.Run.Ticks >= 0, "run.ticks %d is negative", c.Run.Ticks)
	check(c.Run.TicksPerYear > 0, "run.ticks_per_year %d must be positive", c.Run.TicksPerYear)

	check(c.Light.Surface > 0, "light.surface %v must be positive", c.Light.Surface)
	check(c.Light.Transmittance > 0 && c.Light.Transmittance <= 1, "light.transmittance %v not in (0, 1]", c.Light.Transmittance)
	check(c.Light.ReferenceDepth > 0, "light.reference_depth %v must be positive", c.Light.ReferenceDepth)
	check(c.Light.Lateral >= 0 && c.Light.Lateral <= 1, "light.lateral %v not in [0, 1]", c.Light.Lateral)
	check(c.Light.ReconvergePasses >= 1, "light.reconverge_passes %d must be at least 1", c.Light.ReconvergePasses)

	check(c.Energy.Maintenance >= 0, "energy.maintenance %v is negative", c.Energy.Maintenance)

	r := c.Recruitment
	check(r.Initial >= 0, "recruitment.initial %d is negative", r.Initial)
	check(r.Frequency >= 0, "recruitment.frequency %d is negative", r.Frequency)
	check(r.Count >= 0, "recruitment.count %d is negative", r.Count)
	check(r.StartResources >= 0, "recruitment.start_resources %v is negative", r.StartResources)

	d := c.Disturbance
	check(d.SurvivalChance >= 0 && d.SurvivalChance <= 1, "disturbance.survival_chance %v not in [0, 1]", d.SurvivalChance)
	for name, s := range map[string]SeverityConfig{"low": d.Low, "high": d.High} {
		check(s.Frequency >= 0, "disturbance.%s.frequency %d is negative", name, s.Frequency)
		check(s.Min >= 0 && s.Min <= s.Max, "disturbance.%s range [%v, %v] invalid", name, s.Min, s.Max)
	}

	check(c.Sedimentation.Frequency >= 0, "sedimentation.frequency %d is negative", c.Sedimentation.Frequency)

	for _, form := range components.AllForms() {
		f := c.Forms.For(form)
		check(f.ResourceCap > 0, "forms.%s.resource_cap %v must be positive", form, f.ResourceCap)
		check(f.Mortality >= 0 && f.Mortality <= 1, "forms.%s.mortality %v not in [0, 1]", form, f.Mortality)
	}

	check(c.Morphology.StemHeight >= 0, "morphology.stem_height %d is negative", c.Morphology.StemHeight)
	check(c.Morphology.StemRadius >= 0, "morphology.stem_radius %v is negative", c.Morphology.StemRadius)

	check(c.Telemetry.LogCapacity >= 0, "telemetry.log_capacity %d is negative", c.Telemetry.LogCapacity)

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
