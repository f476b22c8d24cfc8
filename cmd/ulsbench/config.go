package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/costela/lotsizing"
)

// fileConfig mirrors the YAML configuration file. Absent keys leave the
// defaults untouched.
type fileConfig struct {
	TimeLimit string   `yaml:"time_limit"`
	RelGap    *float64 `yaml:"rel_gap"`
	AbsGap    *float64 `yaml:"abs_gap"`
	Workers   int      `yaml:"workers"`
	BigM      string   `yaml:"big_m"`
	Solver    string   `yaml:"solver"`
	Variant   string   `yaml:"variant"`
}

type settings struct {
	variant lotsizing.Variant
	solver  string
	bigM    lotsizing.BigM
	workers int
	config  lotsizing.Config
}

func defaultSettings() settings {
	return settings{
		variant: lotsizing.Flow,
		solver:  solverLPSolve,
		bigM:    lotsizing.BigMTotalDemand,
		workers: 1,
		config:  lotsizing.DefaultConfig(),
	}
}

func (s *settings) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	return s.decode(f)
}

func (s *settings) decode(r io.Reader) error {
	var fc fileConfig
	if err := yaml.NewDecoder(r).Decode(&fc); err != nil && err != io.EOF {
		return fmt.Errorf("parsing config: %w", err)
	}

	if fc.TimeLimit != "" {
		d, err := time.ParseDuration(fc.TimeLimit)
		if err != nil {
			return fmt.Errorf("config time_limit: %w", err)
		}
		s.config.TimeLimit = d
	}
	if fc.RelGap != nil {
		s.config.RelativeGap = *fc.RelGap
	}
	if fc.AbsGap != nil {
		s.config.AbsoluteGap = *fc.AbsGap
	}
	if fc.Workers != 0 {
		s.workers = fc.Workers
	}
	if fc.BigM != "" {
		m, err := lotsizing.ParseBigM(fc.BigM)
		if err != nil {
			return fmt.Errorf("config big_m: %w", err)
		}
		s.bigM = m
	}
	if fc.Solver != "" {
		s.solver = fc.Solver
	}
	if fc.Variant != "" {
		v, err := lotsizing.ParseVariant(fc.Variant)
		if err != nil {
			return fmt.Errorf("config variant: %w", err)
		}
		s.variant = v
	}

	return nil
}

// applyFlags overrides settings with the flags given on the command line.
func (s *settings) applyFlags(c *cli.Context) error {
	if c.IsSet("variant") {
		v, err := lotsizing.ParseVariant(c.String("variant"))
		if err != nil {
			return err
		}
		s.variant = v
	}
	if c.IsSet("solver") {
		s.solver = c.String("solver")
	}
	if c.IsSet("big-m") {
		m, err := lotsizing.ParseBigM(c.String("big-m"))
		if err != nil {
			return err
		}
		s.bigM = m
	}
	if c.IsSet("workers") {
		s.workers = c.Int("workers")
	}
	if c.IsSet("time-limit") {
		s.config.TimeLimit = c.Duration("time-limit")
	}
	if c.IsSet("rel-gap") {
		s.config.RelativeGap = c.Float64("rel-gap")
	}
	if c.IsSet("abs-gap") {
		s.config.AbsoluteGap = c.Float64("abs-gap")
	}
	if c.Bool("verbose") {
		s.config.Verbose = true
	}

	return s.validate()
}

func (s *settings) validate() error {
	switch s.solver {
	case solverLPSolve, solverGLPK:
	default:
		return fmt.Errorf("unknown solver %q", s.solver)
	}
	if s.workers < 1 {
		return fmt.Errorf("worker count must be positive, got %d", s.workers)
	}

	return s.config.Validate()
}

// resolve builds the effective settings: defaults, then the config file
// named by --config, then explicit flags.
func resolve(c *cli.Context) (settings, error) {
	s := defaultSettings()

	if path := c.String("config"); path != "" {
		if err := s.loadFile(path); err != nil {
			return s, err
		}
	}

	if err := s.applyFlags(c); err != nil {
		return s, err
	}

	return s, nil
}
