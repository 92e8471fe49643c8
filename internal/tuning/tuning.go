// Package tuning loads the game's operational parameters from yaml.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	BankPrincipal   string `yaml:"bank_principal"`
	InitialBalance  int64  `yaml:"initial_balance"`
	CooldownSeconds int64  `yaml:"cooldown_seconds"`
	LockSeconds     int64  `yaml:"lock_seconds"`
	MaxProperties   int    `yaml:"max_properties"`
}

// Defaults are the classic rules: 1500 starting grant, 5 minute purchase
// cooldown, 10 minute trade lock, 4 properties per player.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		BankPrincipal:   "BANK",
		InitialBalance:  1500,
		CooldownSeconds: 300,
		LockSeconds:     600,
		MaxProperties:   4,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) validate() error {
	if t.BankPrincipal == "" {
		return fmt.Errorf("bank_principal must be set")
	}
	if t.InitialBalance < 0 {
		return fmt.Errorf("initial_balance must be >= 0")
	}
	if t.CooldownSeconds < 0 || t.LockSeconds < 0 {
		return fmt.Errorf("timer durations must be >= 0")
	}
	if t.MaxProperties <= 0 {
		return fmt.Errorf("max_properties must be > 0")
	}
	return nil
}
