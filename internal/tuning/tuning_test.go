package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeTuning(t, `
protocol_version: "1.0"
bank_principal: TREASURY
initial_balance: 2000
cooldown_seconds: 60
lock_seconds: 120
max_properties: 6
`)
	tn, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.BankPrincipal != "TREASURY" || tn.InitialBalance != 2000 || tn.MaxProperties != 6 {
		t.Fatalf("unexpected tuning: %+v", tn)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	p := writeTuning(t, "initial_balance: 2000\n")
	tn, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d := Defaults()
	if tn.InitialBalance != 2000 {
		t.Fatalf("override lost: %+v", tn)
	}
	if tn.BankPrincipal != d.BankPrincipal || tn.CooldownSeconds != d.CooldownSeconds ||
		tn.LockSeconds != d.LockSeconds || tn.MaxProperties != d.MaxProperties {
		t.Fatalf("defaults lost: %+v", tn)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty bank":     `bank_principal: ""`,
		"negative grant": "initial_balance: -1",
		"negative timer": "cooldown_seconds: -5",
		"zero limit":     "max_properties: 0",
	}
	for name, body := range cases {
		if _, err := Load(writeTuning(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	tn, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if tn != Defaults() {
		t.Fatalf("expected defaults on missing file, got %+v", tn)
	}
}
