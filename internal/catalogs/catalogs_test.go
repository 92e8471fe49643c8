package catalogs

import (
	"os"
	"path/filepath"
	"testing"

	"landlords.game/internal/game/model"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "properties.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeCatalog(t, `
properties:
  - name: Boulevard de Belleville
    category: STREET_BROWN
    value: 60
    rent: 2
    metadata_ref: ipfs://x/0
  - name: Gare du Nord
    category: STATION
    value: 200
    rent: 25
    metadata_ref: ipfs://x/1
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Properties) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(c.Properties))
	}
	cat, err := c.Properties[1].CategoryOf()
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if cat != model.Station {
		t.Fatalf("expected STATION, got %v", cat)
	}
}

func TestLoadRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"unknown category": "properties:\n  - name: X\n    category: STREET_TURQUOISE\n    value: 60\n    rent: 2\n",
		"missing name":     "properties:\n  - category: STATION\n    value: 200\n    rent: 25\n",
		"negative value":   "properties:\n  - name: X\n    category: UTILITY\n    value: -1\n    rent: 2\n",
	}
	for name, body := range cases {
		if _, err := Load(writeCatalog(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestShippedCatalogParses(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "properties.yaml"))
	if err != nil {
		t.Fatalf("load shipped catalog: %v", err)
	}
	if len(c.Properties) != 28 {
		t.Fatalf("expected 28 board entries, got %d", len(c.Properties))
	}
	var stations, utilities int
	for _, e := range c.Properties {
		cat, err := e.CategoryOf()
		if err != nil {
			t.Fatalf("category: %v", err)
		}
		switch cat {
		case model.Station:
			stations++
		case model.Utility:
			utilities++
		}
	}
	if stations != 4 || utilities != 2 {
		t.Fatalf("expected 4 stations and 2 utilities, got %d/%d", stations, utilities)
	}
}
