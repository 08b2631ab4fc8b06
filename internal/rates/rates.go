// Package rates serves the static governorate → city → shipping-fee table.
// The table ships with the binary; it is reference data, not remotely
// fetched per request.
package rates

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

//go:embed governorates.json
var governoratesJSON []byte

// DefaultFee applies when the destination is incomplete or not covered
// by the table.
var DefaultFee = decimal.NewFromInt(50)

// City is one deliverable destination inside a governorate.
type City struct {
	Name        string          `json:"name"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
}

type governorate struct {
	Cities []City `json:"cities"`
}

// Table is the in-memory shipping rate table.
type Table struct {
	governorates map[string]governorate
}

// Load parses the embedded table. Call once at startup.
func Load() (*Table, error) {
	var govs map[string]governorate
	if err := json.Unmarshal(governoratesJSON, &govs); err != nil {
		return nil, fmt.Errorf("parse governorates table: %w", err)
	}
	return &Table{governorates: govs}, nil
}

// MustLoad is Load for contexts where the embedded table being broken is
// a programming error (tests, package-level setup).
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Fee looks up the shipping fee for a destination. The city match is
// exact and case-sensitive; missing governorate, missing city or an
// incomplete address all fall back to DefaultFee.
func (t *Table) Fee(governorate, city string) decimal.Decimal {
	if governorate == "" || city == "" {
		return DefaultFee
	}
	gov, ok := t.governorates[governorate]
	if !ok {
		return DefaultFee
	}
	for _, c := range gov.Cities {
		if c.Name == city {
			return c.ShippingFee
		}
	}
	return DefaultFee
}

// Governorates returns all governorate names, sorted for stable output.
func (t *Table) Governorates() []string {
	names := make([]string, 0, len(t.governorates))
	for name := range t.governorates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cities returns the city entries for a governorate, or nil when the
// governorate is unknown.
func (t *Table) Cities(governorate string) []City {
	gov, ok := t.governorates[governorate]
	if !ok {
		return nil
	}
	return gov.Cities
}
