package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// BadgeTier awards Name once a user's contribution total reaches Threshold.
type BadgeTier struct {
	Threshold   int64  `yaml:"threshold"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Artwork     string `yaml:"artwork"` // Optional image file sent with the award
}

// BadgeTable is a validated set of tiers sorted by ascending threshold.
type BadgeTable struct {
	tiers []BadgeTier
}

// NewBadgeTable validates tiers and sorts them by threshold.
func NewBadgeTable(tiers []BadgeTier) (BadgeTable, error) {
	sorted := make([]BadgeTier, 0, len(tiers))
	names := make(map[string]bool)
	thresholds := make(map[int64]bool)

	for _, tier := range tiers {
		tier.Name = strings.TrimSpace(tier.Name)
		if tier.Name == "" {
			return BadgeTable{}, fmt.Errorf("badges: tier with threshold %d has no name", tier.Threshold)
		}
		if tier.Threshold <= 0 {
			return BadgeTable{}, fmt.Errorf("badges: %q threshold must be positive", tier.Name)
		}
		if names[tier.Name] {
			return BadgeTable{}, fmt.Errorf("badges: duplicate badge %q", tier.Name)
		}
		if thresholds[tier.Threshold] {
			return BadgeTable{}, fmt.Errorf("badges: duplicate threshold %d", tier.Threshold)
		}
		names[tier.Name] = true
		thresholds[tier.Threshold] = true
		sorted = append(sorted, tier)
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold < sorted[j].Threshold
	})
	return BadgeTable{tiers: sorted}, nil
}

// LoadBadges parses a badges YAML file of the form `badges: [{threshold, name}]`.
func LoadBadges(path string) (BadgeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BadgeTable{}, fmt.Errorf("read badges: %w", err)
	}
	var file struct {
		Badges []BadgeTier `yaml:"badges"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return BadgeTable{}, fmt.Errorf("parse badges: %w", err)
	}
	return NewBadgeTable(file.Badges)
}

// Tiers returns the tiers in ascending threshold order.
func (b BadgeTable) Tiers() []BadgeTier {
	return append([]BadgeTier(nil), b.tiers...)
}

// Tier looks a badge up by name.
func (b BadgeTable) Tier(name string) (BadgeTier, bool) {
	for _, tier := range b.tiers {
		if tier.Name == name {
			return tier, true
		}
	}
	return BadgeTier{}, false
}

// Next returns the lowest tier strictly above total, if any.
func (b BadgeTable) Next(total int64) (BadgeTier, bool) {
	for _, tier := range b.tiers {
		if tier.Threshold > total {
			return tier, true
		}
	}
	return BadgeTier{}, false
}
