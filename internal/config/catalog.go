package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one catalog section, e.g. a hero role.
type Category struct {
	Name  string
	Items []string
}

// Catalog maps category to an ordered list of item names. It is immutable once built;
// accessors return copies.
type Catalog struct {
	categories []Category
}

// NewCatalog validates categories and returns an immutable catalog.
// Item names must be unique across the whole catalog.
func NewCatalog(categories []Category) (Catalog, error) {
	seenCategory := make(map[string]bool)
	seenItem := make(map[string]string)
	out := make([]Category, 0, len(categories))

	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return Catalog{}, fmt.Errorf("catalog: empty category name")
		}
		if seenCategory[name] {
			return Catalog{}, fmt.Errorf("catalog: duplicate category %q", name)
		}
		seenCategory[name] = true

		items := make([]string, 0, len(cat.Items))
		for _, item := range cat.Items {
			item = strings.TrimSpace(item)
			if item == "" {
				return Catalog{}, fmt.Errorf("catalog: empty item name in %q", name)
			}
			if prev, ok := seenItem[item]; ok {
				return Catalog{}, fmt.Errorf("catalog: item %q listed in both %q and %q", item, prev, name)
			}
			seenItem[item] = name
			items = append(items, item)
		}
		out = append(out, Category{Name: name, Items: items})
	}
	return Catalog{categories: out}, nil
}

// UnmarshalYAML reads a mapping of category -> list of names, keeping file order.
func (c *Catalog) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("catalog: line %d: expected a mapping of category to items", value.Line)
	}

	var categories []Category
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, itemsNode := value.Content[i], value.Content[i+1]
		var items []string
		if err := itemsNode.Decode(&items); err != nil {
			return fmt.Errorf("catalog: category %q: %w", keyNode.Value, err)
		}
		categories = append(categories, Category{Name: keyNode.Value, Items: items})
	}

	built, err := NewCatalog(categories)
	if err != nil {
		return err
	}
	*c = built
	return nil
}

// LoadCatalog parses a catalog YAML file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// Categories returns category names in file order.
func (c Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		names = append(names, cat.Name)
	}
	return names
}

// Items returns the ordered item names of a category, or nil when unknown.
func (c Catalog) Items(category string) []string {
	for _, cat := range c.categories {
		if cat.Name == category {
			return append([]string(nil), cat.Items...)
		}
	}
	return nil
}

// CategoryOf returns the category an item belongs to.
func (c Catalog) CategoryOf(item string) (string, bool) {
	for _, cat := range c.categories {
		for _, name := range cat.Items {
			if name == item {
				return cat.Name, true
			}
		}
	}
	return "", false
}

// Len is the total number of items.
func (c Catalog) Len() int {
	n := 0
	for _, cat := range c.categories {
		n += len(cat.Items)
	}
	return n
}

// Each calls fn for every (category, item) pair in order.
func (c Catalog) Each(fn func(category, item string)) {
	for _, cat := range c.categories {
		for _, name := range cat.Items {
			fn(cat.Name, name)
		}
	}
}
