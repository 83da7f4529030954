package model

import "fmt"

// Category represents one entry of the spending taxonomy.
type Category struct {
	ID          string
	DisplayName string
	Aliases     []string // lowercased, deduplicated, config order
}

// Validate ensures the category satisfies the taxonomy invariants.
func (c *Category) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("category id is required")
	}
	for _, alias := range c.Aliases {
		if alias == "" {
			return fmt.Errorf("category %q has an empty alias", c.ID)
		}
	}
	return nil
}
