package presentation

// Catalog is the read-only set of sections built once at startup.
type Catalog struct {
	ordered []Section
	byID    map[string]int
}

func NewCatalog(sections []Section) *Catalog {
	c := &Catalog{
		ordered: sections,
		byID:    make(map[string]int, len(sections)),
	}
	for i, s := range sections {
		c.byID[s.ID] = i
	}
	return c
}

// All returns the sections in display order. Callers must not modify them.
func (c *Catalog) All() []Section {
	return c.ordered
}

func (c *Catalog) Get(id string) (Section, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Section{}, false
	}
	return c.ordered[i], true
}
