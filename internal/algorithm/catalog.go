package algorithm

// Catalog is the self-describing listing of both algorithm families, served
// verbatim by the algorithms read view.
type Catalog struct {
	Growth    map[string]Info `json:"growth"`
	LevelCost map[string]Info `json:"levelCost"`
}

// BuildCatalog snapshots the registries into a catalog.
func BuildCatalog() Catalog {
	c := Catalog{
		Growth:    make(map[string]Info, len(growthRegistry)),
		LevelCost: make(map[string]Info, len(levelCostRegistry)),
	}
	for id, e := range growthRegistry {
		c.Growth[id] = e.info
	}
	for id, e := range levelCostRegistry {
		c.LevelCost[id] = e.info
	}
	return c
}
