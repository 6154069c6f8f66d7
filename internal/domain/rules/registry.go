package rules

import (
	"fmt"
	"sort"
)

// catalog holds every rule definition keyed by ID. It is filled by init
// functions and read-only afterwards.
var catalog = make(map[string]RuleDef)

func register(def RuleDef) {
	if _, dup := catalog[def.ID]; dup {
		panic(fmt.Sprintf("rules: duplicate rule id %s", def.ID))
	}
	catalog[def.ID] = def
}

// All returns every rule definition ordered by ID.
func All() []RuleDef {
	out := make([]RuleDef, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByID returns a rule definition.
func ByID(id string) (RuleDef, bool) {
	def, ok := catalog[id]
	return def, ok
}
