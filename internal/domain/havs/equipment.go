package havs

import (
	"fmt"
	"strings"
)

const (
	CategoryCivils         = "CIVILS"
	CategoryJointing       = "JOINTING"
	CategoryOverheads      = "OVERHEADS"
	CategoryEarthPinDriver = "EARTH PIN DRIVER"
)

type Equipment struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type EquipmentGroup struct {
	Category string      `json:"category"`
	Items    []Equipment `json:"items"`
}

var catalog = []EquipmentGroup{
	{Category: CategoryCivils, Items: []Equipment{
		{Name: "Hydraulic Breaker"},
		{Name: "Petrol Breaker"},
		{Name: "Electric Breaker"},
		{Name: "Petrol Cut-Off Saw"},
		{Name: "Vibrating Plate"},
		{Name: "Trench Rammer"},
		{Name: "Road Saw"},
		{Name: "Rotary Hammer Drill"},
	}},
	{Category: CategoryJointing, Items: []Equipment{
		{Name: "Cable Saw"},
		{Name: "Battery Hammer Drill"},
		{Name: "Angle Grinder"},
		{Name: "Impact Driver"},
		{Name: "Reciprocating Saw"},
	}},
	{Category: CategoryOverheads, Items: []Equipment{
		{Name: "Pole Saw"},
		{Name: "Chainsaw"},
		{Name: "Hedge Trimmer"},
		{Name: "Impact Wrench"},
		{Name: "Pole Drill"},
	}},
	{Category: CategoryEarthPinDriver, Items: []Equipment{
		{Name: "Earth Pin Driver"},
	}},
}

var catalogIndex = func() map[string]Equipment {
	idx := make(map[string]Equipment)
	for _, g := range catalog {
		for _, it := range g.Items {
			idx[strings.ToLower(it.Name)] = Equipment{Name: it.Name, Category: g.Category}
		}
	}
	return idx
}()

// Catalog returns the fixed equipment list grouped by category. The caller may
// modify the result.
func Catalog() []EquipmentGroup {
	out := make([]EquipmentGroup, 0, len(catalog))
	for _, g := range catalog {
		items := make([]Equipment, 0, len(g.Items))
		for _, it := range g.Items {
			items = append(items, Equipment{Name: it.Name, Category: g.Category})
		}
		out = append(out, EquipmentGroup{Category: g.Category, Items: items})
	}
	return out
}

// LookupEquipment resolves a tool by name, ignoring case and surrounding space.
func LookupEquipment(name string) (Equipment, error) {
	eq, ok := catalogIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Equipment{}, fmt.Errorf("%w: %q", ErrUnknownEquipment, name)
	}
	return eq, nil
}
