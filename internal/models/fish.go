package models

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// FishType is a catalog entry.
type FishType struct {
	Key        string      `json:"key"`
	Name       string      `json:"name"`
	WaterTypes []WaterType `json:"water_types"`
}

// FishCatalog answers which fish types live in which water.
type FishCatalog struct {
	byKey   map[string]FishType
	byWater map[WaterType][]string
}

var defaultFish = []FishType{
	{Key: "pike", Name: "Pike", WaterTypes: []WaterType{WaterFresh, WaterBrackish}},
	{Key: "perch", Name: "Perch", WaterTypes: []WaterType{WaterFresh, WaterBrackish}},
	{Key: "zander", Name: "Zander", WaterTypes: []WaterType{WaterFresh, WaterBrackish}},
	{Key: "carp", Name: "Carp", WaterTypes: []WaterType{WaterFresh}},
	{Key: "bream", Name: "Bream", WaterTypes: []WaterType{WaterFresh}},
	{Key: "roach", Name: "Roach", WaterTypes: []WaterType{WaterFresh}},
	{Key: "tench", Name: "Tench", WaterTypes: []WaterType{WaterFresh}},
	{Key: "trout", Name: "Trout", WaterTypes: []WaterType{WaterFresh}},
	{Key: "catfish", Name: "Catfish", WaterTypes: []WaterType{WaterFresh}},
	{Key: "eel", Name: "Eel", WaterTypes: []WaterType{WaterFresh, WaterBrackish, WaterSalt}},
	{Key: "salmon", Name: "Salmon", WaterTypes: []WaterType{WaterFresh, WaterSalt}},
	{Key: "seabass", Name: "Sea bass", WaterTypes: []WaterType{WaterSalt, WaterBrackish}},
	{Key: "flounder", Name: "Flounder", WaterTypes: []WaterType{WaterSalt, WaterBrackish}},
	{Key: "mullet", Name: "Mullet", WaterTypes: []WaterType{WaterSalt, WaterBrackish}},
	{Key: "cod", Name: "Cod", WaterTypes: []WaterType{WaterSalt}},
	{Key: "mackerel", Name: "Mackerel", WaterTypes: []WaterType{WaterSalt}},
	{Key: "herring", Name: "Herring", WaterTypes: []WaterType{WaterSalt, WaterBrackish}},
	{Key: "tuna", Name: "Tuna", WaterTypes: []WaterType{WaterSalt}},
	{Key: "sea_bream", Name: "Sea bream", WaterTypes: []WaterType{WaterSalt}},
	{Key: "pollock", Name: "Pollock", WaterTypes: []WaterType{WaterSalt}},
}

// DefaultFishCatalog returns the built-in catalog.
func DefaultFishCatalog() *FishCatalog {
	c, _ := newFishCatalog(defaultFish)
	return c
}

// LoadFishCatalogJSON reads a catalog from a JSON array of fish types.
func LoadFishCatalogJSON(path string) (*FishCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []FishType
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("fish catalog is empty")
	}
	return newFishCatalog(arr)
}

func newFishCatalog(list []FishType) (*FishCatalog, error) {
	c := &FishCatalog{
		byKey:   make(map[string]FishType, len(list)),
		byWater: make(map[WaterType][]string),
	}
	for i, f := range list {
		if f.Key == "" {
			return nil, fmt.Errorf("missing key at index %d", i)
		}
		if f.Key == CustomFish {
			return nil, fmt.Errorf("key %q is reserved", CustomFish)
		}
		if _, dup := c.byKey[f.Key]; dup {
			return nil, fmt.Errorf("duplicate key %q", f.Key)
		}
		for _, w := range f.WaterTypes {
			if !w.Valid() {
				return nil, fmt.Errorf("fish %q has unknown water type %q", f.Key, w)
			}
			c.byWater[w] = append(c.byWater[w], f.Key)
		}
		c.byKey[f.Key] = f
	}
	for w := range c.byWater {
		sort.Strings(c.byWater[w])
	}
	return c, nil
}

// Allows reports whether fish may be listed for a spot of water type w.
// The custom marker is always allowed.
func (c *FishCatalog) Allows(w WaterType, fish string) bool {
	if fish == CustomFish {
		return true
	}
	f, ok := c.byKey[fish]
	if !ok {
		return false
	}
	for _, fw := range f.WaterTypes {
		if fw == w {
			return true
		}
	}
	return false
}

// ForWater lists the fish keys valid for w, sorted.
func (c *FishCatalog) ForWater(w WaterType) []FishType {
	keys := c.byWater[w]
	out := make([]FishType, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.byKey[k])
	}
	return out
}

func (c *FishCatalog) Name(key string) string {
	if f, ok := c.byKey[key]; ok {
		return f.Name
	}
	return key
}

// CustomFishType is a user-defined fish name kept in its own collection.
type CustomFishType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	WaterType WaterType `json:"water_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

func (c *CustomFishType) GetID() string { return c.ID }
func (c *CustomFishType) SetID(id string) { c.ID = id }
func (c *CustomFishType) GetCreatedAt() time.Time { return c.CreatedAt }
func (c *CustomFishType) SetCreatedAt(t time.Time) { c.CreatedAt = t }
func (c *CustomFishType) LastModified() time.Time { return c.CreatedAt }
