package benchmark

// builtinEntries is the shipped industry table.  Values are annual revenue and
// cost-per-click in USD.
var builtinEntries = []Entry{
	{IndustryKey: "accounting", AvgRevenue: 420000, AvgEmployees: 5, GrowthRate: 0.03, AvgCPC: 6.80},
	{IndustryKey: "auto_repair", AvgRevenue: 610000, AvgEmployees: 7, GrowthRate: 0.02, AvgCPC: 4.10},
	{IndustryKey: "cleaning", AvgRevenue: 310000, AvgEmployees: 9, GrowthRate: 0.05, AvgCPC: 3.60},
	{IndustryKey: "dental", AvgRevenue: 1200000, AvgEmployees: 11, GrowthRate: 0.04, AvgCPC: 9.20},
	{IndustryKey: "electrical", AvgRevenue: 720000, AvgEmployees: 8, GrowthRate: 0.05, AvgCPC: 7.40},
	{IndustryKey: "hvac", AvgRevenue: 850000, AvgEmployees: 10, GrowthRate: 0.06, AvgCPC: 11.50},
	{IndustryKey: "landscaping", AvgRevenue: 450000, AvgEmployees: 8, GrowthRate: 0.04, AvgCPC: 4.30},
	{IndustryKey: "pest_control", AvgRevenue: 540000, AvgEmployees: 6, GrowthRate: 0.05, AvgCPC: 8.90},
	{IndustryKey: "plumbing", AvgRevenue: 680000, AvgEmployees: 7, GrowthRate: 0.05, AvgCPC: 10.20},
	{IndustryKey: "restaurant", AvgRevenue: 900000, AvgEmployees: 15, GrowthRate: 0.03, AvgCPC: 1.90},
	{IndustryKey: "retail", AvgRevenue: 500000, AvgEmployees: 6, GrowthRate: 0.02, AvgCPC: 1.20},
	{IndustryKey: "roofing", AvgRevenue: 1100000, AvgEmployees: 12, GrowthRate: 0.05, AvgCPC: 12.80},
	{IndustryKey: "veterinary", AvgRevenue: 1500000, AvgEmployees: 14, GrowthRate: 0.06, AvgCPC: 5.70},
}

// builtinMultipliers is the shipped cost-of-living table keyed by US state.
var builtinMultipliers = []GeoMultiplier{
	{RegionCode: "CA", Multiplier: 1.40},
	{RegionCode: "CO", Multiplier: 1.10},
	{RegionCode: "FL", Multiplier: 1.05},
	{RegionCode: "GA", Multiplier: 0.95},
	{RegionCode: "IL", Multiplier: 1.05},
	{RegionCode: "MA", Multiplier: 1.30},
	{RegionCode: "MS", Multiplier: 0.85},
	{RegionCode: "NJ", Multiplier: 1.25},
	{RegionCode: "NY", Multiplier: 1.35},
	{RegionCode: "OH", Multiplier: 0.90},
	{RegionCode: "TX", Multiplier: 1.00},
	{RegionCode: "WA", Multiplier: 1.25},
}

// Defaults returns a Registry over the built-in tables.
func Defaults() *Registry {
	r, err := NewRegistry(builtinEntries, builtinMultipliers, DefaultIndustry)
	if err != nil {
		// The built-in table is a compile-time constant; a failure here is a bug.
		panic(err)
	}
	return r
}

// WithOverrides builds a Registry that starts from the built-in tables and
// replaces or adds the supplied entries and multipliers.  An empty
// defaultIndustry keeps DefaultIndustry.
func WithOverrides(entries []Entry, multipliers []GeoMultiplier, defaultIndustry string) (*Registry, error) {
	mergedEntries := make(map[string]Entry, len(builtinEntries)+len(entries))
	order := make([]string, 0, len(builtinEntries)+len(entries))
	for _, e := range append(append([]Entry{}, builtinEntries...), entries...) {
		key := NormalizeIndustry(e.IndustryKey)
		if _, seen := mergedEntries[key]; !seen {
			order = append(order, key)
		}
		mergedEntries[key] = e
	}
	flatEntries := make([]Entry, 0, len(order))
	for _, k := range order {
		flatEntries = append(flatEntries, mergedEntries[k])
	}

	mergedGeo := make(map[string]GeoMultiplier, len(builtinMultipliers)+len(multipliers))
	geoOrder := make([]string, 0, len(builtinMultipliers)+len(multipliers))
	for _, m := range append(append([]GeoMultiplier{}, builtinMultipliers...), multipliers...) {
		code := NormalizeRegion(m.RegionCode)
		if _, seen := mergedGeo[code]; !seen {
			geoOrder = append(geoOrder, code)
		}
		mergedGeo[code] = m
	}
	flatGeo := make([]GeoMultiplier, 0, len(geoOrder))
	for _, k := range geoOrder {
		flatGeo = append(flatGeo, mergedGeo[k])
	}

	return NewRegistry(flatEntries, flatGeo, defaultIndustry)
}

//Personal.AI order the ending
