package profile

// These built-in profiles are the standard library of routing policies:
// one per mode named in the external interface (see cmd/preprocess,
// cmd/route). Penalty tables are listed most-specific-first since
// WayPenalty takes the first match.

import "math"

var inf = float32(math.Inf(1))

// CarProfile routes private motor vehicles.
var CarProfile = Profile{
	Name: "motorcar",
	Access: []string{
		"access", "vehicle", "motor_vehicle", "motorcar",
	},
	Penalties: []Penalty{
		{"highway", "motorway", 1.0},
		{"highway", "motorway_link", 1.1},
		{"highway", "trunk", 1.1},
		{"highway", "trunk_link", 1.2},
		{"highway", "primary", 1.3},
		{"highway", "primary_link", 1.4},
		{"highway", "secondary", 1.5},
		{"highway", "secondary_link", 1.6},
		{"highway", "tertiary", 1.7},
		{"highway", "tertiary_link", 1.8},
		{"highway", "unclassified", 2.0},
		{"highway", "residential", 2.0},
		{"highway", "living_street", 3.0},
		{"highway", "service", 3.5},
		{"highway", "track", inf},
		{"highway", "path", inf},
		{"highway", "footway", inf},
		{"highway", "cycleway", inf},
		{"highway", "pedestrian", inf},
		{"highway", "steps", inf},
		{"highway", "bridleway", inf},
		{"highway", "construction", inf},
		{"highway", "proposed", inf},
	},
}

// BusProfile routes buses, additionally honoring a ZTM-style
// routing:ztm exception tag used by some public-transport datasets to
// grant buses access to otherwise-restricted ways.
var BusProfile = Profile{
	Name: "bus",
	Access: []string{
		"access", "vehicle", "motor_vehicle", "psv", "bus", "routing:ztm",
	},
	Penalties: []Penalty{
		{"highway", "motorway", 1.0},
		{"highway", "motorway_link", 1.1},
		{"highway", "trunk", 1.1},
		{"highway", "trunk_link", 1.2},
		{"highway", "primary", 1.3},
		{"highway", "primary_link", 1.4},
		{"highway", "secondary", 1.4},
		{"highway", "secondary_link", 1.5},
		{"highway", "tertiary", 1.5},
		{"highway", "tertiary_link", 1.6},
		{"highway", "unclassified", 1.8},
		{"highway", "residential", 1.8},
		{"highway", "living_street", 2.5},
		{"highway", "service", 2.5},
		{"highway", "track", inf},
		{"highway", "path", inf},
		{"highway", "footway", inf},
		{"highway", "cycleway", inf},
		{"highway", "steps", inf},
	},
}

// BicycleProfile routes bicycles.
var BicycleProfile = Profile{
	Name:              "bicycle",
	DisallowMotorroad: true,
	Access: []string{
		"access", "vehicle", "bicycle",
	},
	Penalties: []Penalty{
		{"highway", "cycleway", 1.0},
		{"highway", "path", 1.1},
		{"highway", "track", 1.2},
		{"highway", "residential", 1.2},
		{"highway", "living_street", 1.2},
		{"highway", "unclassified", 1.3},
		{"highway", "service", 1.3},
		{"highway", "tertiary", 1.4},
		{"highway", "tertiary_link", 1.4},
		{"highway", "secondary", 1.7},
		{"highway", "secondary_link", 1.7},
		{"highway", "primary", 2.2},
		{"highway", "primary_link", 2.2},
		{"highway", "trunk", inf},
		{"highway", "trunk_link", inf},
		{"highway", "motorway", inf},
		{"highway", "motorway_link", inf},
		{"highway", "pedestrian", 1.5},
		{"highway", "footway", 1.5},
		{"highway", "bridleway", 1.5},
		{"highway", "steps", inf},
	},
}

// FootProfile routes pedestrians. Name must stay "foot" — it's the
// sentinel Profile.applyFootExceptions checks to switch on the
// pedestrian-specific oneway/restriction tag resolution.
var FootProfile = Profile{
	Name:              "foot",
	DisallowMotorroad: true,
	Access: []string{
		"access", "foot",
	},
	Penalties: []Penalty{
		{"highway", "footway", 1.0},
		{"highway", "pedestrian", 1.0},
		{"highway", "path", 1.0},
		{"highway", "steps", 1.3},
		{"highway", "living_street", 1.1},
		{"highway", "residential", 1.2},
		{"highway", "unclassified", 1.2},
		{"highway", "service", 1.2},
		{"highway", "tertiary", 1.3},
		{"highway", "tertiary_link", 1.3},
		{"highway", "secondary", 1.4},
		{"highway", "secondary_link", 1.4},
		{"highway", "primary", 1.6},
		{"highway", "primary_link", 1.6},
		{"highway", "trunk", inf},
		{"highway", "trunk_link", inf},
		{"highway", "motorway", inf},
		{"highway", "motorway_link", inf},
		{"highway", "cycleway", 1.2},
		{"highway", "bridleway", 1.2},
		{"highway", "track", 1.2},
		{"public_transport", "platform", 1.0},
		{"railway", "platform", 1.0},
	},
}

// RailwayProfile routes heavy/commuter rail.
var RailwayProfile = Profile{
	Name:   "train",
	Access: []string{"access", "train"},
	Penalties: []Penalty{
		{"railway", "rail", 1.0},
		{"railway", "light_rail", 1.5},
	},
}

// TramProfile routes trams/streetcars.
var TramProfile = Profile{
	Name:   "tram",
	Access: []string{"access", "tram"},
	Penalties: []Penalty{
		{"railway", "tram", 1.0},
	},
}

// SubwayProfile routes metro/subway systems.
var SubwayProfile = Profile{
	Name:   "subway",
	Access: []string{"access", "subway"},
	Penalties: []Penalty{
		{"railway", "subway", 1.0},
	},
}

// ByName returns the built-in profile with the given name, and false if
// there isn't one.
func ByName(name string) (Profile, bool) {
	switch name {
	case "motorcar", "car":
		return CarProfile, true
	case "bus":
		return BusProfile, true
	case "bicycle":
		return BicycleProfile, true
	case "foot":
		return FootProfile, true
	case "train", "railway":
		return RailwayProfile, true
	case "tram":
		return TramProfile, true
	case "subway":
		return SubwayProfile, true
	default:
		return Profile{}, false
	}
}
