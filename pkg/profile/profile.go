// Package profile implements the tag-driven routing policy: which ways a
// mode of transport may use, at what penalty, in which direction, and
// which turn restrictions apply to it. A Profile is pure and stateless —
// every method is a function of the tags passed in, which lets the same
// Profile value be shared across goroutines.
package profile

import (
	"math"
	"strings"
)

// Tags is an OSM element's tag set: key/value pairs. Values are looked up
// by exact key match, same as OSM tags themselves.
type Tags map[string]string

// Penalty is one entry of a Profile's penalty table: ways whose tags[Key]
// equals Value are weighted by Penalty. Lower is preferred; infinite
// penalty means impassable.
type Penalty struct {
	Key     string
	Value   string
	Penalty float32
}

// TurnRestrictionKind classifies how a profile should treat an OSM
// type=restriction relation.
type TurnRestrictionKind int

const (
	// Inapplicable means this profile does not honor the restriction at
	// all — either restrictions are disabled for the profile, the
	// relation isn't a restriction, it doesn't apply to this mode, or its
	// tags don't describe a kind this profile recognizes.
	Inapplicable TurnRestrictionKind = iota
	// Prohibitory means the restricted maneuver must not be taken
	// (no_left_turn, no_u_turn, ...).
	Prohibitory
	// Mandatory means the restricted maneuver is the only one allowed
	// (only_straight_on, ...).
	Mandatory
)

func (k TurnRestrictionKind) String() string {
	switch k {
	case Prohibitory:
		return "prohibitory"
	case Mandatory:
		return "mandatory"
	default:
		return "inapplicable"
	}
}

// Profile describes one mode of transport's routing policy.
type Profile struct {
	// Name identifies the profile, and also selects foot-specific
	// exceptions to the generic oneway and restriction rules — a
	// profile is treated as pedestrian policy iff Name == "foot".
	Name string

	// Penalties is scanned in order; the first entry whose Key/Value
	// matches a way's tags wins. A way matching no entry is impassable.
	Penalties []Penalty

	// Access lists the access tags this profile consults, from least to
	// most specific (e.g. "access", "vehicle", "motor_vehicle",
	// "motorcar"). Lookups scan it in reverse so the most specific
	// present tag wins, following OSM's access tag hierarchy.
	Access []string

	// DisallowMotorroad marks motorroad=yes ways as inaccessible — used
	// by profiles (bicycle, foot) that are legally barred from them even
	// where the profile's own access tags say nothing.
	DisallowMotorroad bool

	// DisableRestrictions makes RestrictionKind always return
	// Inapplicable, for modes that OSM turn restrictions don't generally
	// bind. No built-in profile sets it; the foot profile instead only
	// honors restriction:foot.
	DisableRestrictions bool
}

func isFinitePositive(f float32) bool {
	return !math.IsInf(float64(f), 0) && !math.IsNaN(float64(f)) && f > 0
}

// WayPenalty returns the cost multiplier for traversing a way with these
// tags, or +Inf if the way is impassable to this profile (no matching
// penalty entry, an infinite or non-positive matching entry, or the way
// fails IsAllowed).
func (p *Profile) WayPenalty(tags Tags) float32 {
	penalty := p.lookupPenalty(tags)
	if !isFinitePositive(penalty) || !p.IsAllowed(tags) {
		return float32(math.Inf(1))
	}
	return penalty
}

func (p *Profile) lookupPenalty(tags Tags) float32 {
	for _, entry := range p.Penalties {
		if tags[entry.Key] == entry.Value {
			return entry.Penalty
		}
	}
	return float32(math.Inf(1))
}

// IsAllowed reports whether this profile may use a way with these tags at
// all, independent of penalty — i.e. it isn't barred by motorroad or by
// an access tag resolving to "no" or "private".
func (p *Profile) IsAllowed(tags Tags) bool {
	if p.DisallowMotorroad && tags["motorroad"] == "yes" {
		return false
	}
	for i := len(p.Access) - 1; i >= 0; i-- {
		if v, ok := tags[p.Access[i]]; ok {
			return v != "no" && v != "private"
		}
	}
	return true
}

// WayDirection reports whether this profile may traverse a way with these
// tags in the direction the way is digitized (forward) and against it
// (backward).
func (p *Profile) WayDirection(tags Tags) (forward, backward bool) {
	forward, backward = true, true

	if !p.applyFootExceptions() {
		highway := tags["highway"]
		junction := tags["junction"]
		if highway == "motorway" || highway == "motorway_link" ||
			junction == "roundabout" || junction == "circular" {
			backward = false
		}
	}

	switch p.activeOnewayValue(tags) {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	}

	return forward, backward
}

// allowGenericOnewayOnFoot reports whether a foot profile should fall
// back to the generic "oneway" tag (rather than requiring "oneway:foot")
// for ways where a plain oneway tag is understood to describe pedestrian
// flow too, such as footways and platforms.
func allowGenericOnewayOnFoot(tags Tags) bool {
	switch tags["highway"] {
	case "footway", "path", "steps", "platform":
		return true
	}
	return tags["public_transport"] == "platform" || tags["railway"] == "platform"
}

func (p *Profile) activeOnewayValue(tags Tags) string {
	if p.applyFootExceptions() {
		if v, ok := tags["oneway:foot"]; ok {
			return v
		}
		if allowGenericOnewayOnFoot(tags) {
			return tags["oneway"]
		}
		return ""
	}

	for i := len(p.Access) - 1; i >= 0; i-- {
		mode := p.Access[i]
		if mode == "access" {
			continue
		}
		if v, ok := tags["oneway:"+mode]; ok {
			return v
		}
	}
	return tags["oneway"]
}

// restrictionDescriptions is the set of maneuver descriptions a
// restriction's kind tag is recognized to name. Anything else (e.g. a
// vehicle-class-only tag with no maneuver suffix) is not a kind this
// profile can act on.
var restrictionDescriptions = map[string]bool{
	"right_turn":  true,
	"left_turn":   true,
	"u_turn":      true,
	"straight_on": true,
}

// RestrictionKind classifies a type=restriction relation's tags for this
// profile.
func (p *Profile) RestrictionKind(tags Tags) TurnRestrictionKind {
	if p.DisableRestrictions || tags["type"] != "restriction" || p.isExempted(tags) {
		return Inapplicable
	}

	tag := p.activeRestrictionTag(tags)
	kind, description, found := strings.Cut(tag, "_")
	if !found {
		kind, description = "", ""
	}

	switch kind {
	case "no":
		if !restrictionDescriptions[description] {
			return Inapplicable
		}
		return Prohibitory
	case "only":
		if !restrictionDescriptions[description] {
			return Inapplicable
		}
		return Mandatory
	default:
		return Inapplicable
	}
}

func (p *Profile) activeRestrictionTag(tags Tags) string {
	if p.applyFootExceptions() {
		return tags["restriction:foot"]
	}
	for i := len(p.Access) - 1; i >= 0; i-- {
		mode := p.Access[i]
		if mode == "access" {
			continue
		}
		if v, ok := tags["restriction:"+mode]; ok {
			return v
		}
	}
	return tags["restriction"]
}

// isExempted reports whether this profile's mode appears in the
// relation's except=a;b;c tag.
func (p *Profile) isExempted(tags Tags) bool {
	except, ok := tags["except"]
	if !ok || except == "" {
		return false
	}
	for _, mode := range strings.Split(except, ";") {
		mode = strings.TrimSpace(mode)
		for _, a := range p.Access {
			if a == mode {
				return true
			}
		}
	}
	return false
}

func (p *Profile) applyFootExceptions() bool {
	return p.Name == "foot"
}
