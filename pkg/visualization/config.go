// Package visualization holds the physics core of the job map: star-shaped
// clusters, their per-cluster force simulations, and the resolvers that keep
// clusters from overlapping. Nothing here renders; callers read positions.
package visualization

import (
	"math"

	"github.com/dd0wney/scout/pkg/validation"
)

// Config holds every physics constant. Zero values are not meaningful; start
// from DefaultConfig.
type Config struct {
	// Link force: target distance LinkBaseDistance*(1-score)+LinkBaseDistance.
	LinkBaseDistance float64 `yaml:"link_base_distance"`
	LinkStrength     float64 `yaml:"link_strength"`

	// Many-body charge; negative repels.
	ChargeStrength float64 `yaml:"charge_strength"`
	// ChargeDistanceMin bounds the charge singularity for near-coincident nodes.
	ChargeDistanceMin float64 `yaml:"charge_distance_min"`

	// Collision radius per node is its rendered radius plus CollidePadding.
	CollidePadding  float64 `yaml:"collide_padding"`
	CollideStrength float64 `yaml:"collide_strength"`

	// Centering pull toward the cluster anchor on each axis.
	CenteringStrength float64 `yaml:"centering_strength"`

	VelocityDecay float64 `yaml:"velocity_decay"`
	AlphaMin      float64 `yaml:"alpha_min"`
	AlphaDecay    float64 `yaml:"alpha_decay"`

	// Inter-cluster node collision.
	CollisionPadding float64 `yaml:"collision_padding"`
	CollisionPush    float64 `yaml:"collision_push"`
	CollisionImpulse float64 `yaml:"collision_impulse"`

	// Cluster separation.
	SeparationMargin   float64 `yaml:"separation_margin"`
	MinSeparation      float64 `yaml:"min_separation"`
	SeparationStrength float64 `yaml:"separation_strength"`
	SeparationImpulse  float64 `yaml:"separation_impulse"`
	RigidShiftFactor   float64 `yaml:"rigid_shift_factor"`
}

// DefaultConfig returns the tuned constants of the job map.
func DefaultConfig() Config {
	alphaMin := 0.001
	return Config{
		LinkBaseDistance:   150,
		LinkStrength:       0.2,
		ChargeStrength:     -200,
		ChargeDistanceMin:  1,
		CollidePadding:     30,
		CollideStrength:    1,
		CenteringStrength:  0.05,
		VelocityDecay:      0.4,
		AlphaMin:           alphaMin,
		AlphaDecay:         1 - math.Pow(alphaMin, 1.0/300),
		CollisionPadding:   10,
		CollisionPush:      2,
		CollisionImpulse:   0.5,
		SeparationMargin:   50,
		MinSeparation:      100,
		SeparationStrength: 0.2,
		SeparationImpulse:  15,
		RigidShiftFactor:   1.5,
	}
}

// Validate reports every out-of-range constant.
func (c Config) Validate() error {
	return validation.NewConfigValidator("Physics").
		PositiveFloat("LinkBaseDistance", c.LinkBaseDistance).
		RangeFloat("LinkStrength", c.LinkStrength, 0, 1).
		RangeFloat("ChargeStrength", c.ChargeStrength, math.Inf(-1), 0).
		PositiveFloat("ChargeDistanceMin", c.ChargeDistanceMin).
		NonNegativeFloat("CollidePadding", c.CollidePadding).
		RangeFloat("CollideStrength", c.CollideStrength, 0, 1).
		RangeFloat("CenteringStrength", c.CenteringStrength, 0, 1).
		RangeFloat("VelocityDecay", c.VelocityDecay, 0, 1).
		RangeFloat("AlphaMin", c.AlphaMin, 0, 1).
		RangeFloat("AlphaDecay", c.AlphaDecay, 0, 1).
		NonNegativeFloat("CollisionPadding", c.CollisionPadding).
		NonNegativeFloat("CollisionPush", c.CollisionPush).
		NonNegativeFloat("CollisionImpulse", c.CollisionImpulse).
		NonNegativeFloat("SeparationMargin", c.SeparationMargin).
		NonNegativeFloat("MinSeparation", c.MinSeparation).
		NonNegativeFloat("SeparationStrength", c.SeparationStrength).
		NonNegativeFloat("SeparationImpulse", c.SeparationImpulse).
		PositiveFloat("RigidShiftFactor", c.RigidShiftFactor).
		Validate()
}

// LinkDistance is the rest length of a center link to a node with the given
// score: higher scores sit closer.
func (c Config) LinkDistance(score float64) float64 {
	return c.LinkBaseDistance*(1-score) + c.LinkBaseDistance
}
