package config

import "github.com/go-gl/mathgl/mgl64"

// FollowParams are the spring-damper gains pulling a piece's bottom anchor to
// its parent's top anchor. A piece may carry its own override; otherwise the
// chain defaults apply.
type FollowParams struct {
	Spring  float64 `yaml:"spring"`  // desired-velocity gain per meter of error
	Damping float64 `yaml:"damping"` // acceleration gain per m/s of velocity error
	Orient  float64 `yaml:"orient"`  // torque gain; <= 0 disables orientation control
	// Gap is the world-space offset added to the parent's top anchor when
	// computing the follow target and when snapping on structural changes.
	Gap mgl64.Vec3 `yaml:"gap"`
	// BreakDistance soft-detaches the piece when the anchor error exceeds it.
	// <= 0 disables the check.
	BreakDistance float64 `yaml:"break_distance"`
}

// ChainConfig contains the default follow parameters and structural limits.
type ChainConfig struct {
	Follow FollowParams `yaml:"follow"`
	// MaxLength bounds chain walks so a corrupted graph cannot loop forever.
	MaxLength int `yaml:"max_length"`
}

// WobbleConfig tunes the purely cosmetic lean solver.
type WobbleConfig struct {
	VelocityGain    float64 `yaml:"velocity_gain"`
	AccelGain       float64 `yaml:"accel_gain"`
	InvertDrive     bool    `yaml:"invert_drive"`
	BaseMaxLeanDeg  float64 `yaml:"base_max_lean_deg"`
	AmplifyPerLevel float64 `yaml:"amplify_per_level"` // gain multiplier per chain level
	LagPerLevel     float64 `yaml:"lag_per_level"`     // seconds of lag time constant per level
	UprightBias     float64 `yaml:"upright_bias"`      // pull toward zero lean
	Frequency       float64 `yaml:"frequency"`         // spring angular frequency (rad/s)
	DampingRatio    float64 `yaml:"damping_ratio"`     // 1 = critically damped
	VelocityBlend   float64 `yaml:"velocity_blend"`    // smoothing factor per step
}

// CarryConfig tunes pickup, the group search volume and the putdown drop.
type CarryConfig struct {
	PickupRange  float64 `yaml:"pickup_range"`
	SearchRadius float64 `yaml:"search_radius"` // horizontal extent of the group search volume
	SearchHeight float64 `yaml:"search_height"` // upward extent of the group search volume
	DropDistance float64 `yaml:"drop_distance"`
	// RotateOthers applies the held piece's rotation delta to the rest of the
	// carry group. Off: other members translate only.
	RotateOthers bool `yaml:"rotate_others"`
	// HoldOffset is the default local offset of a held piece relative to the
	// carrier transform, captured into the piece at spawn.
	HoldOffset mgl64.Vec3 `yaml:"hold_offset"`
}

// BreakConfig tunes the sustained-tilt break-off watchdog.
type BreakConfig struct {
	AngleDeg         float64 `yaml:"angle_deg"`
	SustainSeconds   float64 `yaml:"sustain_seconds"`
	ImpulseMagnitude float64 `yaml:"impulse_magnitude"`
	VelocityBlend    float64 `yaml:"velocity_blend"` // parent velocity smoothing per step
	// SpawnDelaySteps is the number of extra ticks after the current one
	// before the replacement body spawns.
	SpawnDelaySteps int     `yaml:"spawn_delay_steps"`
	ShakeDuration   float64 `yaml:"shake_duration"`
	ShakeMagnitude  float64 `yaml:"shake_magnitude"`
}

// Falloff modes for the attraction force.
const (
	FalloffLinear  = "linear"
	FalloffInverse = "inverse"
)

// MagnetConfig tunes the pairwise attraction field and the proximity
// self-destruct timer.
type MagnetConfig struct {
	Range           float64 `yaml:"range"`
	Strength        float64 `yaml:"strength"`
	Falloff         string  `yaml:"falloff"` // FalloffLinear or FalloffInverse
	Power           float64 `yaml:"power"`
	MinDistance     float64 `yaml:"min_distance"`
	MaxForcePerPair float64 `yaml:"max_force_per_pair"` // <= 0 disables the clamp
	LineOfSight     bool    `yaml:"line_of_sight"`      // gate pairs on an obstacle raycast

	ProximityRadius    float64 `yaml:"proximity_radius"`
	TimeToSelfDestruct float64 `yaml:"time_to_self_destruct"`
}

// SimConfig drives the fixed-step loop.
type SimConfig struct {
	TickRate int `yaml:"tick_rate"`
}

// Delta returns the fixed step duration in seconds.
func (s SimConfig) Delta() float64 {
	if s.TickRate <= 0 {
		return 1.0 / 60.0
	}
	return 1.0 / float64(s.TickRate)
}

// Global configuration instances
var (
	Chain  ChainConfig
	Wobble WobbleConfig
	Carry  CarryConfig
	Break  BreakConfig
	Magnet MagnetConfig
	Sim    SimConfig
)

func init() {
	Chain = ChainConfig{
		Follow: FollowParams{
			Spring:        12.0,
			Damping:       8.0,
			Orient:        4.0,
			Gap:           mgl64.Vec3{0, 0.02, 0},
			BreakDistance: 1.5,
		},
		MaxLength: 256,
	}

	Wobble = WobbleConfig{
		VelocityGain:    0.06,
		AccelGain:       0.015,
		InvertDrive:     true,
		BaseMaxLeanDeg:  10.0,
		AmplifyPerLevel: 1.25,
		LagPerLevel:     0.035,
		UprightBias:     0.2,
		Frequency:       9.0,
		DampingRatio:    1.0,
		VelocityBlend:   0.5,
	}

	Carry = CarryConfig{
		PickupRange:  1.2,
		SearchRadius: 0.6,
		SearchHeight: 6.0,
		DropDistance: 0.9,
		RotateOthers: false,
		HoldOffset:   mgl64.Vec3{0, 1.0, 0},
	}

	Break = BreakConfig{
		AngleDeg:         38.0,
		SustainSeconds:   0.35,
		ImpulseMagnitude: 2.5,
		VelocityBlend:    0.5,
		SpawnDelaySteps:  1,
		ShakeDuration:    0.25,
		ShakeMagnitude:   0.4,
	}

	Magnet = MagnetConfig{
		Range:              4.0,
		Strength:           6.0,
		Falloff:            FalloffLinear,
		Power:              2.0,
		MinDistance:        0.25,
		MaxForcePerPair:    30.0,
		LineOfSight:        false,
		ProximityRadius:    0.5,
		TimeToSelfDestruct: 1.5,
	}

	Sim = SimConfig{TickRate: 60}
}
