package transition

import (
	"time"

	"github.com/dd0wney/scout/pkg/validation"
)

// Config holds the choreography timings of every transition.
type Config struct {
	// Promote
	PromoteDelay    time.Duration `yaml:"promote_delay"`
	PromoteFadeOut  time.Duration `yaml:"promote_fade_out"`
	ChosenFadeOut   time.Duration `yaml:"chosen_fade_out"`
	PlaceholderGrow time.Duration `yaml:"placeholder_grow"`
	PromotedRadius  float64       `yaml:"promoted_radius"`

	// Detach
	DetachDelay        time.Duration `yaml:"detach_delay"`
	DetachFadeOut      time.Duration `yaml:"detach_fade_out"`
	DetachGrowFactor   float64       `yaml:"detach_grow_factor"`
	DetachGrow         time.Duration `yaml:"detach_grow"`
	OrphanHold         time.Duration `yaml:"orphan_hold"`
	PlaceholderFadeOut time.Duration `yaml:"placeholder_fade_out"`

	// In-place reveal
	RevealDelay      time.Duration `yaml:"reveal_delay"`
	CrossFade        time.Duration `yaml:"cross_fade"`
	LinkStagger      time.Duration `yaml:"link_stagger"`
	LinkReveal       time.Duration `yaml:"link_reveal"`
	NodeStagger      time.Duration `yaml:"node_stagger"`
	NodeReveal       time.Duration `yaml:"node_reveal"`
	FirstBurst       float64       `yaml:"first_burst"`
	SecondBurst      float64       `yaml:"second_burst"`
	SecondBurstDelay time.Duration `yaml:"second_burst_delay"`
	CenterHold       time.Duration `yaml:"center_hold"`

	// Reinforcement
	ReinforceFadeOut time.Duration `yaml:"reinforce_fade_out"`
	Emphasis         time.Duration `yaml:"emphasis"`

	// FetchTimeout bounds each job_as_query or reinforce request.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// DefaultConfig returns the tuned timings.
func DefaultConfig() Config {
	return Config{
		PromoteDelay:       500 * time.Millisecond,
		PromoteFadeOut:     400 * time.Millisecond,
		ChosenFadeOut:      300 * time.Millisecond,
		PlaceholderGrow:    600 * time.Millisecond,
		PromotedRadius:     70,
		DetachDelay:        500 * time.Millisecond,
		DetachFadeOut:      400 * time.Millisecond,
		DetachGrowFactor:   1.2,
		DetachGrow:         300 * time.Millisecond,
		OrphanHold:         800 * time.Millisecond,
		PlaceholderFadeOut: 400 * time.Millisecond,
		RevealDelay:        300 * time.Millisecond,
		CrossFade:          300 * time.Millisecond,
		LinkStagger:        25 * time.Millisecond,
		LinkReveal:         500 * time.Millisecond,
		NodeStagger:        30 * time.Millisecond,
		NodeReveal:         600 * time.Millisecond,
		FirstBurst:         0.3,
		SecondBurst:        0.8,
		SecondBurstDelay:   500 * time.Millisecond,
		CenterHold:         1000 * time.Millisecond,
		ReinforceFadeOut:   600 * time.Millisecond,
		Emphasis:           3000 * time.Millisecond,
		FetchTimeout:       10 * time.Second,
	}
}

// Validate reports every out-of-range timing.
func (c Config) Validate() error {
	return validation.NewConfigValidator("Transitions").
		NonNegativeDuration("PromoteDelay", c.PromoteDelay).
		NonNegativeDuration("PromoteFadeOut", c.PromoteFadeOut).
		NonNegativeDuration("ChosenFadeOut", c.ChosenFadeOut).
		NonNegativeDuration("PlaceholderGrow", c.PlaceholderGrow).
		PositiveFloat("PromotedRadius", c.PromotedRadius).
		NonNegativeDuration("DetachDelay", c.DetachDelay).
		NonNegativeDuration("DetachFadeOut", c.DetachFadeOut).
		PositiveFloat("DetachGrowFactor", c.DetachGrowFactor).
		NonNegativeDuration("OrphanHold", c.OrphanHold).
		NonNegativeDuration("PlaceholderFadeOut", c.PlaceholderFadeOut).
		NonNegativeDuration("RevealDelay", c.RevealDelay).
		NonNegativeDuration("CrossFade", c.CrossFade).
		NonNegativeDuration("LinkStagger", c.LinkStagger).
		NonNegativeDuration("NodeStagger", c.NodeStagger).
		RangeFloat("FirstBurst", c.FirstBurst, 0, 1).
		RangeFloat("SecondBurst", c.SecondBurst, 0, 1).
		NonNegativeDuration("CenterHold", c.CenterHold).
		NonNegativeDuration("ReinforceFadeOut", c.ReinforceFadeOut).
		NonNegativeDuration("Emphasis", c.Emphasis).
		MinDuration("FetchTimeout", c.FetchTimeout, time.Millisecond).
		Validate()
}
