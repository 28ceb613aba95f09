package digest

import (
	"fmt"
	"math"
	"strings"
)

// Strategy is one of the closed set of scoring formulas.
type Strategy int

const (
	// StrategySimple is raw engagement: favorites + weighted boosts
	// and replies. No recency decay.
	StrategySimple Strategy = iota
	// StrategySimpleWeighted is Simple with recency decay applied.
	StrategySimpleWeighted
	// StrategyWeighted adds inverse-follower weighting on top of the
	// decayed score, reducing the pull of very large accounts.
	StrategyWeighted
	// StrategyExtendedWeighted further adjusts for thin content,
	// attached media, and very young author accounts. The production
	// default.
	StrategyExtendedWeighted
)

var strategyNames = map[Strategy]string{
	StrategySimple:           "Simple",
	StrategySimpleWeighted:   "SimpleWeighted",
	StrategyWeighted:         "Weighted",
	StrategyExtendedWeighted: "ExtendedWeighted",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy resolves a strategy name, case-insensitively. An
// unknown name fails here, before any post is touched.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "simple":
		return StrategySimple, nil
	case "simpleweighted":
		return StrategySimpleWeighted, nil
	case "weighted":
		return StrategyWeighted, nil
	case "extendedweighted", "extendedsimpleweighted":
		return StrategyExtendedWeighted, nil
	default:
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
}

// Tuning holds the numeric constants the strategies are parameterized
// by. The production values are starting points, not gospel.
type Tuning struct {
	BoostWeight float64 `yaml:"boost_weight"`
	ReplyWeight float64 `yaml:"reply_weight"`

	// DecayExponent controls recency decay: score / (age+1)^exp.
	DecayExponent float64 `yaml:"decay_exponent"`

	// Posts shorter than MinContentLength runes are multiplied by
	// ShortContentPenalty (ExtendedWeighted only).
	MinContentLength    int     `yaml:"min_content_length"`
	ShortContentPenalty float64 `yaml:"short_content_penalty"`

	// MediaBoost multiplies posts with attachments.
	MediaBoost float64 `yaml:"media_boost"`

	// Accounts younger than YoungAuthorHours are dampened by
	// YoungAuthorPenalty. A discount, never an exclusion.
	YoungAuthorHours   float64 `yaml:"young_author_hours"`
	YoungAuthorPenalty float64 `yaml:"young_author_penalty"`
}

// DefaultTuning returns the production constants.
func DefaultTuning() Tuning {
	return Tuning{
		BoostWeight:         2.0,
		ReplyWeight:         0.5,
		DecayExponent:       1.2,
		MinContentLength:    40,
		ShortContentPenalty: 0.5,
		MediaBoost:          1.2,
		YoungAuthorHours:    7 * 24,
		YoungAuthorPenalty:  0.6,
	}
}

// Tone selects how strict the digest is. Stricter tones raise the
// percentile floor posts must clear and tighten the content penalty.
type Tone int

const (
	ToneLax Tone = iota
	ToneNormal
	ToneStrict
)

func (t Tone) String() string {
	switch t {
	case ToneLax:
		return "lax"
	case ToneStrict:
		return "strict"
	default:
		return "normal"
	}
}

// ParseTone resolves a tone name.
func ParseTone(name string) (Tone, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lax":
		return ToneLax, nil
	case "normal", "":
		return ToneNormal, nil
	case "strict":
		return ToneStrict, nil
	default:
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownTone)
	}
}

// Percentile is the score percentile a post must reach to be eligible
// for selection.
func (t Tone) Percentile() float64 {
	switch t {
	case ToneLax:
		return 90
	case ToneStrict:
		return 98
	default:
		return 95
	}
}

// Apply tightens tuning constants for stricter tones.
func (t Tone) Apply(tuning Tuning) Tuning {
	switch t {
	case ToneLax:
		tuning.ShortContentPenalty = math.Min(tuning.ShortContentPenalty*1.5, 1)
	case ToneStrict:
		tuning.MinContentLength *= 2
		tuning.YoungAuthorPenalty *= 0.75
	}
	return tuning
}

// Score assigns a weight to every post under the given strategy. The
// result has the same length and order as the input; each post is
// scored independently and deterministically.
func Score(posts []Post, strategy Strategy, tuning Tuning) ([]ScoredPost, error) {
	if _, ok := strategyNames[strategy]; !ok {
		return nil, fmt.Errorf("%d: %w", int(strategy), ErrUnknownStrategy)
	}

	scored := make([]ScoredPost, len(posts))
	for i := range posts {
		scored[i] = ScoredPost{
			Post:     posts[i],
			Score:    scoreOne(&posts[i], strategy, tuning),
			Strategy: strategy.String(),
		}
	}
	return scored, nil
}

func scoreOne(p *Post, strategy Strategy, t Tuning) float64 {
	score := float64(p.Engagement.Favorites) +
		float64(p.Engagement.Boosts)*t.BoostWeight +
		float64(p.Engagement.Replies)*t.ReplyWeight

	if strategy == StrategySimple {
		return score
	}

	// The +1 offset keeps the denominator positive at age zero.
	score /= math.Pow(p.AgeHours+1, t.DecayExponent)

	if strategy == StrategySimpleWeighted {
		return score
	}

	score *= inverseFollowerWeight(p.AuthorFollowers)

	if strategy == StrategyWeighted {
		return score
	}

	// ExtendedWeighted adjustments.
	if p.ContentLength < t.MinContentLength {
		score *= t.ShortContentPenalty
	}
	if p.HasMedia {
		score *= t.MediaBoost
	}
	if p.AuthorAgeHours < t.YoungAuthorHours {
		score *= t.YoungAuthorPenalty
	}
	return score
}

// inverseFollowerWeight dampens huge accounts. Zero followers on a
// home timeline means something is off; those posts score zero.
func inverseFollowerWeight(followers int) float64 {
	if followers <= 0 {
		return 0
	}
	return 1 / math.Sqrt(float64(followers))
}
