package mind

// TriggerKind names the rule that decided a message.
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerDirect
	TriggerReplyChain
	TriggerKeyword
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerDirect:
		return "direct"
	case TriggerReplyChain:
		return "reply_chain"
	case TriggerKeyword:
		return "keyword"
	default:
		return "none"
	}
}

// DecisionConfig holds base probabilities and the fatigue tiers.
type DecisionConfig struct {
	ReplyChainProbability float64
	KeywordProbability    float64
	MidThreshold          int     // fatigue below this scales ambient probability by MidScale
	LowThreshold          int     // fatigue below this scales by LowScale instead
	MidScale              float64
	LowScale              float64
}

// DefaultDecisionConfig returns the defaults.
func DefaultDecisionConfig() DecisionConfig {
	return DecisionConfig{
		ReplyChainProbability: 0.8,
		KeywordProbability:    0.25,
		MidThreshold:          50,
		LowThreshold:          20,
		MidScale:              0.5,
		LowScale:              0.2,
	}
}

// Decision is the outcome of one evaluation.
type Decision struct {
	Kind        TriggerKind
	Probability float64
	Fire        bool
}

type triggerRule struct {
	kind  TriggerKind
	match func(Signals) bool
	base  func(DecisionConfig) float64
	gated bool // scaled down by fatigue
}

// triggerRules is evaluated in order, first match wins.
var triggerRules = []triggerRule{
	{
		kind:  TriggerDirect,
		match: func(s Signals) bool { return s.DirectlyAddressed },
		base:  func(DecisionConfig) float64 { return 1 },
	},
	{
		kind:  TriggerReplyChain,
		match: func(s Signals) bool { return s.ReplyChainContinuation },
		base:  func(c DecisionConfig) float64 { return c.ReplyChainProbability },
		gated: true,
	},
	{
		kind:  TriggerKeyword,
		match: func(s Signals) bool { return s.KeywordHit },
		base:  func(c DecisionConfig) float64 { return c.KeywordProbability },
		gated: true,
	},
}

// DecisionEngine decides whether the agent answers a message.
type DecisionEngine struct {
	cfg DecisionConfig
}

// NewDecisionEngine creates an engine with cfg.
func NewDecisionEngine(cfg DecisionConfig) *DecisionEngine {
	return &DecisionEngine{cfg: cfg}
}

// Probability returns the matched rule and its fatigue-adjusted probability.
func (e *DecisionEngine) Probability(s Signals, fatigue int) (TriggerKind, float64) {
	for _, r := range triggerRules {
		if !r.match(s) {
			continue
		}
		p := clamp01(r.base(e.cfg))
		if r.gated {
			p *= e.fatigueScale(fatigue)
		}
		return r.kind, p
	}
	return TriggerNone, 0
}

// Evaluate runs the rule table and one Bernoulli draw. Certain outcomes consume no randomness.
func (e *DecisionEngine) Evaluate(s Signals, fatigue int, rng Rand) Decision {
	kind, p := e.Probability(s, fatigue)
	d := Decision{Kind: kind, Probability: p}
	switch {
	case p >= 1:
		d.Fire = true
	case p <= 0:
		d.Fire = false
	default:
		d.Fire = rng.Float64() < p
	}
	return d
}

// Decide reports whether to respond.
func (e *DecisionEngine) Decide(s Signals, fatigue int, rng Rand) bool {
	return e.Evaluate(s, fatigue, rng).Fire
}

func (e *DecisionEngine) fatigueScale(fatigue int) float64 {
	switch {
	case fatigue < e.cfg.LowThreshold:
		return e.cfg.LowScale
	case fatigue < e.cfg.MidThreshold:
		return e.cfg.MidScale
	default:
		return 1
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
