package mind

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/keshon/zoomer-grok/internal/ai"
)

// Generator produces raw reply text for a request.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

// MediaLookup resolves a media term to a URL; false means "send no media".
type MediaLookup interface {
	Lookup(ctx context.Context, term string) (string, bool)
}

// Settings are the tunables of the pipeline.
type Settings struct {
	CommandPrefix string
	Keywords      []string
	Persona       string
	Scope         InflightScope
	HistoryLimit  int // messages fetched before context bounding
	Decision      DecisionConfig
	Fatigue       FatigueConfig
	Pacing        PacingConfig
	Watchdog      WatchdogConfig
	Ledger        LedgerConfig
}

// DefaultSettings returns the defaults of every component.
func DefaultSettings() Settings {
	return Settings{
		CommandPrefix: "!",
		Keywords:      DefaultKeywords,
		Persona:       DefaultPersona,
		Scope:         ScopeChannel,
		HistoryLimit:  25,
		Decision:      DefaultDecisionConfig(),
		Fatigue:       DefaultFatigueConfig(),
		Pacing:        DefaultPacingConfig(),
		Watchdog:      DefaultWatchdogConfig(),
		Ledger:        DefaultLedgerConfig(),
	}
}

// Deps are the collaborators of the runner. Generator, Media and Quota may be nil.
type Deps struct {
	Platform  Platform
	Generator Generator
	Media     MediaLookup
	Quota     *WindowLimiter // only read for stats
	Ledger    *Ledger
	Clock     clockwork.Clock
	Rand      Rand
	Log       zerolog.Logger
}

// Stats is a snapshot for the stats command.
type Stats struct {
	Fatigue        int
	MediaRemaining int
	MediaLimit     int
	InFlight       int
	UsersTracked   int
	Watchdog       WatchdogState
	WatchdogOn     bool
}

// Runner drives one message through signals, decision, generation and delivery.
type Runner struct {
	settings Settings
	platform Platform
	gen      Generator
	media    MediaLookup
	quota    *WindowLimiter
	clock    clockwork.Clock
	rng      Rand
	log      zerolog.Logger

	Fatigue  *Fatigue
	Ledger   *Ledger
	Watchdog *Watchdog

	engine    *DecisionEngine
	post      *PostProcessor
	deliverer *Deliverer
	gate      *InflightGate
	tracker   *ChannelTracker
	reactions *ReactionTable

	mu        sync.RWMutex
	agent     Agent
	extractor *SignalExtractor
	builder   *ContextBuilder
}

// NewRunner wires the components. The agent identity is set later with SetAgent.
func NewRunner(s Settings, d Deps) *Runner {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Rand == nil {
		d.Rand = NewTimeSeededRand()
	}
	if d.Ledger == nil {
		d.Ledger, _ = NewLedger(nil, s.Ledger, d.Rand)
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = DefaultSettings().HistoryLimit
	}
	r := &Runner{
		settings:  s,
		platform:  d.Platform,
		gen:       d.Generator,
		media:     d.Media,
		quota:     d.Quota,
		clock:     d.Clock,
		rng:       d.Rand,
		log:       d.Log.With().Str("component", "mind").Logger(),
		Fatigue:   NewFatigue(s.Fatigue),
		Ledger:    d.Ledger,
		Watchdog:  NewWatchdog(s.Watchdog, d.Clock),
		engine:    NewDecisionEngine(s.Decision),
		post:      NewPostProcessor(),
		deliverer: NewDeliverer(d.Platform, d.Clock, d.Log.With().Str("component", "delivery").Logger()),
		gate:      NewInflightGate(s.Scope),
		tracker:   NewChannelTracker(),
		reactions: DefaultReactionTable(),
	}
	r.SetAgent(Agent{})
	return r
}

// SetAgent updates the identity the runner speaks as.
func (r *Runner) SetAgent(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agent = a
	r.extractor = NewSignalExtractor(a.ID, r.settings.Keywords)
	r.builder = NewContextBuilder(a, r.settings.CommandPrefix, r.settings.Fatigue)
}

// Agent returns the current identity.
func (r *Runner) Agent() Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agent
}

func (r *Runner) parts() (Agent, *SignalExtractor, *ContextBuilder) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agent, r.extractor, r.builder
}

// HandleMessage runs the full pipeline for one inbound message. It never panics on
// collaborator failures; everything is logged and the message is dropped.
func (r *Runner) HandleMessage(ctx context.Context, msg InboundMessage) {
	agent, extractor, builder := r.parts()

	if agent.ID != "" && msg.AuthorID == agent.ID {
		r.tracker.Record(msg.ChannelID, agent.ID)
		return
	}
	previous := r.tracker.Swap(msg.ChannelID, msg.AuthorID)
	if msg.AuthorIsBot {
		return
	}
	r.Watchdog.Observe(msg.ChannelID, msg.Timestamp)

	if r.isCommand(msg.Text) {
		return
	}

	r.award(ctx, msg)
	r.react(ctx, msg)

	signals := extractor.Extract(msg, previous)
	decision := r.engine.Evaluate(signals, r.Fatigue.Level(), r.rng)
	r.log.Debug().
		Str("action", "decide").
		Str("channel", msg.ChannelID).
		Str("author", msg.AuthorID).
		Str("trigger", decision.Kind.String()).
		Float64("p", decision.Probability).
		Bool("fire", decision.Fire).
		Msg("trigger evaluated")
	if !decision.Fire {
		return
	}

	release, ok := r.gate.TryEnter(msg.ChannelID)
	if !ok {
		r.log.Info().Str("action", "drop").Str("channel", msg.ChannelID).Str("message", msg.ID).Msg("generation in flight, trigger dropped")
		return
	}
	defer release()

	r.respond(ctx, msg, decision, builder)
}

func (r *Runner) isCommand(text string) bool {
	p := r.settings.CommandPrefix
	return p != "" && strings.HasPrefix(strings.TrimSpace(text), p)
}

func (r *Runner) award(ctx context.Context, msg InboundMessage) {
	leveledUp, level, err := r.Ledger.Award(msg.AuthorID)
	if err != nil {
		r.log.Error().Str("action", "award").Str("user", msg.AuthorID).Err(err).Msg("ledger not persisted")
	}
	if !leveledUp {
		return
	}
	r.log.Info().Str("action", "level_up").Str("user", msg.AuthorID).Int("level", level).Msg("user leveled up")
	text := fmt.Sprintf("🆙 **<@%s>** leveled up to %d. W grind.", msg.AuthorID, level)
	if err := r.platform.Send(ctx, msg.ChannelID, text); err != nil {
		r.log.Warn().Str("action", "level_up").Err(err).Msg("announcement failed")
	}
}

func (r *Runner) react(ctx context.Context, msg InboundMessage) {
	emoji, ok := r.reactions.Match(msg.Text)
	if !ok {
		return
	}
	if err := r.platform.React(ctx, msg, emoji); err != nil {
		r.log.Warn().Str("action", "react").Str("message", msg.ID).Err(err).Msg("reaction failed")
	}
}

// respond runs generation and delivery. Called with the in-flight slot held.
func (r *Runner) respond(ctx context.Context, msg InboundMessage, decision Decision, builder *ContextBuilder) {
	l := r.log.With().Str("response", uuid.NewString()).Str("channel", msg.ChannelID).Logger()
	if r.gen == nil {
		l.Debug().Str("action", "generate").Msg("generation disabled")
		return
	}

	history, err := r.platform.History(ctx, msg.ChannelID, msg.ID, r.settings.HistoryLimit)
	if err != nil {
		l.Warn().Str("action", "history").Err(err).Msg("history unavailable, answering without context")
		history = nil
	}
	level := r.Fatigue.Level()
	transcript := builder.Build(history, msg, level)

	req := ai.Request{
		Persona:  r.settings.Persona,
		History:  transcript.Lines,
		Current:  transcript.Current,
		ImageURL: msg.ImageURL,
		Hints:    r.hints(msg, decision.Kind, level),
	}
	l.Info().
		Str("action", "generate").
		Str("trigger", decision.Kind.String()).
		Int("fatigue", level).
		Int("lines", len(transcript.Lines)).
		Bool("reset", transcript.Reset).
		Msg("generating reply")

	raw, err := r.generate(ctx, msg.ChannelID, req)
	switch {
	case errors.Is(err, ai.ErrDisabled):
		l.Debug().Str("action", "generate").Msg("generation disabled")
		return
	case errors.Is(err, ai.ErrEmptyReply):
		raw = ""
	case err != nil:
		l.Error().Str("action", "generate").Err(err).Msg("generation failed")
		if rerr := r.platform.React(ctx, msg, EmojiUnplug); rerr != nil {
			l.Warn().Str("action", "react").Err(rerr).Msg("fallback reaction failed")
		}
		return
	}

	reply := r.post.Process(raw)
	if reply.Empty() {
		l.Info().Str("action", "deliver").Msg("empty generation")
		if err := r.platform.Reply(ctx, msg, EmojiSkull); err != nil {
			l.Warn().Str("action", "deliver").Err(err).Msg("empty reply failed")
		}
		r.finish(msg, decision)
		return
	}

	var mediaURL string
	if reply.HasMedia() && r.media != nil {
		if url, ok := r.media.Lookup(ctx, reply.MediaTerm); ok {
			mediaURL = url
		}
	}
	if len(reply.Segments) == 0 && mediaURL == "" {
		// Only a media tag came back and it did not resolve.
		if err := r.platform.Reply(ctx, msg, EmojiSkull); err != nil {
			l.Warn().Str("action", "deliver").Err(err).Msg("empty reply failed")
		}
		r.finish(msg, decision)
		return
	}

	plan := r.settings.Pacing.Plan(reply.Segments, mediaURL, r.rng)
	l.Info().
		Str("action", "deliver").
		Int("segments", len(plan.Segments)).
		Bool("media", mediaURL != "").
		Dur("delay", plan.TotalDelay()).
		Msg("delivering reply")
	if err := r.deliverer.Deliver(ctx, msg, plan); err != nil {
		l.Error().Str("action", "deliver").Err(err).Msg("delivery failed")
	}
	r.finish(msg, decision)
}

// generate calls the backend with typing shown for the whole call.
func (r *Runner) generate(ctx context.Context, channelID string, req ai.Request) (string, error) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		KeepTyping(ctx, r.platform, r.clock, r.log, channelID, done)
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()
	return r.gen.Generate(ctx, req)
}

func (r *Runner) finish(msg InboundMessage, decision Decision) {
	level := r.Fatigue.SpendFor(decision.Kind)
	agent := r.Agent()
	if agent.ID != "" {
		r.tracker.Record(msg.ChannelID, agent.ID)
	}
	r.log.Debug().Str("action", "spend").Int("fatigue", level).Msg("battery drained")
}

func (r *Runner) hints(msg InboundMessage, kind TriggerKind, level int) []string {
	var hints []string
	if note := triggerNote(kind); note != "" {
		hints = append(hints, note)
	}
	if h := r.settings.Fatigue.VerbosityHint(level); h != "" {
		hints = append(hints, h)
	}
	if rec, ok := r.Ledger.Get(msg.AuthorID); ok {
		hints = append(hints, fmt.Sprintf("%s is level %d in this server.", msg.AuthorName, rec.Level))
	}
	return hints
}

// RechargeTick adds one recharge step to the battery.
func (r *Runner) RechargeTick() {
	level := r.Fatigue.Recharge(r.settings.Fatigue.RechargeAmount)
	r.log.Debug().Str("action", "recharge").Int("fatigue", level).Msg("battery recharged")
}

// WatchdogTick runs one idle check and sends at most one revival.
func (r *Runner) WatchdogTick(ctx context.Context) {
	if !r.Watchdog.Check(r.Fatigue.Level()) {
		return
	}
	cfg := r.Watchdog.Config()
	var roleID string
	if cfg.RoleName != "" {
		if id, ok := r.platform.ResolveRole(ctx, cfg.ChannelID, cfg.RoleName); ok {
			roleID = id
		}
	}
	text := r.Watchdog.RevivalText(r.rng, roleID)
	r.log.Info().Str("action", "revive").Str("channel", cfg.ChannelID).Bool("role", roleID != "").Msg("channel idle, reviving")
	if err := r.platform.Send(ctx, cfg.ChannelID, text); err != nil {
		r.log.Error().Str("action", "revive").Err(err).Msg("revival failed")
		return
	}
	if agent := r.Agent(); agent.ID != "" {
		r.tracker.Record(cfg.ChannelID, agent.ID)
	}
}

// Stats returns a snapshot of the runner state.
func (r *Runner) Stats() Stats {
	s := Stats{
		Fatigue:      r.Fatigue.Level(),
		InFlight:     r.gate.InFlight(),
		UsersTracked: r.Ledger.Len(),
		Watchdog:     r.Watchdog.State(),
		WatchdogOn:   r.Watchdog.Enabled(),
	}
	if r.quota != nil {
		s.MediaRemaining = r.quota.Remaining()
		s.MediaLimit = r.quota.Limit()
	}
	return s
}

// Settings returns the settings the runner was built with.
func (r *Runner) Settings() Settings { return r.settings }
