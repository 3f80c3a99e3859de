package mind

import (
	"fmt"
	"sort"
	"sync"
)

// ProgressRecord is one user's XP and level.
type ProgressRecord struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// LedgerStore loads and rewrites the whole ledger.
type LedgerStore interface {
	LoadLedger() (map[string]ProgressRecord, error)
	SaveLedger(map[string]ProgressRecord) error
}

// LedgerConfig holds the XP curve.
type LedgerConfig struct {
	K     int // xpNeeded(level) = level^2 * K
	MinXP int // inclusive increment range
	MaxXP int
}

// DefaultLedgerConfig returns K=50 and increments in [5, 15].
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{K: 50, MinXP: 5, MaxXP: 15}
}

// XPNeeded is the XP total at which level becomes level+1.
func (c LedgerConfig) XPNeeded(level int) int {
	return level * level * c.K
}

// Ranked is one ledger row with its user.
type Ranked struct {
	UserID string
	ProgressRecord
}

// Ledger owns every ProgressRecord. Safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	store   LedgerStore
	cfg     LedgerConfig
	rng     Rand
	records map[string]ProgressRecord
}

// NewLedger loads the ledger once from store. A nil store keeps it in memory only.
func NewLedger(store LedgerStore, cfg LedgerConfig, rng Rand) (*Ledger, error) {
	l := &Ledger{store: store, cfg: cfg, rng: rng, records: make(map[string]ProgressRecord)}
	if store == nil {
		return l, nil
	}
	loaded, err := store.LoadLedger()
	if err != nil {
		return l, fmt.Errorf("load ledger: %w", err)
	}
	for id, rec := range loaded {
		if rec.Level < 1 {
			rec.Level = 1
		}
		if rec.XP < 0 {
			rec.XP = 0
		}
		l.records[id] = rec
	}
	return l, nil
}

// Award adds a random increment to userID and levels up at most once.
// The in-memory award stands even when persisting fails; the error is returned.
func (l *Ledger) Award(userID string) (leveledUp bool, level int, err error) {
	if userID == "" {
		return false, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[userID]
	if !ok {
		rec = ProgressRecord{XP: 0, Level: 1}
	}
	rec.XP += l.increment()
	if rec.XP >= l.cfg.XPNeeded(rec.Level) {
		rec.Level++
		leveledUp = true
	}
	l.records[userID] = rec

	if l.store != nil {
		if serr := l.store.SaveLedger(l.snapshotLocked()); serr != nil {
			err = fmt.Errorf("save ledger: %w", serr)
		}
	}
	return leveledUp, rec.Level, err
}

func (l *Ledger) increment() int {
	lo, hi := l.cfg.MinXP, l.cfg.MaxXP
	if hi <= lo {
		return lo
	}
	return lo + l.rng.IntN(hi-lo+1)
}

// Get returns the record of userID; ok is false if the user has none.
func (l *Ledger) Get(userID string) (ProgressRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[userID]
	return rec, ok
}

// Len is the number of tracked users.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Top returns up to n users ordered by level, then XP, then user id.
func (l *Ledger) Top(n int) []Ranked {
	l.mu.Lock()
	out := make([]Ranked, 0, len(l.records))
	for id, rec := range l.records {
		out = append(out, Ranked{UserID: id, ProgressRecord: rec})
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].UserID < out[j].UserID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Config returns the XP curve.
func (l *Ledger) Config() LedgerConfig { return l.cfg }

func (l *Ledger) snapshotLocked() map[string]ProgressRecord {
	cp := make(map[string]ProgressRecord, len(l.records))
	for k, v := range l.records {
		cp[k] = v
	}
	return cp
}
