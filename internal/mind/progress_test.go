package mind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPNeeded(t *testing.T) {
	c := DefaultLedgerConfig()
	assert.Equal(t, 50, c.XPNeeded(1))
	assert.Equal(t, 200, c.XPNeeded(2))
	assert.Equal(t, 450, c.XPNeeded(3))
}

func TestAwardNewUser(t *testing.T) {
	l, err := NewLedger(nil, DefaultLedgerConfig(), fixedRand{n: 3})
	require.NoError(t, err)

	up, level, err := l.Award("u1")
	require.NoError(t, err)
	assert.False(t, up)
	assert.Equal(t, 1, level)

	rec, ok := l.Get("u1")
	require.True(t, ok)
	assert.Equal(t, ProgressRecord{XP: 8, Level: 1}, rec)
}

func TestAwardIncrementRange(t *testing.T) {
	low, _ := NewLedger(nil, DefaultLedgerConfig(), fixedRand{n: 0})
	high, _ := NewLedger(nil, DefaultLedgerConfig(), fixedRand{n: 100})

	low.Award("u")
	high.Award("u")
	recLow, _ := low.Get("u")
	recHigh, _ := high.Get("u")
	assert.Equal(t, 5, recLow.XP)
	assert.Equal(t, 15, recHigh.XP)
}

func TestAwardLevelsUpOnce(t *testing.T) {
	store := &memLedgerStore{records: map[string]ProgressRecord{
		"near": {XP: 45, Level: 1},
		"far":  {XP: 1000, Level: 1},
	}}
	l, err := NewLedger(store, DefaultLedgerConfig(), fixedRand{n: 0})
	require.NoError(t, err)

	up, level, err := l.Award("near")
	require.NoError(t, err)
	assert.True(t, up)
	assert.Equal(t, 2, level)

	up, level, err = l.Award("far")
	require.NoError(t, err)
	assert.True(t, up)
	assert.Equal(t, 2, level, "at most one level per award")

	up, level, _ = l.Award("far")
	assert.True(t, up)
	assert.Equal(t, 3, level)

	assert.Equal(t, ProgressRecord{XP: 1010, Level: 3}, store.records["far"], "every award is persisted")
	assert.Equal(t, 3, store.saves)
}

func TestAwardSaveFailureKeepsAward(t *testing.T) {
	store := &memLedgerStore{saveErr: errors.New("disk full")}
	l, err := NewLedger(store, DefaultLedgerConfig(), fixedRand{n: 0})
	require.NoError(t, err)

	_, _, err = l.Award("u1")
	assert.ErrorContains(t, err, "disk full")

	rec, ok := l.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 5, rec.XP)
}

func TestNewLedgerClampsAndFails(t *testing.T) {
	store := &memLedgerStore{records: map[string]ProgressRecord{"bad": {XP: -4, Level: 0}}}
	l, err := NewLedger(store, DefaultLedgerConfig(), fixedRand{})
	require.NoError(t, err)
	rec, _ := l.Get("bad")
	assert.Equal(t, ProgressRecord{XP: 0, Level: 1}, rec)

	_, err = NewLedger(&memLedgerStore{loadErr: errors.New("corrupt")}, DefaultLedgerConfig(), fixedRand{})
	assert.ErrorContains(t, err, "corrupt")
}

func TestLedgerTop(t *testing.T) {
	store := &memLedgerStore{records: map[string]ProgressRecord{
		"a": {XP: 100, Level: 2},
		"b": {XP: 300, Level: 3},
		"c": {XP: 120, Level: 2},
		"d": {XP: 120, Level: 2},
	}}
	l, err := NewLedger(store, DefaultLedgerConfig(), fixedRand{})
	require.NoError(t, err)

	top := l.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "c", "d"}, []string{top[0].UserID, top[1].UserID, top[2].UserID})
	assert.Len(t, l.Top(10), 4)
	assert.Equal(t, 4, l.Len())
}

func TestAwardIgnoresEmptyUser(t *testing.T) {
	l, _ := NewLedger(nil, DefaultLedgerConfig(), panicRand{})
	up, level, err := l.Award("")
	assert.NoError(t, err)
	assert.False(t, up)
	assert.Zero(t, level)
	assert.Zero(t, l.Len())
}
