package draft

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore(t *testing.T, ttl time.Duration) (*Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(t.TempDir(), ttl, WithClock(c.now)), c
}

func doc(t *testing.T, s string) models.Value {
	t.Helper()
	v, err := parser.ParseString(s)
	require.NoError(t, err)
	return v
}

func TestSaveAndLoad(t *testing.T) {
	s, _ := newStore(t, time.Hour)
	content := doc(t, `{"z":1.50,"a":["x",{"b":null}]}`)

	saved, err := s.Save(Draft{Target: "/bots/bot1.json", Content: content})
	require.NoError(t, err)
	_, err = uuid.Parse(saved.ID)
	assert.NoError(t, err, "new drafts get a uuid")

	got, ok, err := s.Load("/bots/bot1.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved.ID, got.ID)
	assert.True(t, saved.SavedAt.Equal(got.SavedAt))

	want, err := content.MarshalJSON()
	require.NoError(t, err)
	have, err := got.Content.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(want), string(have), cmp.Diff(string(want), string(have)))
}

func TestSaveKeepsID(t *testing.T) {
	s, _ := newStore(t, 0)

	first, err := s.Save(Draft{Target: "a.json", Content: doc(t, `[1]`)})
	require.NoError(t, err)
	second, err := s.Save(Draft{ID: first.ID, Target: "a.json", Content: doc(t, `[2]`)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, ok, err := s.Load("a.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, models.Equal(doc(t, `[2]`), got.Content))
}

func TestLoadMissing(t *testing.T) {
	s, _ := newStore(t, time.Hour)

	_, ok, err := s.Load("nothing.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadOtherTarget(t *testing.T) {
	s, _ := newStore(t, time.Hour)

	_, err := s.Save(Draft{Target: "bot1/config.json", Content: doc(t, `{}`)})
	require.NoError(t, err)

	_, ok, err := s.Load("bot2/config.json")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEqual(t, s.Path("bot1/config.json"), s.Path("bot2/config.json"))
}

func TestLoadExpired(t *testing.T) {
	s, c := newStore(t, time.Hour)

	_, err := s.Save(Draft{Target: "a.json", Content: doc(t, `{}`)})
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Minute)
	_, ok, err := s.Load("a.json")
	require.NoError(t, err)
	assert.True(t, ok)

	c.t = c.t.Add(2 * time.Minute)
	_, ok, err = s.Load("a.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(s.Path("a.json"))
	assert.True(t, os.IsNotExist(err), "expired drafts are removed")
}

func TestLoadCorrupt(t *testing.T) {
	s, _ := newStore(t, 0)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o700))
	require.NoError(t, os.WriteFile(s.Path("a.json"), []byte("{not json"), 0o600))

	_, ok, err := s.Load("a.json")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = os.Stat(s.Path("a.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestClear(t *testing.T) {
	s, _ := newStore(t, 0)

	_, err := s.Save(Draft{Target: "a.json", Content: doc(t, `{}`)})
	require.NoError(t, err)
	require.NoError(t, s.Clear("a.json"))
	require.NoError(t, s.Clear("a.json"), "clearing twice is fine")

	_, ok, err := s.Load("a.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveWithoutTarget(t *testing.T) {
	s, _ := newStore(t, 0)

	_, err := s.Save(Draft{Content: doc(t, `{}`)})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDraft))
}
