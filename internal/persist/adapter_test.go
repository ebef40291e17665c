package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glaze/internal/umf"
)

type memChannel struct {
	token      string
	ok         bool
	writes     int
	observable bool
	failWrite  error
}

func (c *memChannel) Read(context.Context) (string, bool, error) { return c.token, c.ok, nil }
func (c *memChannel) Write(_ context.Context, token string) error {
	if c.failWrite != nil {
		return c.failWrite
	}
	c.token, c.ok = token, true
	c.writes++
	return nil
}
func (c *memChannel) Observable() bool { return c.observable }

type fakeFocus struct {
	focus    Focus
	has      bool
	exists   bool
	restored []Focus
}

func (f *fakeFocus) CaptureFocus() (Focus, bool) { return f.focus, f.has }
func (f *fakeFocus) RestoreFocus(x Focus) bool {
	if !f.exists {
		return false
	}
	f.restored = append(f.restored, x)
	return true
}

func TestAdapter_LoadAbsent(t *testing.T) {
	a := NewAdapter(JSONCodec{}, &memChannel{})
	u, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAdapter_LoadMalformed(t *testing.T) {
	a := NewAdapter(JSONCodec{}, &memChannel{token: "{oops", ok: true})
	u, err := a.Load(context.Background())
	assert.Nil(t, u)
	assert.True(t, IsDecodeError(err))
}

func TestAdapter_SaveSkipsIdenticalToken(t *testing.T) {
	ch := &memChannel{}
	a := NewAdapter(JSONCodec{}, ch)
	ctx := context.Background()

	wrote, err := a.Save(ctx, sampleUMF())
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = a.Save(ctx, sampleUMF())
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, 1, ch.writes)
}

func TestAdapter_SaveSkipsTokenAlreadyLoaded(t *testing.T) {
	token, err := JSONCodec{}.Encode(sampleUMF())
	require.NoError(t, err)
	ch := &memChannel{token: token, ok: true}
	a := NewAdapter(JSONCodec{}, ch)
	ctx := context.Background()

	_, err = a.Load(ctx)
	require.NoError(t, err)
	wrote, err := a.Save(ctx, sampleUMF())
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, 0, ch.writes)
}

func TestAdapter_SaveWriteFailureKeepsToken(t *testing.T) {
	ch := &memChannel{failWrite: errors.New("disk full")}
	a := NewAdapter(JSONCodec{}, ch)

	_, err := a.Save(context.Background(), sampleUMF())
	require.Error(t, err)
	_, ok := a.Token()
	assert.False(t, ok)
}

func TestAdapter_FocusRestoredOnLaterTurn(t *testing.T) {
	ch := &memChannel{observable: true}
	keeper := &fakeFocus{focus: Focus{ElementID: "row-3-value", SelectionStart: 2, SelectionEnd: 4}, has: true, exists: true}
	var pending []func()
	a := NewAdapter(FragmentCodec{}, ch, WithFocusKeeper(keeper, func(fn func()) { pending = append(pending, fn) }))

	_, err := a.Save(context.Background(), sampleUMF())
	require.NoError(t, err)

	assert.Empty(t, keeper.restored, "restore must not run synchronously")
	require.Len(t, pending, 1)
	pending[0]()
	assert.Equal(t, []Focus{keeper.focus}, keeper.restored)
}

func TestAdapter_NoFocusWorkWhenUnchangedOrPrivate(t *testing.T) {
	keeper := &fakeFocus{focus: Focus{ElementID: "row-1-value"}, has: true, exists: true}
	var pending []func()
	later := func(fn func()) { pending = append(pending, fn) }

	private := NewAdapter(JSONCodec{}, &memChannel{}, WithFocusKeeper(keeper, later))
	_, err := private.Save(context.Background(), sampleUMF())
	require.NoError(t, err)
	assert.Empty(t, pending, "private channels do not disturb focus")

	public := NewAdapter(FragmentCodec{}, &memChannel{observable: true}, WithFocusKeeper(keeper, later))
	_, _ = public.Save(context.Background(), sampleUMF())
	_, _ = public.Save(context.Background(), sampleUMF())
	assert.Len(t, pending, 1, "skipped write schedules nothing")
}

func TestAdapter_FocusVanished(t *testing.T) {
	keeper := &fakeFocus{focus: Focus{ElementID: "row-9-value"}, has: true, exists: false}
	var pending []func()
	a := NewAdapter(FragmentCodec{}, &memChannel{observable: true}, WithFocusKeeper(keeper, func(fn func()) { pending = append(pending, fn) }))

	_, err := a.Save(context.Background(), sampleUMF())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	pending[0]()
	assert.Empty(t, keeper.restored)
}

func TestAdapter_ObserveIgnoresOwnWrites(t *testing.T) {
	ch := &memChannel{observable: true}
	a := NewAdapter(FragmentCodec{}, ch)
	ctx := context.Background()
	_, err := a.Save(ctx, sampleUMF())
	require.NoError(t, err)

	_, changed, err := a.Observe(ch.token)
	require.NoError(t, err)
	assert.False(t, changed)

	other, err := FragmentCodec{}.Encode(umf.FromMap(map[string]float64{"SiO2": 2}))
	require.NoError(t, err)
	u, changed, err := a.Observe(other)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, map[string]float64{"SiO2": 2}, u.Map())

	_, changed, err = a.Observe("%ZZ")
	assert.False(t, changed)
	assert.True(t, IsDecodeError(err))
	current, _ := a.Token()
	assert.Equal(t, other, current, "malformed token does not replace last good one")
}

func TestAdapter_ObserveIgnoresLateEchoes(t *testing.T) {
	ch := &memChannel{observable: true}
	a := NewAdapter(FragmentCodec{}, ch)
	ctx := context.Background()

	_, err := a.Save(ctx, umf.FromMap(map[string]float64{"SiO2": 3.5}))
	require.NoError(t, err)
	first := ch.token
	_, err = a.Save(ctx, umf.FromMap(map[string]float64{"SiO2": 3.55}))
	require.NoError(t, err)

	_, changed, err := a.Observe(first)
	require.NoError(t, err)
	assert.False(t, changed, "an older write of ours is not an outside change")

	outside, err := FragmentCodec{}.Encode(umf.FromMap(map[string]float64{"SiO2": 2}))
	require.NoError(t, err)
	_, changed, err = a.Observe(outside)
	require.NoError(t, err)
	require.True(t, changed)

	u, changed, err := a.Observe(first)
	require.NoError(t, err)
	assert.True(t, changed, "after an outside edit an old formula is new again")
	assert.Equal(t, map[string]float64{"SiO2": 3.5}, u.Map())
}

func TestAdapter_EchoWindowIsBounded(t *testing.T) {
	ch := &memChannel{observable: true}
	a := NewAdapter(FragmentCodec{}, ch)
	ctx := context.Background()

	var tokens []string
	for i := range echoWindow + 1 {
		_, err := a.Save(ctx, umf.FromMap(map[string]float64{"SiO2": 1 + float64(i)/10}))
		require.NoError(t, err)
		tokens = append(tokens, ch.token)
	}
	assert.Len(t, a.written, echoWindow)

	_, changed, err := a.Observe(tokens[0])
	require.NoError(t, err)
	assert.True(t, changed, "the oldest write fell out of the window")
}
