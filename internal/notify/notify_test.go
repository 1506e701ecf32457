package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_DropsOldestWhenFull(t *testing.T) {
	c := NewChannel(2)
	Success(c, "one")
	Error(c, "two")
	Info(c, "three")

	first := <-c.C()
	second := <-c.C()
	assert.Equal(t, "two", first.Text)
	assert.Equal(t, LevelError, first.Level)
	assert.Equal(t, "three", second.Text)
	assert.False(t, second.At.IsZero())

	select {
	case n := <-c.C():
		t.Fatalf("unexpected notification %q", n.Text)
	default:
	}
}

func TestChannel_NeverBlocks(t *testing.T) {
	c := NewChannel(1)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Info(c, "x")
		}()
	}
	wg.Wait()
	assert.Len(t, c.C(), 1)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	Success(&r, "saved")
	Error(&r, "boom")
	Error(&r, "bang")

	require.Len(t, r.All(), 3)
	assert.Equal(t, []string{"boom", "bang"}, r.Texts(LevelError))
	assert.Equal(t, []string{"saved", "boom", "bang"}, r.Texts())

	r.Reset()
	assert.Empty(t, r.All())
}

func TestMultiAndNil(t *testing.T) {
	var a, b Recorder
	m := Multi{&a, nil, &b}
	Success(m, "ok")
	assert.Equal(t, []string{"ok"}, a.Texts())
	assert.Equal(t, []string{"ok"}, b.Texts())

	assert.NotPanics(t, func() { Error(nil, "ignored") })
	assert.NotPanics(t, func() { Error(Discard, "ignored") })
}
