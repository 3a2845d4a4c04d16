package turn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLifetime(t *testing.T) {
	m := New()
	l := Lifetime{10 * time.Minute}
	assert.NoError(t, l.AddTo(m))
	v, err := m.Get(AttrLifetime)
	assert.NoError(t, err)
	assert.Equal(t, uint32(600), bin.Uint32(v))

	got := new(Lifetime)
	assert.NoError(t, got.GetFrom(m))
	assert.Equal(t, l.Duration, got.Duration)
}

func TestLifetime_BadSize(t *testing.T) {
	m := New()
	m.Add(AttrLifetime, []byte{1, 2, 3})
	got := new(Lifetime)
	err := got.GetFrom(m)
	if _, ok := err.(*AttrLengthErr); !ok {
		t.Error(err, "should be *AttrLengthErr")
	}
}

func TestLifetime_NotFound(t *testing.T) {
	m := New()
	got := new(Lifetime)
	assert.ErrorIs(t, got.GetFrom(m), ErrAttributeNotFound)
}
