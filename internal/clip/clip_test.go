package clip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	items := []Item{TextItem("hello"), ImageItem([]byte{1, 2, 3})}

	it, ok := Find(items, MIMEText)
	require.True(t, ok)
	assert.Equal(t, "hello", string(it.Data))

	it, ok = Find(items, MIMEPNG)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, it.Data)

	_, ok = Find(items, "text/html")
	assert.False(t, ok)
}

func TestEqualItems(t *testing.T) {
	a := []Item{TextItem("x")}
	assert.True(t, equalItems(a, []Item{TextItem("x")}))
	assert.False(t, equalItems(a, []Item{TextItem("y")}))
	assert.False(t, equalItems(a, nil))
	assert.True(t, equalItems(nil, nil))
}

func TestMemory_WriteSignalsAndCopies(t *testing.T) {
	m := NewMemory()

	src := []Item{TextItem("one")}
	require.NoError(t, m.Write(src))
	src[0].Data[0] = 'X'

	select {
	case <-m.Watch():
	default:
		t.Fatal("expected a change signal after Write")
	}

	items, err := m.Read()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "one", string(items[0].Data))
}

func TestMemory_SignalsCoalesce(t *testing.T) {
	m := NewMemory()
	m.CopyText("a")
	m.CopyText("b")
	m.CopyText("c")

	n := 0
	for {
		select {
		case <-m.Watch():
			n++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, n)

	items, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, "c", string(items[0].Data))
}

func TestMemory_Failures(t *testing.T) {
	m := NewMemory()
	boom := errors.New("clipboard locked")

	m.FailReads(boom)
	_, err := m.Read()
	assert.ErrorIs(t, err, boom)
	m.FailReads(nil)

	m.FailWrites(boom)
	assert.ErrorIs(t, m.Write([]Item{TextItem("x")}), boom)
	m.FailWrites(nil)

	items, err := m.Read()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHeadless(t *testing.T) {
	b := newHeadless()
	items, err := b.Read()
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.NoError(t, b.Write([]Item{TextItem("x")}))
}
