package traits

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/excss/internal/parseobject"
)

func mustParse(t *testing.T, src string) *parseobject.ParseObject {
	t.Helper()
	po, err := parseobject.Parse(src)
	require.NoError(t, err)
	return po
}

func TestRegistryImport(t *testing.T) {
	r := NewRegistry()
	r.Import(mustParse(t, "@trait a(x) { color: $x; }\n@trait b { margin: 0; }"))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, r.Names())

	a, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, a.Params)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryLastImportWins(t *testing.T) {
	r := NewRegistry()
	r.Import(mustParse(t, "@trait a(x) { color: $x; }"))
	r.Import(mustParse(t, "@trait a { color: red; }"))

	a, ok := r.Get("a")
	require.True(t, ok)
	assert.Empty(t, a.Params)
	assert.Equal(t, 1, r.Len())
}

func TestRegistrySetAndClear(t *testing.T) {
	r := NewRegistry()
	r.Set("t", &parseobject.Trait{})
	assert.Equal(t, 1, r.Len())
	r.Clear()
	assert.Equal(t, 0, r.Len())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	po := mustParse(t, "@trait a { color: red; }")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Import(po)
		}()
		go func() {
			defer wg.Done()
			r.Get("a")
			r.Names()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.Len())
}
