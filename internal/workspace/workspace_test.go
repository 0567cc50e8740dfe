package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/phyten/todohl/internal/extension"
	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
)

func memWorkspace(t *testing.T, files map[string]string) *Workspace {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	return New(fs)
}

func TestOpenActivatesFirstDocument(t *testing.T) {
	ws := memWorkspace(t, map[string]string{"a.go": "// TODO a", "b.go": "// FIXME b"})

	_, ok := ws.ActiveDocument()
	require.False(t, ok)

	views := 0
	ws.OnActiveViewChanged(func() { views++ })

	_, err := ws.Open("a.go")
	require.NoError(t, err)
	_, err = ws.Open("./b.go")
	require.NoError(t, err)
	ws.Flush()

	active, ok := ws.ActiveDocument()
	require.True(t, ok)
	require.Equal(t, "a.go", active.ID())
	require.Equal(t, []string{"a.go", "b.go"}, ws.Documents())
	require.Equal(t, 1, views)

	_, err = ws.Open("missing.go")
	require.Error(t, err)
}

func TestNextPrevWrap(t *testing.T) {
	ws := memWorkspace(t, map[string]string{"a": "", "b": "", "c": ""})
	for _, p := range []string{"a", "b", "c"} {
		_, err := ws.Open(p)
		require.NoError(t, err)
	}

	ws.Prev()
	active, _ := ws.ActiveDocument()
	require.Equal(t, "c", active.ID())

	ws.Next()
	ws.Next()
	active, _ = ws.ActiveDocument()
	require.Equal(t, "b", active.ID())

	require.NoError(t, ws.Activate("a"))
	require.Error(t, ws.Activate("zzz"))
}

func TestSetTextPublishesSnapshot(t *testing.T) {
	ws := memWorkspace(t, map[string]string{"a.go": "one"})
	first, err := ws.Open("a.go")
	require.NoError(t, err)
	ws.Flush()

	var changed []host.Document
	ws.OnTextChanged(func(doc host.Document) { changed = append(changed, doc) })

	require.NoError(t, ws.SetText("a.go", "one"))
	ws.Flush()
	require.Empty(t, changed, "identical text is not a change")

	require.NoError(t, ws.SetText("a.go", "two\nlines"))
	ws.Flush()
	require.Len(t, changed, 1)
	require.Equal(t, "two\nlines", changed[0].Text())
	require.Equal(t, model.Position{Line: 1, Col: 2}, changed[0].PositionAt(6))
	require.Equal(t, "one", first.Text(), "old snapshots stay untouched")

	require.Error(t, ws.SetText("nope", "x"))
}

func TestCloseActivatesNeighbour(t *testing.T) {
	ws := memWorkspace(t, map[string]string{"a": "", "b": ""})
	_, _ = ws.Open("a")
	_, _ = ws.Open("b")

	require.NoError(t, ws.Close("a"))
	active, ok := ws.ActiveDocument()
	require.True(t, ok)
	require.Equal(t, "b", active.ID())

	require.NoError(t, ws.Close("b"))
	_, ok = ws.ActiveDocument()
	require.False(t, ok)
	require.Error(t, ws.Close("b"))
}

func TestReloadFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.go", []byte("// TODO"), 0o644))
	ws := New(fs)
	_, err := ws.Open("a.go")
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "a.go", []byte("// HACK"), 0o644))
	require.NoError(t, ws.Reload("a.go"))
	doc, ok := ws.Document("a.go")
	require.True(t, ok)
	require.Equal(t, "// HACK", doc.Text())

	require.NoError(t, fs.Remove("a.go"))
	require.Error(t, ws.Reload("a.go"))
}

func TestExtensionOverWorkspace(t *testing.T) {
	ws := memWorkspace(t, map[string]string{"a.go": "// TODO a", "b.go": "// FIXME b"})
	rec := host.NewRecorder()
	h := host.Compose(ws, rec)

	_, err := ws.Open("a.go")
	require.NoError(t, err)
	_, err = ws.Open("b.go")
	require.NoError(t, err)

	ext, err := extension.Activate(context.Background(), h, marker.Default())
	require.NoError(t, err)
	defer ext.Deactivate()
	ws.Flush()

	require.Len(t, rec.Current("a.go", "TODO"), 1)

	require.NoError(t, ws.SetText("b.go", "// FIXME b\n// FIXME c"))
	ws.Flush()
	require.Empty(t, rec.Current("b.go", "FIXME"), "inactive document edits are ignored")

	ws.Next()
	ws.Flush()
	require.Len(t, rec.Current("b.go", "FIXME"), 2)
}

func TestRunDeliversSerially(t *testing.T) {
	ws := memWorkspace(t, map[string]string{"a": "0"})
	_, err := ws.Open("a")
	require.NoError(t, err)

	var mu sync.Mutex
	inside, maxInside, seen := 0, 0, 0
	ws.OnTextChanged(func(host.Document) {
		mu.Lock()
		inside++
		maxInside = max(maxInside, inside)
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		inside--
		seen++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ws.Run(ctx) }()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = ws.SetText("a", string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen >= 1 && inside == 0
	}, time.Second, 5*time.Millisecond)
	ws.Flush()
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, maxInside)
}

func TestWatcherReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("// TODO first"), 0o644))

	ws := New(afero.NewOsFs())
	_, err := ws.Open(path)
	require.NoError(t, err)

	w, err := NewWatcher(ws, WatcherConfig{Debounce: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("// TODO second"), 0o644))

	require.Eventually(t, func() bool {
		doc, ok := ws.Document(path)
		return ok && doc.Text() == "// TODO second"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestPostRunsInEventOrder(t *testing.T) {
	ws := memWorkspace(t, map[string]string{"a.go": "x", "b.go": "y"})
	var trace []string
	ws.OnActiveViewChanged(func() {
		doc, _ := ws.ActiveDocument()
		trace = append(trace, "view "+doc.ID())
	})

	_, err := ws.Open("a.go")
	require.NoError(t, err)
	_, err = ws.Open("b.go")
	require.NoError(t, err)
	ws.Post(func() { trace = append(trace, "posted") })
	ws.Next()
	require.Empty(t, trace)

	ws.Flush()
	require.Equal(t, []string{"view b.go", "posted", "view b.go"}, trace)
}
