package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbout22/randl/internal/auth"
	"github.com/cbout22/randl/internal/download"
	"github.com/cbout22/randl/internal/manifest"
	"github.com/cbout22/randl/internal/prompt"
	"github.com/cbout22/randl/internal/remote"
	"github.com/cbout22/randl/internal/repository"
	"github.com/cbout22/randl/internal/resolver"
)

// --- fakes ---

type fakeSource struct {
	files []string
	lines map[string][]string
	err   error
}

func (s *fakeSource) Files() ([]string, error) { return s.files, s.err }

func (s *fakeSource) Read(path string) ([]string, error) {
	lines, ok := s.lines[path]
	if !ok {
		return nil, fmt.Errorf("reading repository %s: not found", path)
	}
	return lines, nil
}

type recordingPuller struct {
	got   []string
	calls int
	err   error
}

func (p *recordingPuller) Pull(_ context.Context, lines []string) error {
	p.calls++
	p.got = lines
	return p.err
}

type fakeRawFetcher map[string][]byte

func (f fakeRawFetcher) FetchRaw(_ context.Context, url string) ([]byte, error) {
	body, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("fetching %s: HTTP 404", url)
	}
	return body, nil
}

type alwaysConfirm struct{ asked []string }

func (c *alwaysConfirm) Confirm(question string) (prompt.Answer, error) {
	c.asked = append(c.asked, question)
	return prompt.Confirmed, nil
}

func first(int) int { return 0 }

func last(n int) int { return n - 1 }

// --- pull ---

func TestRunPull_NoRepositories(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	p := &recordingPuller{}

	err := runPullWith(context.Background(), &fakeSource{}, p, first, &out, &errOut)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Loading repositories")
	assert.Contains(t, errOut.String(), "No repositories synced")
	assert.Zero(t, p.calls)
}

func TestRunPull_EmptyRepository(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		files: []string{"/sync/empty.txt"},
		lines: map[string][]string{"/sync/empty.txt": nil},
	}
	var out, errOut bytes.Buffer
	p := &recordingPuller{}

	err := runPullWith(context.Background(), src, p, first, &out, &errOut)

	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "Repository empty.txt is empty.")
	assert.Zero(t, p.calls)
}

func TestRunPull_PicksRepositoryWithSampler(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		files: []string{"/sync/a", "/sync/b"},
		lines: map[string][]string{
			"/sync/a": {"https://a/1"},
			"/sync/b": {"https://b/1", "https://b/2"},
		},
	}
	p := &recordingPuller{}

	err := runPullWith(context.Background(), src, p, last, &bytes.Buffer{}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"https://b/1", "https://b/2"}, p.got)
}

func TestRunPull_PropagatesErrors(t *testing.T) {
	t.Parallel()

	t.Run("listing fails", func(t *testing.T) {
		src := &fakeSource{err: errors.New("permission denied")}
		err := runPullWith(context.Background(), src, &recordingPuller{}, first, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("read fails", func(t *testing.T) {
		src := &fakeSource{files: []string{"/sync/gone"}}
		err := runPullWith(context.Background(), src, &recordingPuller{}, first, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "gone")
	})

	t.Run("pull fails", func(t *testing.T) {
		src := &fakeSource{
			files: []string{"/sync/a"},
			lines: map[string][]string{"/sync/a": {"x"}},
		}
		p := &recordingPuller{err: resolver.ErrEmptyRepository}
		err := runPullWith(context.Background(), src, p, first, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, resolver.ErrEmptyRepository)
	})
}

// TestRunPull_NestedEndToEnd follows a nested line through a real HTTP server
// and checks the reward lands in the output directory.
func TestRunPull_NestedEndToEnd(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/nested.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "# rewards\n%s/files/reward.bin\n", srv.URL)
	})
	mux.HandleFunc("/files/reward.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "5")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte("hello"))
	})

	syncDir := t.TempDir()
	outDir := t.TempDir()
	store := repository.NewStore(syncDir)
	_, err := store.Save("https://top/list", []byte("Nested "+srv.URL+"/nested.txt\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	client := auth.NewHTTPClient("randl/test")
	confirmer := &alwaysConfirm{}
	dl := download.New(client, confirmer, download.Options{
		OutputDir:        outDir,
		DefaultFilename:  "fallback",
		ProgressInterval: 1024,
		Out:              &out,
	})
	res := resolver.New(remote.New(client), dl, confirmer, 3,
		resolver.WithOutput(&out), resolver.WithSampler(first))

	err = runPullWith(context.Background(), store, res, first, &out, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "reward.bin"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, []string{download.ConfirmQuestion}, confirmer.asked)
	assert.Contains(t, out.String(), "Following nested repository")
	assert.Contains(t, out.String(), "Saved to")
}

// --- repository add / remove / list ---

func TestRunAdd(t *testing.T) {
	t.Parallel()

	reposPath := filepath.Join(t.TempDir(), "repos.txt")
	var out bytes.Buffer

	require.NoError(t, runAddWith(reposPath, "  https://a/list  ", &out))
	assert.Contains(t, out.String(), "Added https://a/list")

	out.Reset()
	require.NoError(t, runAddWith(reposPath, "https://a/list", &out))
	assert.Contains(t, out.String(), "already exists")

	m, err := manifest.Load(reposPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/list"}, m.URLs())
}

func TestRunAdd_RejectsEmptyURL(t *testing.T) {
	t.Parallel()

	reposPath := filepath.Join(t.TempDir(), "repos.txt")
	err := runAddWith(reposPath, "   ", &bytes.Buffer{})

	require.Error(t, err)
	assert.False(t, manifest.Exists(reposPath))
}

func TestRunRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.txt")
	lockFile := filepath.Join(dir, manifest.DefaultLockFile)
	store := repository.NewStore(filepath.Join(dir, "sync"))

	require.NoError(t, runAddWith(reposPath, "https://a/list", &bytes.Buffer{}))
	require.NoError(t, runAddWith(reposPath, "https://b/list", &bytes.Buffer{}))
	path, err := store.Save("https://a/list", []byte("https://x\n"))
	require.NoError(t, err)
	lock := manifest.NewLockFile()
	lock.Set("https://a/list", path, 1, []byte("https://x\n"))
	require.NoError(t, lock.Save(lockFile))

	var out, errOut bytes.Buffer
	require.NoError(t, runRemoveWith(reposPath, lockFile, store, "https://a/list", &out, &errOut))

	assert.Contains(t, out.String(), "Removed https://a/list")
	assert.NoFileExists(t, path)

	m, err := manifest.Load(reposPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b/list"}, m.URLs())

	lock, err = manifest.LoadLock(lockFile)
	require.NoError(t, err)
	_, ok := lock.Get("https://a/list")
	assert.False(t, ok)
}

func TestRunRemove_NotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.txt")
	require.NoError(t, runAddWith(reposPath, "https://a/list", &bytes.Buffer{}))

	var out, errOut bytes.Buffer
	err := runRemoveWith(reposPath, filepath.Join(dir, "sync.lock"), repository.NewStore(dir), "https://zzz", &out, &errOut)

	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "not found")
	assert.Empty(t, out.String())
}

func TestRunList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	syncDir := filepath.Join(dir, "sync")
	reposPath := filepath.Join(dir, "repos.txt")
	lockFile := filepath.Join(dir, "sync.lock")

	var out bytes.Buffer
	require.NoError(t, runListWith(reposPath, lockFile, syncDir, &download.OSFileWriter{}, &out))
	assert.Contains(t, out.String(), "No repositories added yet")

	require.NoError(t, runAddWith(reposPath, "https://a/list", &bytes.Buffer{}))
	require.NoError(t, runAddWith(reposPath, "https://b/list", &bytes.Buffer{}))
	lock := manifest.NewLockFile()
	lock.Set("https://a/list", filepath.Join(syncDir, "a_list"), 2, []byte("x\ny\n"))
	require.NoError(t, lock.Save(lockFile))

	fs := newTestFileWriter(filepath.Join(syncDir, "a_list"))
	out.Reset()
	require.NoError(t, runListWith(reposPath, lockFile, syncDir, fs, &out))

	assert.Contains(t, out.String(), "https://a/list\t(2 lines, synced ")
	assert.Contains(t, out.String(), "https://b/list\t(not synced)")
}

// --- repository sync ---

func TestRunSync(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.txt")
	lockFile := filepath.Join(dir, "sync.lock")
	store := repository.NewStore(filepath.Join(dir, "sync"))

	require.NoError(t, runAddWith(reposPath, "https://a/list", &bytes.Buffer{}))
	fetcher := fakeRawFetcher{"https://a/list": []byte("# header\nhttps://x/1\nNested https://y/list\n")}

	var out bytes.Buffer
	require.NoError(t, runSyncWith(context.Background(), reposPath, lockFile, store, fetcher, &out))

	assert.Contains(t, out.String(), "(2 lines)")
	assert.Contains(t, out.String(), "All repositories have been synced")

	lines, err := store.Read(store.Path("https://a/list"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1", "Nested https://y/list"}, lines)

	lock, err := manifest.LoadLock(lockFile)
	require.NoError(t, err)
	entry, ok := lock.Get("https://a/list")
	require.True(t, ok)
	assert.Equal(t, 2, entry.Lines)
	assert.NotEmpty(t, entry.Checksum)

	out.Reset()
	require.NoError(t, runSyncWith(context.Background(), reposPath, lockFile, store, fetcher, &out))
	assert.Contains(t, out.String(), "https://a/list (unchanged, 2 lines)")
}

func TestRunSync_ContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.txt")
	lockFile := filepath.Join(dir, "sync.lock")
	store := repository.NewStore(filepath.Join(dir, "sync"))

	require.NoError(t, runAddWith(reposPath, "https://broken/list", &bytes.Buffer{}))
	require.NoError(t, runAddWith(reposPath, "https://ok/list", &bytes.Buffer{}))
	fetcher := fakeRawFetcher{"https://ok/list": []byte("https://x/1\n")}

	var out bytes.Buffer
	err := runSyncWith(context.Background(), reposPath, lockFile, store, fetcher, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error(s)")
	assert.Contains(t, out.String(), "❌ https://broken/list")

	lock, err := manifest.LoadLock(lockFile)
	require.NoError(t, err)
	_, ok := lock.Get("https://ok/list")
	assert.True(t, ok)
	_, ok = lock.Get("https://broken/list")
	assert.False(t, ok)
}

func TestRunSync_NoRepositories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out bytes.Buffer
	err := runSyncWith(context.Background(), filepath.Join(dir, "repos.txt"), filepath.Join(dir, "sync.lock"),
		repository.NewStore(dir), fakeRawFetcher{}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "No repositories added yet")
}

// --- repository check ---

func TestRunCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.txt")
	lockFile := filepath.Join(dir, "sync.lock")
	syncDir := filepath.Join(dir, "sync")
	store := repository.NewStore(syncDir)

	require.NoError(t, runAddWith(reposPath, "https://a/list", &bytes.Buffer{}))
	require.NoError(t, runSyncWith(context.Background(), reposPath, lockFile, store,
		fakeRawFetcher{"https://a/list": []byte("https://x/1\n")}, &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, runCheckWith(true, reposPath, lockFile, syncDir, &out))
	assert.Contains(t, out.String(), "All repositories are synced")

	require.NoError(t, runAddWith(reposPath, "https://b/list", &bytes.Buffer{}))

	out.Reset()
	require.NoError(t, runCheckWith(false, reposPath, lockFile, syncDir, &out))
	assert.Contains(t, out.String(), "https://b/list — missing (never synced)")
	assert.Contains(t, out.String(), "Found 1 issue(s)")

	err := runCheckWith(true, reposPath, lockFile, syncDir, &bytes.Buffer{})
	assert.ErrorContains(t, err, "Found 1 issue(s)")
}

func TestRunCheck_NoRepositories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out bytes.Buffer
	err := runCheckWith(true, filepath.Join(dir, "repos.txt"), filepath.Join(dir, "sync.lock"), dir, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "nothing to check")
}

// --- command wiring ---

func TestNewRootCmd_Commands(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()

	pull, _, err := root.Find([]string{"pull"})
	require.NoError(t, err)
	assert.Equal(t, "pull", pull.Name())
	require.NotNil(t, pull.Flags().Lookup("max-depth"))
	assert.Equal(t, "m", pull.Flags().Lookup("max-depth").Shorthand)

	for _, name := range []string{"add", "remove", "list", "sync", "check"} {
		cmd, _, err := root.Find([]string{"repository", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	rm, _, err := root.Find([]string{"repo", "rm"})
	require.NoError(t, err)
	assert.Equal(t, "remove", rm.Name())
}

func TestCompleteRepositoryURL(t *testing.T) {
	t.Parallel()

	reposPath := filepath.Join(t.TempDir(), "repos.txt")
	require.NoError(t, runAddWith(reposPath, "https://a/list", &bytes.Buffer{}))
	require.NoError(t, runAddWith(reposPath, "https://b/list", &bytes.Buffer{}))

	got, _ := completeRepositoryURL(reposPath, "https://a")
	assert.Equal(t, []string{"https://a/list\tRepository"}, got)
}
