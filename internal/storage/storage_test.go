package storage_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")

	assert.Equal(t, filepath.Join(dir, ".cpkit", "a.cpp.json"), storage.SidecarPath(src))

	tests, err := storage.LoadTests(src)
	require.NoError(t, err)
	assert.Empty(t, tests)

	tc := models.NewTestCase("1 2\n", "3\n")
	out := "3\n"
	d := 15 * time.Millisecond
	tc.Status = models.Accepted
	tc.ActualOutput = &out
	tc.ExecutionTime = &d
	require.NoError(t, storage.SaveTests(src, []models.TestCase{tc, models.NewTestCase("", "")}))

	loaded, err := storage.LoadTests(src)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, tc, loaded[0])
	assert.Equal(t, models.Pending, loaded[1].Status)
	assert.Nil(t, loaded[1].ActualOutput)
}

func TestSidecarCorrupt(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "b.py")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cpkit"), 0o755))
	require.NoError(t, os.WriteFile(storage.SidecarPath(src), []byte("{not json"), 0o644))

	_, err := storage.LoadTests(src)
	require.Error(t, err)
}

func newProblem(name string, created time.Time) *models.Problem {
	p := models.NewProblem(name, "Codeforces", "https://codeforces.com/"+name)
	p.CreatedAt = created
	p.AddTest("1\n", "1\n")
	return &p
}

func TestProblemStore(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.OpenProblemStore(dir, nil)
	require.NoError(t, err)
	_, ok := s.Current()
	assert.False(t, ok)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older := newProblem("A", base)
	newer := newProblem("B", base.Add(time.Hour))
	require.NoError(t, s.Add(older))
	require.NoError(t, s.Add(newer))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, newer.ID, cur.ID, "the newest addition becomes current")

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Name)
	assert.Equal(t, "A", list[1].Name)

	require.NoError(t, s.SetCurrent(older.ID))
	older.Tests[0].Status = models.WrongAnswer
	require.NoError(t, s.Update(older))

	// a second store sees the same state
	reopened, err := storage.OpenProblemStore(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())
	cur, ok = reopened.Current()
	require.True(t, ok)
	assert.Equal(t, older.ID, cur.ID)
	assert.Equal(t, models.WrongAnswer, cur.Tests[0].Status)

	p, err := reopened.Find(older.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)

	require.NoError(t, reopened.Delete(older.ID))
	require.NoError(t, reopened.Delete(older.ID))
	_, ok = reopened.Current()
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(dir, older.ID.String()+".json"))
}

func TestProblemStoreErrors(t *testing.T) {
	s, err := storage.OpenProblemStore(t.TempDir(), nil)
	require.NoError(t, err)

	p := newProblem("X", time.Now())
	require.ErrorIs(t, s.Update(p), storage.ErrProblemNotFound)
	require.ErrorIs(t, s.SetCurrent(uuid.New()), storage.ErrProblemNotFound)
	_, err = s.Find("zzz")
	require.ErrorIs(t, err, storage.ErrProblemNotFound)
}

func TestProblemStoreSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := newProblem("ok", time.Now())
	s, err := storage.OpenProblemStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(good))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	reopened, err := storage.OpenProblemStore(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
	_, ok := reopened.Get(good.ID)
	assert.True(t, ok)
	_, ok = reopened.Current()
	assert.False(t, ok, "Put does not change the current problem")
}

func TestArchiveRoundTrip(t *testing.T) {
	probs := []*models.Problem{
		newProblem("A", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		newProblem("B", time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)),
	}
	var buf bytes.Buffer
	require.NoError(t, storage.Export(&buf, probs))
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, buf.Bytes()[:4], "zstd magic")

	got, err := storage.Import(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, probs[0].ID, got[0].ID)
	assert.Equal(t, probs[1].Tests[0].Input, got[1].Tests[0].Input)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := storage.Import(bytes.NewReader([]byte("plain text")))
	require.Error(t, err)
}
