package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/puzpuzpuz/xsync/v3"
)

var ErrProblemNotFound = errors.New("problem not found")

const currentFile = "current"

// ProblemStore keeps every problem as <id>.json in one directory and an
// in-memory index of them. The id of the current problem is kept in a small
// file next to them so it survives restarts.
type ProblemStore struct {
	dir string
	log *slog.Logger

	problems *xsync.MapOf[uuid.UUID, *models.Problem]

	mu      sync.Mutex // serializes disk writes and current
	current uuid.UUID
}

// OpenProblemStore creates dir if needed and loads every problem in it.
// Unreadable problem files are logged and skipped.
func OpenProblemStore(dir string, log *slog.Logger) (*ProblemStore, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create problem dir: %w", err)
	}
	s := &ProblemStore{
		dir:      dir,
		log:      log.With("component", "problems"),
		problems: xsync.NewMapOf[uuid.UUID, *models.Problem](),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ProblemStore) Dir() string {
	return s.dir
}

func (s *ProblemStore) load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("failed to read problem file", "path", path, "error", err)
			continue
		}
		var p models.Problem
		if err := json.Unmarshal(b, &p); err != nil {
			s.log.Warn("failed to parse problem file", "path", path, "error", err)
			continue
		}
		s.problems.Store(p.ID, &p)
	}

	b, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		s.log.Warn("failed to read current problem", "error", err)
	default:
		id, err := uuid.Parse(strings.TrimSpace(string(b)))
		if _, ok := s.problems.Load(id); err == nil && ok {
			s.current = id
		}
	}
	s.log.Debug("loaded problems", "count", s.problems.Size())
	return nil
}

// Add saves p and makes it the current problem.
func (s *ProblemStore) Add(p *models.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(p); err != nil {
		return err
	}
	s.problems.Store(p.ID, p)
	return s.setCurrent(p.ID)
}

// Put saves p, adding or replacing it, without touching the current problem.
func (s *ProblemStore) Put(p *models.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(p); err != nil {
		return err
	}
	s.problems.Store(p.ID, p)
	return nil
}

// Update rewrites a problem that is already in the store.
func (s *ProblemStore) Update(p *models.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.problems.Load(p.ID); !ok {
		return fmt.Errorf("%w: %s", ErrProblemNotFound, p.ID)
	}
	if err := s.save(p); err != nil {
		return err
	}
	s.problems.Store(p.ID, p)
	return nil
}

func (s *ProblemStore) Get(id uuid.UUID) (*models.Problem, bool) {
	return s.problems.Load(id)
}

// Find resolves a full id or an unambiguous id prefix.
func (s *ProblemStore) Find(ref string) (*models.Problem, error) {
	if id, err := uuid.Parse(ref); err == nil {
		if p, ok := s.problems.Load(id); ok {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrProblemNotFound, ref)
	}
	var found []*models.Problem
	s.problems.Range(func(id uuid.UUID, p *models.Problem) bool {
		if ref != "" && strings.HasPrefix(id.String(), ref) {
			found = append(found, p)
		}
		return true
	})
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrProblemNotFound, ref)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("problem id prefix %q is ambiguous (%d matches)", ref, len(found))
}

func (s *ProblemStore) Current() (*models.Problem, bool) {
	s.mu.Lock()
	id := s.current
	s.mu.Unlock()
	if id == uuid.Nil {
		return nil, false
	}
	return s.problems.Load(id)
}

func (s *ProblemStore) SetCurrent(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.problems.Load(id); !ok {
		return fmt.Errorf("%w: %s", ErrProblemNotFound, id)
	}
	return s.setCurrent(id)
}

// List returns all problems, newest first.
func (s *ProblemStore) List() []*models.Problem {
	res := make([]*models.Problem, 0, s.problems.Size())
	s.problems.Range(func(_ uuid.UUID, p *models.Problem) bool {
		res = append(res, p)
		return true
	})
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res
}

func (s *ProblemStore) Len() int {
	return s.problems.Size()
}

// Delete removes a problem. Deleting an unknown id is not an error.
func (s *ProblemStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.problems.LoadAndDelete(id); !ok {
		return nil
	}
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove problem file: %w", err)
	}
	if s.current == id {
		return s.setCurrent(uuid.Nil)
	}
	return nil
}

func (s *ProblemStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

func (s *ProblemStore) save(p *models.Problem) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode problem: %w", err)
	}
	return writeFileAtomic(s.path(p.ID), b)
}

func (s *ProblemStore) setCurrent(id uuid.UUID) error {
	s.current = id
	path := filepath.Join(s.dir, currentFile)
	if id == uuid.Nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear current problem: %w", err)
		}
		return nil
	}
	return writeFileAtomic(path, []byte(id.String()+"\n"))
}
