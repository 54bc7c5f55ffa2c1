// Package fileio implements the reference-counted file-handle service
// (node.FileService/node.FileHandle): graph nodes that share the same
// underlying path — an emitter reading an impulse response and a sink
// writing its processed output, say — clone a handle rather than each
// opening their own os.File, mirroring original_source's file/handle.rs.
package fileio

import (
	"os"
	"path/filepath"
	"sync"

	"zikichombo.org/noisegraph/node"
)

// Service opens and tracks file handles for a single graph run.
type Service struct {
	mu      sync.Mutex
	baseDir string
	shared  map[string]*shared
}

// New constructs a file service rooted at baseDir (relative paths passed to
// Open are joined against it; an empty baseDir leaves paths as given).
func New(baseDir string) *Service {
	return &Service{baseDir: baseDir, shared: make(map[string]*shared)}
}

type shared struct {
	mu    sync.Mutex
	f     *os.File
	count int
}

// Open returns a Handle for path, opening the underlying os.File on first
// use and sharing it (refcounted) across subsequent Opens of the same path.
func (s *Service) Open(path string, write bool) (node.FileHandle, error) {
	full := path
	if s.baseDir != "" && !filepath.IsAbs(path) {
		full = s.baseDir + string(os.PathSeparator) + path
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shared[full]
	if !ok {
		flag := os.O_RDONLY
		if write {
			flag = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		}
		f, err := os.OpenFile(full, flag, 0644)
		if err != nil {
			return nil, err
		}
		sh = &shared{f: f}
		s.shared[full] = sh
	}
	sh.count++
	return &Handle{svc: s, path: full, sh: sh}, nil
}

// Handle is a reference-counted, uniquely-owned file descriptor.
type Handle struct {
	svc  *Service
	path string
	sh   *shared
}

func (h *Handle) Read(p []byte) (int, error) {
	h.sh.mu.Lock()
	defer h.sh.mu.Unlock()
	return h.sh.f.Read(p)
}

func (h *Handle) Write(p []byte) (int, error) {
	h.sh.mu.Lock()
	defer h.sh.mu.Unlock()
	return h.sh.f.Write(p)
}

// Close decrements the shared handle's refcount, closing the underlying
// file only once the last clone has closed.
func (h *Handle) Close() error {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.sh.count--
	if h.sh.count > 0 {
		return nil
	}
	delete(h.svc.shared, h.path)
	return h.sh.f.Close()
}

// Clone returns a new Handle sharing this one's underlying file descriptor,
// bumping its refcount.
func (h *Handle) Clone() node.FileHandle {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.sh.count++
	return &Handle{svc: h.svc, path: h.path, sh: h.sh}
}
