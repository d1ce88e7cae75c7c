// Package codebase owns the per-file document store and the completion
// engine that runs against it.
package codebase

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/csense/config"
	"github.com/dhamidi/csense/cpp/parser"
	"github.com/dhamidi/csense/cpp/preprocessor"
)

var log = commonlog.GetLogger("csense.codebase")

// FileProvider resolves logical file paths to their current content.
type FileProvider interface {
	Text(path string) ([]byte, error)
	AbsolutePath(path string) (string, error)
}

var (
	// ErrUnknownDocument is returned by Get for a path never opened or
	// built; that is a caller bug, not bad user input.
	ErrUnknownDocument = errors.New("codebase: document not in store")
	// ErrBadPosition is returned when the completion column is not
	// greater than zero.
	ErrBadPosition = errors.New("codebase: completion column must be greater than zero")
	// ErrUnsupported is returned when type inference meets an expression
	// kind it does not handle.
	ErrUnsupported = errors.New("codebase: unsupported expression kind")
)

// Document is the fully parsed state of one source file. Documents are
// replaced wholesale on edit, never mutated; a document in the store is
// always complete.
type Document struct {
	Path      string
	Text      []byte
	Processed []byte
	Includes  []string
	Tree      *parser.Tree
	Hash      uint64
}

// Codebase is the document store plus everything completion needs around it.
// All public methods serialize on the internal lock: edits exclude reads,
// and one completion request runs at a time.
type Codebase struct {
	mu        sync.RWMutex
	files     FileProvider
	cfg       *config.Config
	documents map[string]*Document
}

func New(files FileProvider, cfg *config.Config) *Codebase {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Codebase{
		files:     files,
		cfg:       cfg,
		documents: make(map[string]*Document),
	}
}

// GetOrCreate returns the cached document for path, building it (and,
// transitively, its includes) on first reference.
func (c *Codebase) GetOrCreate(path string) (*Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getOrCreateLocked(path)
}

// Get returns the cached document for path and ErrUnknownDocument when the
// path was never built.
func (c *Codebase) Get(path string) (*Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getLocked(path)
}

// OnEdit rebuilds the document for path from its current content. Documents
// that include path are left untouched: they keep serving their previously
// parsed state until edited themselves.
func (c *Codebase) OnEdit(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.buildLocked(path)
	return err
}

// OnOpen behaves exactly like OnEdit: opening a file replaces whatever state
// the store had for it.
func (c *Codebase) OnOpen(path string) error {
	return c.OnEdit(path)
}

// OnExternalChange rebuilds a tracked document after a file-system event,
// skipping the rebuild when the content hash is unchanged (editors love to
// touch files without changing them). Untracked paths are ignored.
func (c *Codebase) OnExternalChange(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	abs, err := c.files.AbsolutePath(path)
	if err != nil {
		return err
	}
	doc, ok := c.documents[abs]
	if !ok {
		return nil
	}
	if text, err := c.files.Text(abs); err == nil && xxhash.Sum64(text) == doc.Hash {
		log.Debugf("unchanged content for %s, keeping cached document", abs)
		return nil
	}
	_, err = c.buildLocked(abs)
	return err
}

func (c *Codebase) getLocked(path string) (*Document, error) {
	abs, err := c.files.AbsolutePath(path)
	if err != nil {
		return nil, err
	}
	doc, ok := c.documents[abs]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, abs)
	}
	return doc, nil
}

func (c *Codebase) getOrCreateLocked(path string) (*Document, error) {
	abs, err := c.files.AbsolutePath(path)
	if err != nil {
		return nil, err
	}
	if doc, ok := c.documents[abs]; ok {
		return doc, nil
	}
	return c.buildLocked(abs)
}

// buildLocked fetches, preprocesses, and parses path, replaces the store
// entry, and then populates every resolved include that is not present yet.
// The entry is registered before the include walk so include cycles
// terminate: already present means skip.
func (c *Codebase) buildLocked(path string) (*Document, error) {
	abs, err := c.files.AbsolutePath(path)
	if err != nil {
		return nil, err
	}
	text, err := c.files.Text(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	pp := preprocessor.New(string(text))
	processed := []byte(pp.Process())
	doc := &Document{
		Path:      abs,
		Text:      text,
		Processed: processed,
		Includes:  pp.IncludedPaths(),
		Tree:      parser.Parse(processed),
		Hash:      xxhash.Sum64(text),
	}
	c.documents[abs] = doc

	for _, include := range doc.Includes {
		target := c.resolveInclude(include)
		if target == "" {
			log.Debugf("skipping unresolvable include %q in %s", include, abs)
			continue
		}
		targetAbs, err := c.files.AbsolutePath(target)
		if err != nil {
			continue
		}
		if _, ok := c.documents[targetAbs]; ok {
			continue
		}
		if _, err := c.buildLocked(targetAbs); err != nil {
			// A bad header fails only itself, never the including
			// document.
			log.Debugf("skipping include %q: %s", include, err.Error())
		}
	}
	return doc, nil
}

var (
	systemIncludePattern = regexp.MustCompile(`<(.+)>`)
	localIncludePattern  = regexp.MustCompile(`"(.+)"`)
)

// resolveInclude maps a raw include directive to a document path: the
// angle-bracket form lands under the system include root, the quoted form is
// taken verbatim. Anything else resolves to "".
func (c *Codebase) resolveInclude(raw string) string {
	if m := systemIncludePattern.FindStringSubmatch(raw); m != nil {
		return filepath.Join(c.cfg.SystemIncludeDir, m[1])
	}
	if m := localIncludePattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}
