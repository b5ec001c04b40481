package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt overrides from <dir>/<name>.txt.
// A missing or blank file means the built-in prompt is used, so edits to
// the built-ins reach users who never customised them.
//
// The store initialises lazily: the directory and its README are created on
// the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a prompt store rooted at promptDir.
// If promptDir is empty, defaults to ~/.zenji/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  domain.DefaultPrompts(),
		cache:     make(map[string]string),
	}, nil
}

// Load returns the override for name if one exists, otherwise the built-in.
// Unknown names without an override file are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	switch {
	case err == nil && prompt != "":
	case s.defaults[name] != "":
		prompt = s.defaults[name]
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, domain.ErrNotFound)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Names returns the built-in prompt names in sorted order.
func (s *PromptStore) Names() []string {
	return slices.Sorted(maps.Keys(s.defaults))
}

// Overridden reports whether a non-blank override file exists for name.
func (s *PromptStore) Overridden(name string) bool {
	prompt, err := s.loadFromFile(name)
	return err == nil && prompt != ""
}

// initialise creates the prompt directory and README. A failure leaves the
// built-ins in effect.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	var b strings.Builder
	b.WriteString("# Zenji Prompts\n\n")
	b.WriteString("Create any of these files to replace the built-in prompt:\n\n")
	for _, name := range s.Names() {
		fmt.Fprintf(&b, "- `%s.txt`\n", name)
	}
	b.WriteString("\nRun `zenji settings prompts` to print the built-in text.\n")
	b.WriteString("Delete or empty a file to go back to the built-in prompt.\n")
	b.WriteString("The planner prompt must keep asking for a single JSON object.\n")

	return os.WriteFile(path, []byte(b.String()), 0600)
}
