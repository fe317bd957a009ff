package definitions

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// yamlDefinition mirrors the on-disk workflow definition schema:
//
//	workflow: small-claims
//	steps:
//	  - form: sc100
//	    required: true
//	    map_fields:
//	      - from: plaintiff_name
//	        to: plaintiff_name
//	  - form: sc100a
//
// Step positions default to document order; an explicit position field is
// accepted and validated for contiguity.
type yamlDefinition struct {
	Workflow string     `yaml:"workflow"`
	Steps    []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	Position  int           `yaml:"position"`
	Form      string        `yaml:"form"`
	Required  bool          `yaml:"required"`
	MapFields []yamlMapping `yaml:"map_fields"`
}

type yamlMapping struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ParseDefinition parses and validates a single workflow definition from
// YAML bytes.
func ParseDefinition(data []byte) (api.WorkflowDefinition, error) {
	var doc yamlDefinition
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return api.WorkflowDefinition{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	def := api.WorkflowDefinition{
		ID:    doc.Workflow,
		Steps: make([]api.StepDefinition, 0, len(doc.Steps)),
	}
	for i, s := range doc.Steps {
		pos := s.Position
		if pos == 0 {
			pos = i + 1
		}
		step := api.StepDefinition{
			Position: pos,
			FormID:   s.Form,
			Required: s.Required,
		}
		for _, m := range s.MapFields {
			step.FieldMappings = append(step.FieldMappings, api.FieldMapping{From: m.From, To: m.To})
		}
		def.Steps = append(def.Steps, step)
	}

	if err := def.Validate(); err != nil {
		return api.WorkflowDefinition{}, err
	}
	return def, nil
}

// LoadDefinitionFile reads and parses one workflow definition from a file.
func LoadDefinitionFile(filePath string) (api.WorkflowDefinition, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return api.WorkflowDefinition{}, fmt.Errorf("failed to read definition file %q: %w", filePath, err)
	}
	return ParseDefinition(data)
}

// FileStore is a Store that reads workflow definitions from the .yaml/.yml
// files directly under a directory of an fs.FS. Definitions are loaded once
// and cached; Reload re-reads the directory.
type FileStore struct {
	fsys fs.FS
	dir  string

	mu   sync.RWMutex
	defs map[string]api.WorkflowDefinition
}

// Ensure FileStore implements the store interface.
var _ api.DefinitionStore = (*FileStore)(nil)

// NewDirStore creates a FileStore over a filesystem directory.
func NewDirStore(dir string) (*FileStore, error) {
	return NewFSStore(os.DirFS(dir), ".")
}

// NewFSStore creates a FileStore over an fs.FS (typically an embed.FS),
// reading definitions from the given directory within it.
func NewFSStore(fsys fs.FS, dir string) (*FileStore, error) {
	s := &FileStore{fsys: fsys, dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads every definition file. On error the previous cache is
// kept, so a bad edit during development does not wipe loaded workflows.
func (s *FileStore) Reload() error {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return fmt.Errorf("failed to read definitions dir %q: %w", s.dir, err)
	}

	defs := make(map[string]api.WorkflowDefinition)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(path.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := fs.ReadFile(s.fsys, path.Join(s.dir, name))
		if err != nil {
			return fmt.Errorf("failed to read definition %q: %w", name, err)
		}
		def, err := ParseDefinition(data)
		if err != nil {
			return fmt.Errorf("definition %q: %w", name, err)
		}
		if _, dup := defs[def.ID]; dup {
			return fmt.Errorf("definition %q: duplicate workflow id %q", name, def.ID)
		}
		defs[def.ID] = def
	}

	s.mu.Lock()
	s.defs = defs
	s.mu.Unlock()
	return nil
}

func (s *FileStore) Load(workflowID string) (api.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.defs[workflowID]
	if !ok {
		return api.WorkflowDefinition{}, fmt.Errorf("%w: %s", api.ErrWorkflowNotFound, workflowID)
	}
	return def, nil
}

func (s *FileStore) Steps(workflowID string) iter.Seq[api.StepDefinition] {
	return stepsSeq(s, workflowID)
}

func (s *FileStore) StepAt(workflowID string, position int) (api.StepDefinition, bool) {
	def, err := s.Load(workflowID)
	if err != nil {
		return api.StepDefinition{}, false
	}
	return def.StepAt(position)
}

func (s *FileStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.defs)
}
