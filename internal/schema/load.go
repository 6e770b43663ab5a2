package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// docSchemaJSON is the JSON Schema that every loaded schema document's shape
// must satisfy before it's decoded into a *Schema. This validates
// structure only (are the mapping keys and value types sane); it does not
// (and cannot) validate semantic consistency like dangling allow-set
// references, which the engine itself tolerates as part of never failing
// a parse outright.
const docSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "schemaVersion": {"type": "string"},
    "tags": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "nestingLimit": {"type": "integer", "minimum": 0},
          "tagLimit": {"type": "integer", "minimum": 0}
        }
      }
    },
    "plugins": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "regexpLimit": {"type": "integer", "minimum": 0},
          "regexpLimitAction": {"type": "string"}
        }
      }
    },
    "filters": {"type": "object"}
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledDocSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("tagforge-schema.json", bytes.NewReader([]byte(docSchemaJSON))); err != nil {
			compileErr = fmt.Errorf("tagforge: compiling internal schema-shape validator: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("tagforge-schema.json")
	})
	return compiled, compileErr
}

// rawDoc mirrors the YAML/JSON document shape closely enough to decode it;
// the nested tag/plugin/filter bodies decode into the raw* structs of
// convert.go, which turns them into the engine's typed configuration.
// An absent section is omitted on re-marshaling, so shape validation
// does not see it as null.
type rawDoc struct {
	SchemaVersion string                 `yaml:"schemaVersion" json:"schemaVersion"`
	Tags          map[string]rawTag      `yaml:"tags" json:"tags,omitempty"`
	Plugins       map[string]rawPlugin   `yaml:"plugins" json:"plugins,omitempty"`
	Filters       map[string]rawFilter   `yaml:"filters" json:"filters,omitempty"`
}

// validateShape re-marshals doc to JSON and runs it through the compiled
// JSON Schema, the same load-then-validate sequence as
// core/types/validation.go's Validator.ValidateParams.
func validateShape(doc rawDoc) error {
	v, err := compiledDocSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("tagforge: marshaling schema document for validation: %w", err)
	}
	var inst any
	if err := json.Unmarshal(data, &inst); err != nil {
		return fmt.Errorf("tagforge: decoding schema document for validation: %w", err)
	}
	if err := v.Validate(inst); err != nil {
		return fmt.Errorf("tagforge: schema document failed shape validation: %w", err)
	}
	if doc.SchemaVersion != "" && !semver.IsValid("v"+doc.SchemaVersion) && !semver.IsValid(doc.SchemaVersion) {
		return fmt.Errorf("tagforge: schemaVersion %q is not a valid semantic version", doc.SchemaVersion)
	}
	return nil
}

// LoadYAML decodes and validates a schema document from YAML bytes.
func LoadYAML(data []byte) (*Schema, error) {
	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("tagforge: decoding YAML schema document: %w", err)
	}
	if err := validateShape(doc); err != nil {
		return nil, err
	}
	return convert(doc)
}

// LoadYAMLFile reads and loads a schema document from a path on disk.
func LoadYAMLFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tagforge: reading schema file %s: %w", path, err)
	}
	return LoadYAML(data)
}

// Watcher watches a schema file on disk and swaps an Engine's active
// schema atomically whenever it changes, so a long-running host process
// can retune nesting limits and allow-lists without a redeploy. It never
// touches a parse already in flight: the schema is read-only for the
// duration of any one parse, and Swap only replaces the pointer a future
// parse will read.
type Watcher struct {
	path string
	swap func(*Schema)

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a Watcher that calls swap with a freshly loaded
// Schema each time path changes on disk. It does not start watching until
// Start is called.
func NewWatcher(path string, swap func(*Schema)) *Watcher {
	return &Watcher{path: path, swap: swap}
}

// Start begins watching. It loads the schema once synchronously before
// returning so callers always have an initial schema.
//
// The directory, not the file itself, is what gets watched: editors
// commonly save by writing a temp file and renaming it over the target,
// which replaces the inode fsnotify had a watch on and would otherwise
// leave later writes silently unobserved.
func (w *Watcher) Start(ctx context.Context) (*Schema, error) {
	initial, err := LoadYAMLFile(w.path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tagforge: creating schema file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("tagforge: watching schema directory %s: %w", dir, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(ctx)
	return initial, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if s, err := LoadYAMLFile(w.path); err == nil {
				w.swap(s)
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Stop blocks until the watch loop has exited.
func (w *Watcher) Stop() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}
