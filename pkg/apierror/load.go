package apierror

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// tableFile is the YAML layout of an override file:
//
//	defaults:
//	  TIMEOUT: {title: ..., message: ...}
//	actions:
//	  LOGIN:
//	    "401": {title: ..., message: ...}
//	    NETWORK_ERROR: {title: ..., message: ...}
type tableFile struct {
	Defaults map[string]Presentation            `yaml:"defaults"`
	Actions  map[string]map[string]Presentation `yaml:"actions"`
}

// LoadTable reads overrides from r and layers them over base. Keys under an
// action are either a decimal status code or a category name. base is not
// modified.
func LoadTable(base *Table, r io.Reader) (*Table, error) {
	if base == nil {
		base = DefaultTable()
	}

	var file tableFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode error table: %w", err)
	}

	t := newTable(base.defaults, base.actions)

	for key, p := range file.Defaults {
		c := Category(key)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q in defaults", key)
		}
		t.defaults[c] = p
	}

	for name, entries := range file.Actions {
		if name == "" {
			return nil, fmt.Errorf("empty action name")
		}
		action := Action(name)
		o := t.actions[action]

		for key, p := range entries {
			if status, err := strconv.Atoi(key); err == nil {
				if status < 100 || status > 599 {
					return nil, fmt.Errorf("action %s: status %d out of range", name, status)
				}
				if o.ByStatus == nil {
					o.ByStatus = make(map[int]Presentation)
				}
				o.ByStatus[status] = p
				continue
			}

			c := Category(key)
			if !c.Valid() {
				return nil, fmt.Errorf("action %s: unknown key %q", name, key)
			}
			if o.ByCategory == nil {
				o.ByCategory = make(map[Category]Presentation)
			}
			o.ByCategory[c] = p
		}

		t.actions[action] = o
	}

	return t, nil
}

// LoadTableFile is LoadTable over a file on disk. An empty path returns the
// default table.
func LoadTableFile(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open error table: %w", err)
	}
	defer f.Close()

	return LoadTable(DefaultTable(), f)
}
