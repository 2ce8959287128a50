package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk layout of a schema file:
//
//	root: Doc
//	types:
//	  - name: Doc
//	    fields:
//	      - {name: items, type: "[]int32", selectable: true, width: "16"}
//	      - {name: rows, type: "[]Row"}
//	  - name: Row
//	    fields:
//	      - {name: label, type: string}
type fileSchema struct {
	Root  string       `yaml:"root"`
	Types []fileRecord `yaml:"types"`
}

type fileRecord struct {
	Name   string      `yaml:"name"`
	Fields []fileField `yaml:"fields"`
}

type fileField struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Selectable bool   `yaml:"selectable"`
	Width      string `yaml:"width"`
}

// LoadFile reads and parses a YAML schema file.
func LoadFile(path string) (*Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	t, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return t, nil
}

// ParseYAML builds the root type described by a YAML schema document.
func ParseYAML(data []byte) (*Type, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if fs.Root == "" {
		return nil, fmt.Errorf("%w: missing root", ErrInvalidType)
	}

	p := &parser{
		decls: make(map[string]fileRecord, len(fs.Types)),
		built: make(map[string]*Type, len(fs.Types)),
		state: make(map[string]int, len(fs.Types)),
	}
	for _, r := range fs.Types {
		if _, dup := p.decls[r.Name]; dup {
			return nil, fmt.Errorf("%w: record %s declared twice", ErrInvalidType, r.Name)
		}
		p.decls[r.Name] = r
	}
	return p.expr(fs.Root)
}

type parser struct {
	decls map[string]fileRecord
	built map[string]*Type
	state map[string]int // 1 = building, 2 = built
}

func (p *parser) record(name string) (*Type, error) {
	switch p.state[name] {
	case 2:
		return p.built[name], nil
	case 1:
		return nil, fmt.Errorf("%w: %s", ErrCyclicType, name)
	}
	decl, ok := p.decls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	p.state[name] = 1

	seen := make(map[string]bool, len(decl.Fields))
	fields := make([]Field, 0, len(decl.Fields))
	for _, ff := range decl.Fields {
		if seen[ff.Name] {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, name, ff.Name)
		}
		seen[ff.Name] = true

		ft, err := p.expr(ff.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, ff.Name, err)
		}
		if ff.Selectable {
			if !ft.IsSequence() {
				return nil, fmt.Errorf("%w: %s.%s is %s and cannot be selectable", ErrInvalidType, name, ff.Name, ft)
			}
			ft = ft.Selectable()
		}
		f := F(ff.Name, ft)
		if ff.Width != "" {
			w, err := ParseWidth(ff.Width)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, ff.Name, err)
			}
			f = f.Width(w)
		}
		fields = append(fields, f)
	}

	t := Record(name, fields...)
	p.built[name] = t
	p.state[name] = 2
	return t, nil
}

// expr parses a type expression.
func (p *parser) expr(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty", ErrInvalidType)
	case strings.HasPrefix(s, "[]"):
		elem, err := p.expr(s[2:])
		if err != nil {
			return nil, err
		}
		return SequenceOf(elem), nil
	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, s)
		}
		n, err := strconv.Atoi(s[1:end])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad array length in %q", ErrInvalidType, s)
		}
		elem, err := p.expr(s[end+1:])
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem, n), nil
	case strings.HasPrefix(s, "?"):
		elem, err := p.expr(s[1:])
		if err != nil {
			return nil, err
		}
		return OptionalOf(elem), nil
	}

	for k, name := range scalarNames {
		if name == s {
			return Scalar(ScalarKind(k)), nil
		}
	}
	return p.record(s)
}
