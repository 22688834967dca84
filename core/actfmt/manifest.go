package actfmt

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"

	"github.com/opal-lang/lexaction/core/lexaction"
)

// ManifestMajor is the manifest format major version this package reads.
const ManifestMajor = "v1"

// ErrUnsupportedFormat is returned for manifests of another major version.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

//go:embed manifest.schema.json
var manifestSchemaJSON string

var (
	manifestSchemaOnce sync.Once
	manifestSchema     *jsonschema.Schema
	manifestSchemaErr  error
)

// Manifest is the human-editable description of a grammar's lexer commands.
//
//	{
//	  "format": "v1.0.0",
//	  "grammar": "Calc",
//	  "actions": ["skip", "pushMode(1)", "custom(0,0)"],
//	  "sequences": [[0], [1, 2]]
//	}
//
// Actions use grammar command syntax. A custom action may carry an "@offset" suffix,
// as in "custom(1,0)@3", which binds it to that distance from the token start when a
// sequence uses it. Sequences list indices into Actions in attachment order.
type Manifest struct {
	Format    string   `json:"format"`
	Grammar   string   `json:"grammar"`
	Actions   []string `json:"actions"`
	Sequences [][]int  `json:"sequences,omitempty"`
}

// LoadManifest reads and validates a manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest validates data against the manifest schema and decodes it.
func ParseManifest(data []byte) (*Manifest, error) {
	schema, err := compiledManifestSchema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if major := semver.Major(canonicalVersion(m.Format)); major != ManifestMajor {
		return nil, fmt.Errorf("%w: %s (want %s.x.y)", ErrUnsupportedFormat, m.Format, ManifestMajor)
	}
	return &m, nil
}

// Compile parses every command and interns the result into a table. The table's
// action order follows first appearance in Actions, so duplicates collapse onto the
// first occurrence. Bound and unbound forms of one custom action share an index.
func (m *Manifest) Compile() (*Compiled, error) {
	b := lexaction.NewBuilder()

	parsed := make([]lexaction.Entry, len(m.Actions))
	for i, src := range m.Actions {
		e, err := parseEntry(src)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		parsed[i] = e
		b.InternAction(e.Action)
	}

	for i, seq := range m.Sequences {
		entries := make([]lexaction.Entry, len(seq))
		for j, idx := range seq {
			if idx < 0 || idx >= len(parsed) {
				return nil, fmt.Errorf("sequence %d entry %d: action index %d out of range [0, %d)", i, j, idx, len(parsed))
			}
			entries[j] = parsed[idx]
		}
		b.InternSequence(lexaction.FromEntries(entries...))
	}

	return &Compiled{Grammar: m.Grammar, Table: b.Build()}, nil
}

// parseEntry parses one manifest action with its optional "@offset" binding.
func parseEntry(src string) (lexaction.Entry, error) {
	cmd, offset, bound := strings.Cut(src, "@")

	a, err := lexaction.Parse(cmd)
	if err != nil {
		return lexaction.Entry{}, err
	}
	if !bound {
		return lexaction.Entry{Action: a}, nil
	}

	if !a.IsPositionDependent() {
		return lexaction.Entry{}, fmt.Errorf("%s cannot be bound to an offset", a)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(offset), 10, 31)
	if err != nil {
		return lexaction.Entry{}, fmt.Errorf("invalid offset %q in %q", offset, src)
	}
	return lexaction.Entry{Action: a, Offset: int(n), Bound: true}, nil
}

// ManifestOf renders a compiled table as a manifest. Actions keeps the table's
// order; each distinct bound entry is appended after it in "@offset" form.
func ManifestOf(c *Compiled) *Manifest {
	t := c.Table
	m := &Manifest{
		Format:  ManifestMajor + ".0.0",
		Grammar: c.Grammar,
		Actions: make([]string, t.NumActions()),
	}
	for i := range m.Actions {
		m.Actions[i] = t.Action(i).String()
	}

	boundIndex := make(map[lexaction.Entry]int)
	for i := 0; i < t.NumSequences(); i++ {
		seq := t.Sequence(i)
		indices := make([]int, seq.Len())
		for j := range indices {
			e := seq.At(j)
			if !e.Bound {
				indices[j] = t.ActionIndex(e.Action)
				continue
			}
			idx, ok := boundIndex[e]
			if !ok {
				idx = len(m.Actions)
				m.Actions = append(m.Actions, e.Action.String()+"@"+strconv.Itoa(e.Offset))
				boundIndex[e] = idx
			}
			indices[j] = idx
		}
		m.Sequences = append(m.Sequences, indices)
	}
	return m
}

func compiledManifestSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		compiler.Formats = map[string]func(interface{}) bool{
			"semver": func(v interface{}) bool {
				s, ok := v.(string)
				if !ok {
					return true // Type validation happens separately
				}
				return semver.IsValid(canonicalVersion(s))
			},
		}
		compiler.LoadURL = func(url string) (io.ReadCloser, error) {
			return nil, fmt.Errorf("external $ref not allowed: %s", url)
		}

		url := "schema://manifest.json"
		if err := compiler.AddResource(url, strings.NewReader(manifestSchemaJSON)); err != nil {
			manifestSchemaErr = fmt.Errorf("load manifest schema: %w", err)
			return
		}
		manifestSchema, manifestSchemaErr = compiler.Compile(url)
	})
	return manifestSchema, manifestSchemaErr
}

// canonicalVersion adds the "v" prefix semver expects.
func canonicalVersion(s string) string {
	if !strings.HasPrefix(s, "v") {
		return "v" + s
	}
	return s
}
