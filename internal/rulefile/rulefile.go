// Package rulefile reads and writes rule bases as TOML or YAML documents.
//
//	name = "custom"
//
//	[output]
//	name = "performance"
//	universe = { min = 0, max = 100, step = 0.1 }
//	terms = [
//	  { name = "low",  shape = "trapezoidal", params = [0, 0, 30, 50] },
//	  { name = "high", shape = "trapezoidal", params = [50, 70, 100, 100] },
//	]
//
//	[[rules]]
//	if = "grade is excellent and (attendance is high or not motivation is low)"
//	then = "high"
//	weight = 2.0
package rulefile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
)

// Format is a document encoding.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("rulefile: unknown format")

// FormatFor picks the codec from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", path)
}

type Document struct {
	Name   string     `json:"name" toml:"name" yaml:"name"`
	Inputs []Variable `json:"inputs" toml:"inputs" yaml:"inputs"`
	Output Variable   `json:"output" toml:"output" yaml:"output"`
	Rules  []Rule     `json:"rules" toml:"rules" yaml:"rules"`
}

type Variable struct {
	Name     string         `json:"name" toml:"name" yaml:"name"`
	Universe fuzzy.Universe `json:"universe" toml:"universe" yaml:"universe"`
	Terms    []Term         `json:"terms" toml:"terms" yaml:"terms"`
}

type Term struct {
	Name   string      `json:"name" toml:"name" yaml:"name"`
	Shape  fuzzy.Shape `json:"shape" toml:"shape" yaml:"shape"`
	Params []float64   `json:"params" toml:"params" yaml:"params,flow"`
}

// Rule is one "if ... then ..." line. Then names an output term, optionally
// as "output is term".
type Rule struct {
	Label  string  `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	If     string  `json:"if" toml:"if" yaml:"if"`
	Then   string  `json:"then" toml:"then" yaml:"then"`
	Weight float64 `json:"weight,omitempty" toml:"weight,omitempty" yaml:"weight,omitempty"`
}

// Decode reads one document, rejecting unknown keys.
func Decode(r io.Reader, f Format) (Document, error) {
	var doc Document
	switch f {
	case TOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return doc, errors.Wrap(err, "rulefile: decode toml")
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return doc, errors.Wrap(err, "rulefile: decode yaml")
		}
	default:
		return doc, errors.Wrapf(ErrUnknownFormat, "%q", f)
	}
	return doc, nil
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc Document, f Format) error {
	switch f {
	case TOML:
		return errors.Wrap(toml.NewEncoder(w).Encode(doc), "rulefile: encode toml")
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "rulefile: encode yaml")
		}
		return errors.Wrap(enc.Close(), "rulefile: encode yaml")
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", f)
}

// Definition converts the document, parsing every rule expression.
// Structural checks (dangling terms, weights) are left to fuzzy.Build.
func (d Document) Definition() (fuzzy.Definition, error) {
	def := fuzzy.Definition{Name: d.Name, Rules: make([]fuzzy.Rule, 0, len(d.Rules))}
	for _, v := range d.Inputs {
		fv, err := v.variable()
		if err != nil {
			return def, err
		}
		def.Inputs = append(def.Inputs, fv)
	}
	out, err := d.Output.variable()
	if err != nil {
		return def, err
	}
	def.Output = out

	for i, r := range d.Rules {
		ante, err := ParseExpr(r.If)
		if err != nil {
			return def, errors.Wrapf(err, "rule %d: if", i+1)
		}
		cons, err := consequent(r.Then, d.Output.Name)
		if err != nil {
			return def, errors.Wrapf(err, "rule %d: then", i+1)
		}
		def.Rules = append(def.Rules, fuzzy.Rule{Label: r.Label, Antecedent: ante, Consequent: cons, Weight: r.Weight})
	}
	return def, nil
}

func consequent(src, output string) (fuzzy.Term, error) {
	src = strings.TrimSpace(src)
	if !strings.Contains(src, " ") {
		return fuzzy.T(output, src), nil
	}
	return ParseTerm(src)
}

func (v Variable) variable() (fuzzy.Variable, error) {
	out := fuzzy.NewVariable(v.Name, v.Universe)
	for _, t := range v.Terms {
		mf, err := fuzzy.NewMembership(t.Shape, t.Params...)
		if err != nil {
			return out, errors.Wrapf(err, "variable %q term %q", v.Name, t.Name)
		}
		out = out.With(t.Name, mf)
	}
	return out, nil
}

// FromDefinition is the inverse of Document.Definition.
func FromDefinition(def fuzzy.Definition) Document {
	doc := Document{Name: def.Name, Output: fromVariable(def.Output)}
	for _, v := range def.Inputs {
		doc.Inputs = append(doc.Inputs, fromVariable(v))
	}
	for _, r := range def.Rules {
		w := r.Weight
		if w == fuzzy.DefaultWeight {
			w = 0
		}
		doc.Rules = append(doc.Rules, Rule{
			Label:  r.Label,
			If:     r.Antecedent.String(),
			Then:   r.Consequent.Name,
			Weight: w,
		})
	}
	return doc
}

func fromVariable(v fuzzy.Variable) Variable {
	out := Variable{Name: v.Name, Universe: v.Universe}
	for _, t := range v.Terms {
		out.Terms = append(out.Terms, Term{Name: t.Name, Shape: t.MF.Shape(), Params: t.MF.Params()})
	}
	return out
}

// Parse decodes and converts in one step.
func Parse(data []byte, f Format) (fuzzy.Definition, error) {
	doc, err := Decode(bytes.NewReader(data), f)
	if err != nil {
		return fuzzy.Definition{}, err
	}
	return doc.Definition()
}

// Load reads a rule base file; the format follows the extension. A document
// without a name takes the file's base name.
func Load(path string) (fuzzy.Definition, error) {
	f, err := FormatFor(path)
	if err != nil {
		return fuzzy.Definition{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fuzzy.Definition{}, errors.Wrapf(err, "rulefile: read %s", path)
	}
	def, err := Parse(data, f)
	if err != nil {
		return def, errors.Wrapf(err, "rulefile: %s", path)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}

// Resolve maps a RULEBASE setting to a definition: a built-in name
// ("standard", "compact", or empty for standard) or a path to a file.
func Resolve(name string) (fuzzy.Definition, error) {
	if _, err := FormatFor(name); err == nil {
		return Load(name)
	}
	return performance.RuleBase(name)
}

// Build resolves name and builds the system.
func Build(name string) (*fuzzy.System, error) {
	def, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	return fuzzy.Build(def)
}
