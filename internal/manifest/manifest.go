// Package manifest reads and writes the project configuration document.
//
// The document (Mo.yaml by default) holds the model name and the ordered task
// table:
//
//	model: MyModel
//	tasks:
//	  1: prep
//	  2:
//	    a: train_small
//	    b: train_large
//	  3: eval
//
// A plain value is a serial task; a nested mapping from slot letter to name is
// a parallel group. Keys other than model and tasks are preserved verbatim on
// save.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mo/internal/diag"
)

// DefaultFile is the configuration document name inside a project root.
const DefaultFile = "Mo.yaml"

// Entry is the configured content of one order: a serial task name or a set
// of parallel slots.
type Entry struct {
	// Name is the serial task name. Empty for parallel entries.
	Name string

	// Slots maps slot letter to task name. Nil for serial entries.
	Slots map[string]string
}

// SerialEntry returns an entry hosting a single serial task.
func SerialEntry(name string) Entry {
	return Entry{Name: name}
}

// ParallelEntry returns an entry hosting the given slots.
func ParallelEntry(slots map[string]string) Entry {
	if slots == nil {
		slots = map[string]string{}
	}
	return Entry{Slots: slots}
}

// IsParallel reports whether the entry is a slot mapping.
func (e Entry) IsParallel() bool {
	return e.Slots != nil
}

// Letters returns the slot letters in alphabetical order.
func (e Entry) Letters() []string {
	letters := make([]string, 0, len(e.Slots))
	for l := range e.Slots {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	return letters
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	if e.Slots == nil {
		return Entry{Name: e.Name}
	}
	slots := make(map[string]string, len(e.Slots))
	for l, n := range e.Slots {
		slots[l] = n
	}
	return Entry{Slots: slots}
}

// Tasks is the task table keyed by order.
type Tasks map[int]Entry

// Orders returns the configured orders in ascending order.
func (t Tasks) Orders() []int {
	orders := make([]int, 0, len(t))
	for o := range t {
		orders = append(orders, o)
	}
	sort.Ints(orders)
	return orders
}

// Clone returns a deep copy of the table.
func (t Tasks) Clone() Tasks {
	out := make(Tasks, len(t))
	for o, e := range t {
		out[o] = e.Clone()
	}
	return out
}

// Manifest is a loaded configuration document.
type Manifest struct {
	Model string
	Tasks Tasks

	// doc is the parsed document, kept so unrelated keys survive a save.
	doc *yaml.Node
}

// New returns an empty manifest for a model.
func New(model string) *Manifest {
	return &Manifest{Model: model, Tasks: Tasks{}}
}

// Load reads and validates the document at path.
// Fails with ConfigMissing if the file does not exist.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, diag.New(diag.ConfigMissing, "%s not found; initialize the project first", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a document.
func Parse(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, diag.Wrap(diag.ConfigInvalid, err, "manifest is not valid YAML")
	}

	// An empty file decodes to a zero node.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, diag.New(diag.ConfigInvalid, "manifest must be a mapping at the top level")
	}

	generic, err := toGeneric(root)
	if err != nil {
		return nil, diag.Wrap(diag.ConfigInvalid, err, "manifest could not be decoded")
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	m := &Manifest{Tasks: Tasks{}, doc: &doc}
	if model, ok := generic.(map[string]any)["model"].(string); ok {
		m.Model = model
	}

	tasksNode := lookup(root, "tasks")
	if tasksNode == nil || tasksNode.Kind != yaml.MappingNode {
		return m, nil
	}
	for i := 0; i+1 < len(tasksNode.Content); i += 2 {
		key, val := tasksNode.Content[i], tasksNode.Content[i+1]
		order, err := strconv.Atoi(key.Value)
		if err != nil {
			return nil, diag.Wrap(diag.ConfigInvalid, err, "task key %q is not an order", key.Value)
		}
		m.Tasks[order] = entryFromNode(resolve(val))
	}
	return m, nil
}

// Marshal encodes the manifest, keeping unrelated keys of the loaded
// document in place.
func (m *Manifest) Marshal() ([]byte, error) {
	doc := m.doc
	if doc == nil {
		doc = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	setKey(root, "model", strNode(m.Model))
	setKey(root, "tasks", m.Tasks.node())

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	m.doc = doc
	return buf.Bytes(), nil
}

// Save writes the manifest to path atomically.
func (m *Manifest) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// node renders the table with integer keys in ascending order and slot
// letters sorted.
func (t Tasks) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, order := range t.Orders() {
		e := t[order]
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(order)}
		var val *yaml.Node
		if e.IsParallel() {
			val = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for _, l := range e.Letters() {
				val.Content = append(val.Content, strNode(l), strNode(e.Slots[l]))
			}
		} else {
			val = strNode(e.Name)
		}
		n.Content = append(n.Content, key, val)
	}
	return n
}

func entryFromNode(n *yaml.Node) Entry {
	if n.Kind != yaml.MappingNode {
		return SerialEntry(n.Value)
	}
	slots := make(map[string]string, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		slots[n.Content[i].Value] = resolve(n.Content[i+1]).Value
	}
	return ParallelEntry(slots)
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return resolve(mapping.Content[i+1])
		}
	}
	return nil
}

func setKey(mapping *yaml.Node, key string, val *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = val
			return
		}
	}
	mapping.Content = append(mapping.Content, strNode(key), val)
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// toGeneric converts a node tree into plain maps with string keys, the shape
// the schema validator expects.
func toGeneric(n *yaml.Node) (any, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := resolve(n.Content[i])
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if _, dup := out[k.Value]; dup {
				return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
			}
			v, err := toGeneric(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[k.Value] = v
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := toGeneric(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
}
