package style

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Compile-time interface guards.
var (
	_ Surface     = (*Document)(nil)
	_ Snapshotter = (*Document)(nil)
)

// Node is a style node on a Document.
type Node struct {
	ID  string `json:"id"`
	CSS string `json:"css"`
}

// Snapshot is a point-in-time copy of a Document.
type Snapshot struct {
	Variables  map[string]string `json:"variables"`
	Nodes      []Node            `json:"nodes"`
	FaviconURL string            `json:"favicon_url,omitempty"`
	Title      string            `json:"title"`
	// Generation increases on every forced refresh; preview clients re-render
	// when it changes.
	Generation uint64 `json:"generation"`
}

// NodeCount returns how many nodes carry id.
func (s Snapshot) NodeCount(id string) int {
	n := 0
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			n++
		}
	}
	return n
}

// Node returns the CSS of the first node with id.
func (s Snapshot) Node(id string) (string, bool) {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return s.Nodes[i].CSS, true
		}
	}
	return "", false
}

// Document is an in-memory styling surface. It is the server-side model of
// the page the branding is rendered into and is safe for concurrent use.
type Document struct {
	mu         sync.RWMutex
	vars       map[string]string
	nodes      []Node
	favicon    string
	title      string
	generation uint64
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return &Document{vars: make(map[string]string)}
}

func (d *Document) SetProperty(name, value string) error {
	if !strings.HasPrefix(name, "--") {
		return fmt.Errorf("custom property %q must start with --", name)
	}
	d.mu.Lock()
	d.vars[name] = value
	d.mu.Unlock()
	return nil
}

func (d *Document) ReplaceStyleNode(id, css string) error {
	if id == "" {
		return fmt.Errorf("style node id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.nodes {
		if d.nodes[i].ID == id {
			d.nodes[i].CSS = css
			return nil
		}
	}
	d.nodes = append(d.nodes, Node{ID: id, CSS: css})
	return nil
}

func (d *Document) RemoveStyleNode(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.nodes[:0]
	for _, n := range d.nodes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	d.nodes = kept
	return nil
}

func (d *Document) SetFavicon(href string) error {
	d.mu.Lock()
	d.favicon = href
	d.mu.Unlock()
	return nil
}

func (d *Document) SetTitle(title string) error {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
	return nil
}

// ForceVisualRefresh bumps the generation counter. Clients rendering from the
// snapshot stream treat a new generation like the hide/show toggle of a DOM.
func (d *Document) ForceVisualRefresh(_ []string) error {
	d.mu.Lock()
	d.generation++
	d.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the document state.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	vars := make(map[string]string, len(d.vars))
	for k, v := range d.vars {
		vars[k] = v
	}
	nodes := make([]Node, len(d.nodes))
	copy(nodes, d.nodes)

	return Snapshot{
		Variables:  vars,
		Nodes:      nodes,
		FaviconURL: d.favicon,
		Title:      d.title,
		Generation: d.generation,
	}
}

// Render serialises the surface as one stylesheet: the root properties
// followed by every style node in insertion order.
func (s Snapshot) Render() string {
	var b strings.Builder

	names := make([]string, 0, len(s.Variables))
	for k := range s.Variables {
		names = append(names, k)
	}
	sort.Strings(names)

	b.WriteString(":root {\n")
	for _, k := range names {
		fmt.Fprintf(&b, "  %s: %s;\n", k, s.Variables[k])
	}
	b.WriteString("}\n")

	for _, n := range s.Nodes {
		fmt.Fprintf(&b, "\n/* %s */\n%s\n", n.ID, strings.TrimRight(n.CSS, "\n"))
	}
	return b.String()
}
