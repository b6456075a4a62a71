// Package catalog lists the results tree laid out as
// <root>/<city>/<sim_type>/<scenario> and turns a selection into a scenario
// directory.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/banshee-data/odysseus-results/internal/fsutil"
	"github.com/banshee-data/odysseus-results/internal/security"
)

// ErrUnknownSelection is returned when a selection names an entry that is
// not in the tree.
var ErrUnknownSelection = errors.New("unknown selection")

// ignored names are never offered as choices.
var ignored = map[string]bool{".DS_Store": true}

// Selection identifies one scenario directory.
type Selection struct {
	City     string `json:"city"`
	SimType  string `json:"sim_type"`
	Scenario string `json:"scenario"`
}

func (s Selection) String() string {
	return s.City + "/" + s.SimType + "/" + s.Scenario
}

// Catalog reads the directory tree under Root on every call.
type Catalog struct {
	fs   fsutil.FileSystem
	root string
}

// New returns a catalog over root.
func New(fsys fsutil.FileSystem, root string) *Catalog {
	return &Catalog{fs: fsys, root: root}
}

// Root is the results directory the catalog reads.
func (c *Catalog) Root() string { return c.root }

// Cities lists the city directories.
func (c *Catalog) Cities() ([]string, error) {
	return c.list()
}

// SimTypes lists the simulation types of city.
func (c *Catalog) SimTypes(city string) ([]string, error) {
	return c.list(city)
}

// Scenarios lists the scenario directories of city/simType.
func (c *Catalog) Scenarios(city, simType string) ([]string, error) {
	return c.list(city, simType)
}

func (c *Catalog) list(segments ...string) ([]string, error) {
	dir, err := security.JoinWithin(c.root, segments...)
	if err != nil {
		return nil, err
	}
	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && len(segments) > 0 {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownSelection, dir, err)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if ignored[e.Name()] || !e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Resolve validates sel against the tree and returns its directory.
func (c *Catalog) Resolve(sel Selection) (string, error) {
	dir, err := security.JoinWithin(c.root, sel.City, sel.SimType, sel.Scenario)
	if err != nil {
		return "", err
	}
	info, err := c.fs.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnknownSelection, sel, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrUnknownSelection, sel)
	}
	return dir, nil
}

// Complete fills empty fields of sel with the first available entry at each
// level, the way a freshly opened dashboard preselects the first choice.
// Non-empty fields are kept and must exist.
func (c *Catalog) Complete(sel Selection) (Selection, error) {
	pick := func(field *string, options []string) error {
		if *field != "" {
			for _, o := range options {
				if o == *field {
					return nil
				}
			}
			return fmt.Errorf("%w: %q", ErrUnknownSelection, *field)
		}
		if len(options) == 0 {
			return fmt.Errorf("%w: nothing to choose from", ErrUnknownSelection)
		}
		*field = options[0]
		return nil
	}

	cities, err := c.Cities()
	if err != nil {
		return sel, err
	}
	if err := pick(&sel.City, cities); err != nil {
		return sel, fmt.Errorf("city: %w", err)
	}
	simTypes, err := c.SimTypes(sel.City)
	if err != nil {
		return sel, err
	}
	if err := pick(&sel.SimType, simTypes); err != nil {
		return sel, fmt.Errorf("simulation type: %w", err)
	}
	scenarios, err := c.Scenarios(sel.City, sel.SimType)
	if err != nil {
		return sel, err
	}
	if err := pick(&sel.Scenario, scenarios); err != nil {
		return sel, fmt.Errorf("scenario: %w", err)
	}
	return sel, nil
}

// Node is one level of the tree listing.
type Node struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children,omitempty"`
}

// Tree lists every city, simulation type and scenario.
func (c *Catalog) Tree() ([]*Node, error) {
	cities, err := c.Cities()
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(cities))
	for _, city := range cities {
		cn := &Node{Name: city}
		simTypes, err := c.SimTypes(city)
		if err != nil {
			return nil, err
		}
		for _, st := range simTypes {
			sn := &Node{Name: st}
			scenarios, err := c.Scenarios(city, st)
			if err != nil {
				return nil, err
			}
			for _, sc := range scenarios {
				sn.Children = append(sn.Children, &Node{Name: sc})
			}
			cn.Children = append(cn.Children, sn)
		}
		out = append(out, cn)
	}
	return out, nil
}
