package element

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Possible errors returned by Parse and Load.
var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrEmptyName   = errors.New("empty name")
)

// Ensure that Element implements fmt.Stringer.
var _ fmt.Stringer = Element{}

// Element is a selectable value with an identifier and a display name. It is
// never modified after construction.
type Element struct {
	id   int
	name string
}

// New returns an Element with the given id and name.
func New(id int, name string) Element {
	return Element{id: id, name: name}
}

// ID returns the identifier of this element.
func (e Element) ID() int {
	return e.id
}

// Name returns the display name of this element.
func (e Element) Name() string {
	return e.name
}

// String returns the name of this element.
func (e Element) String() string {
	return e.name
}

// record is the on-disk shape of an Element.
type record struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// Parse returns the elements described by the given YAML (or JSON) document.
// The document must be a sequence of mappings with an id and a name. Ids must
// be unique and names must not be blank.
func Parse(data []byte) ([]Element, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	seen := make(map[int]struct{}, len(records))
	elements := make([]Element, 0, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("element %d: %w", i, ErrEmptyName)
		}
		if _, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("element %d: %w: %d", i, ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
		elements = append(elements, New(r.ID, r.Name))
	}
	return elements, nil
}

// Load reads and parses the element file at the given path.
func Load(path string) ([]Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	elements, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return elements, nil
}
