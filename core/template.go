package core

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrMissingTemplateID  = errors.New("template has no id")
)

type (
	// Template is a full certificate design. Treat it as a value: every
	// mutation below returns a new Template and leaves its argument untouched.
	Template struct {
		ID              string    `json:"id"`
		Name            string    `json:"name"`
		Description     string    `json:"description"`
		Width           float64   `json:"width"`
		Height          float64   `json:"height"`
		BackgroundImage string    `json:"backgroundImage,omitempty"`
		Elements        []Element `json:"elements"`
		Issuer          string    `json:"issuer"`
		Published       bool      `json:"published"`
		CreatedAt       time.Time `json:"createdAt"`
		UpdatedAt       time.Time `json:"updatedAt"`
	}

	// CollectionStore keeps whole JSON-encoded collections by key, the way the
	// console keeps arrays in local storage.
	CollectionStore interface {
		// LoadCollection returns ErrCollectionNotFound when nothing was saved under key.
		LoadCollection(ctx context.Context, key string) ([]byte, error)

		// SaveCollection replaces the collection stored under key.
		SaveCollection(ctx context.Context, key string, data []byte) error
	}
)

// NewTemplate returns the blank design the editor opens for "create".
func NewTemplate() Template {
	return Template{
		ID:        NewID(),
		Name:      "Untitled Certificate",
		Width:     800,
		Height:    600,
		Elements:  []Element{},
		CreatedAt: time.Now().UTC().Round(0),
	}
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	if t.Elements != nil {
		elements := make([]Element, len(t.Elements))
		for i, el := range t.Elements {
			elements[i] = el.Clone()
		}
		t.Elements = elements
	}
	return t
}

// Element looks up an element by id. The returned value is a copy.
func (t Template) Element(id string) (Element, bool) {
	for _, el := range t.Elements {
		if el.ID == id {
			return el.Clone(), true
		}
	}
	return Element{}, false
}

// AddElement appends e. Overlap is allowed.
func AddElement(t Template, e Element) Template {
	out := t.Clone()
	out.Elements = append(out.Elements, e.Clone())
	return out
}

// RemoveElement drops the element with the given id. Clearing a selection that
// pointed at it is the caller's job.
func RemoveElement(t Template, id string) Template {
	out := t
	out.Elements = make([]Element, 0, len(t.Elements))
	for _, el := range t.Elements {
		if el.ID != id {
			out.Elements = append(out.Elements, el.Clone())
		}
	}
	return out
}

// UpdateElement merges p into the element with the given id. A missing id is
// not an error: the returned Template is equal to t.
func UpdateElement(t Template, id string, p ElementPatch) Template {
	out := t.Clone()
	for i, el := range out.Elements {
		if el.ID == id {
			out.Elements[i] = p.Apply(el)
			break
		}
	}
	return out
}

// SetBackground sets the background URI; an empty string clears it.
func SetBackground(t Template, uri string) Template {
	out := t.Clone()
	out.BackgroundImage = uri
	return out
}

// Resize changes the canvas dimensions. Elements are not moved or clipped.
func Resize(t Template, width, height float64) Template {
	out := t.Clone()
	out.Width = width
	out.Height = height
	return out
}
