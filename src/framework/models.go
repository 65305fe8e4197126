package framework

import (
	"time"

	"cmdbd/src/security"
)

// Collection names in the backing store.
const (
	TypeCollection     = "framework.types"
	ObjectCollection   = "framework.objects"
	CategoryCollection = "framework.categories"
)

// FieldDefinition describes one typed field of a CmdbType. The name is
// unique across all fields of the type regardless of which section holds it,
// and immutable once the type is persisted.
type FieldDefinition struct {
	Name string `bson:"name" json:"name"`

	Kind FieldKind `bson:"kind" json:"kind"`

	Label string `bson:"label" json:"label"`

	Required bool `bson:"required" json:"required"`

	// Validator is an optional regular expression the value must satisfy.
	Validator string `bson:"validator,omitempty" json:"validator,omitempty"`

	DefaultValue interface{} `bson:"default_value,omitempty" json:"default_value,omitempty"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// Section is a named, ordered grouping of fields within a type. Sections
// reference fields by name only; the definitions are owned by the type.
type Section struct {
	// Identifier is stable for the lifetime of the section, independent of
	// display order and of any rename.
	Identifier string `bson:"identifier" json:"identifier"`

	Name string `bson:"name" json:"name"`

	Label string `bson:"label" json:"label"`

	// Fields holds the referenced field names in display order.
	Fields []string `bson:"fields" json:"fields"`
}

// ExternalLink is a link template rendered per object. Href contains one {}
// placeholder per entry in Fields.
type ExternalLink struct {
	Name   string   `bson:"name" json:"name"`
	Href   string   `bson:"href" json:"href"`
	Label  string   `bson:"label" json:"label"`
	Icon   string   `bson:"icon,omitempty" json:"icon,omitempty"`
	Fields []string `bson:"fields,omitempty" json:"fields,omitempty"`
}

// RenderMeta holds the display metadata of a type.
type RenderMeta struct {
	// Summaries names the fields joined into the one-line summary of an
	// instance, in order.
	Summaries []string `bson:"summary" json:"summary"`

	ExternalLinks []ExternalLink `bson:"external" json:"external"`
}

// CmdbType is a user-defined schema that object instances conform to.
// Constructed through the TypeBuilder; after first persistence only the
// access block and non-identity metadata may change.
type CmdbType struct {
	// PublicID is assigned by the store on first persistence.
	PublicID int64 `bson:"public_id" json:"public_id"`

	// Name is immutable once created.
	Name string `bson:"name" json:"name"`

	Label string `bson:"label" json:"label"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`

	Version string `bson:"version" json:"version"`

	Active bool `bson:"active" json:"active"`

	AuthorID int64 `bson:"author_id" json:"author_id"`

	CreationTime time.Time `bson:"creation_time" json:"creation_time"`

	Fields []FieldDefinition `bson:"fields" json:"fields"`

	Sections []Section `bson:"sections" json:"sections"`

	RenderMeta RenderMeta `bson:"render_meta" json:"render_meta"`

	Access security.AccessControlList `bson:"access" json:"access"`

	// CategoryID references the category this type is attached to.
	// Zero means uncategorized.
	CategoryID int64 `bson:"category_id,omitempty" json:"category_id,omitempty"`
}

// FieldByName returns the field definition with the given name.
func (t *CmdbType) FieldByName(name string) (*FieldDefinition, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// SectionByIdentifier returns the section with the given stable identifier.
func (t *CmdbType) SectionByIdentifier(identifier string) (*Section, bool) {
	for i := range t.Sections {
		if t.Sections[i].Identifier == identifier {
			return &t.Sections[i], true
		}
	}
	return nil, false
}

// FieldNames returns the names of all fields of the type in definition order.
func (t *CmdbType) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for i := range t.Fields {
		names = append(names, t.Fields[i].Name)
	}
	return names
}

// Category is one node record of the category structure. Categories arrive
// from the store as a flat list; BuildCategoryTree assembles the hierarchy.
type Category struct {
	PublicID int64 `bson:"public_id" json:"public_id"`

	Name string `bson:"name" json:"name"`

	Label string `bson:"label" json:"label"`

	// ParentID references the parent category. Zero means root.
	ParentID int64 `bson:"parent,omitempty" json:"parent,omitempty"`
}

// CmdbObject is a raw stored instance of a CmdbType.
type CmdbObject struct {
	PublicID int64 `bson:"public_id" json:"public_id"`

	// TypeID references the owning type. Required, immutable.
	TypeID int64 `bson:"type_id" json:"type_id"`

	Version string `bson:"version,omitempty" json:"version,omitempty"`

	AuthorID int64 `bson:"author_id" json:"author_id"`

	EditorID int64 `bson:"editor_id,omitempty" json:"editor_id,omitempty"`

	CreationTime time.Time `bson:"creation_time" json:"creation_time"`

	LastEditTime time.Time `bson:"last_edit_time,omitempty" json:"last_edit_time,omitempty"`

	Active bool `bson:"active" json:"active"`

	// Fields holds the raw field-name to value pairs.
	Fields map[string]interface{} `bson:"fields" json:"fields"`
}
