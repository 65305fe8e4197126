package framework

import (
	"time"

	"cmdbd/src/security"
)

// TypeBuilder composes a CmdbType out of basic info, (section, fields) pairs,
// render metadata and an access block, in that order, and validates the
// result as one unit. Each addition step is idempotent for the same key:
// re-adding a field with the same name overwrites its definition instead of
// duplicating it.
type TypeBuilder struct {
	typ        CmdbType
	assembler  *SectionAssembler
	fields     map[string]FieldDefinition
	fieldOrder []string
}

func NewTypeBuilder() *TypeBuilder {
	return &TypeBuilder{
		typ: CmdbType{
			Version: "1.0.0",
			Active:  true,
		},
		assembler: NewSectionAssembler(),
		fields:    make(map[string]FieldDefinition),
	}
}

// BasicInfo sets the identity and authorship metadata of the type.
func (b *TypeBuilder) BasicInfo(name, label string, authorID int64) *TypeBuilder {
	b.typ.Name = name
	b.typ.Label = label
	b.typ.AuthorID = authorID
	return b
}

// Version overrides the default schema version.
func (b *TypeBuilder) Version(version string) *TypeBuilder {
	b.typ.Version = version
	return b
}

// Description sets the optional description.
func (b *TypeBuilder) Description(description string) *TypeBuilder {
	b.typ.Description = description
	return b
}

// Category attaches the type to a category.
func (b *TypeBuilder) Category(categoryID int64) *TypeBuilder {
	b.typ.CategoryID = categoryID
	return b
}

// AddSection adds a section together with the fields it references. Field
// definitions are owned by the type; the section keeps only the names.
// Duplicate names within the section collapse to one entry, and a definition
// seen before is overwritten rather than duplicated.
func (b *TypeBuilder) AddSection(section Section, fields ...FieldDefinition) *TypeBuilder {
	adopted := b.assembler.AdoptSection(section)
	for _, field := range fields {
		if _, seen := b.fields[field.Name]; !seen {
			b.fieldOrder = append(b.fieldOrder, field.Name)
		}
		b.fields[field.Name] = field
		b.assembler.AddFieldToSection(adopted.Identifier, field.Name)
	}
	return b
}

// Assembler exposes the section assembler for edits between steps, e.g.
// renames of a section that is the active edit target.
func (b *TypeBuilder) Assembler() *SectionAssembler {
	return b.assembler
}

// RenderMeta sets the render metadata block.
func (b *TypeBuilder) RenderMeta(meta RenderMeta) *TypeBuilder {
	b.typ.RenderMeta = meta
	return b
}

// Access sets the access block.
func (b *TypeBuilder) Access(acl security.AccessControlList) *TypeBuilder {
	b.typ.Access = acl
	return b
}

// Build validates the composed schema and yields the finished type.
func (b *TypeBuilder) Build() (*CmdbType, error) {
	fields := make([]FieldDefinition, 0, len(b.fieldOrder))
	for _, name := range b.fieldOrder {
		fields = append(fields, b.fields[name])
	}

	built := b.typ
	built.Fields = fields
	built.Sections = b.assembler.Sections()
	if err := ValidateType(&built); err != nil {
		return nil, err
	}
	built.CreationTime = time.Now().UTC()
	return &built, nil
}

// ValidateType checks the schema invariants of a composed type, whether it
// came through the builder or arrived as a plain struct: identity metadata
// present, field definitions well formed, and every section reference
// resolving to exactly one owned field.
func ValidateType(t *CmdbType) error {
	if t.Name == "" {
		return NewSchemaError("type name is required")
	}
	if t.Label == "" {
		return NewSchemaError("type label is required")
	}

	defined := make(map[string]bool, len(t.Fields))
	for i := range t.Fields {
		field := &t.Fields[i]
		if defined[field.Name] {
			return NewSchemaError("field %q is defined more than once", field.Name)
		}
		defined[field.Name] = true
		if !IsKnownFieldKind(field.Kind) {
			return &ValidationError{FieldName: field.Name,
				Reason: "unknown field kind " + string(field.Kind)}
		}
		// Validator patterns fail at definition time, not at first use.
		if _, err := field.CompileValidator(); err != nil {
			return err
		}
	}

	// Every section reference must resolve to an owned field, and a field
	// belongs to exactly one section.
	owner := make(map[string]string)
	for _, section := range t.Sections {
		for _, fieldName := range section.Fields {
			if !defined[fieldName] {
				return NewSchemaError("section %q references unknown field %q",
					section.Name, fieldName)
			}
			if previous, taken := owner[fieldName]; taken {
				return NewSchemaError("field %q appears in sections %q and %q",
					fieldName, previous, section.Name)
			}
			owner[fieldName] = section.Name
		}
	}
	return nil
}
