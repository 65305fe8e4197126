package framework

import (
	"cmdbd/src/helpers"
)

// SectionAssembler groups fields into named sections while a type schema is
// being built. Sections are resolved by their stable identifier, never by
// name, so a rename made while a section is the active edit target does not
// break the editor's reference. Scratch state lives only for the lifetime of
// the schema being built.
type SectionAssembler struct {
	sections map[string]*Section
	order    []string
}

func NewSectionAssembler() *SectionAssembler {
	return &SectionAssembler{
		sections: make(map[string]*Section),
	}
}

// AddSection creates a new section and assigns its stable identifier.
func (a *SectionAssembler) AddSection(name, label string) *Section {
	section := &Section{
		Identifier: helpers.GenerateUUID(),
		Name:       name,
		Label:      label,
	}
	a.sections[section.Identifier] = section
	a.order = append(a.order, section.Identifier)
	return section
}

// AdoptSection registers an existing section, keeping its identifier.
// Sections without an identifier get one assigned. Adopting the same
// identifier twice overwrites the earlier registration.
func (a *SectionAssembler) AdoptSection(section Section) *Section {
	if section.Identifier == "" {
		section.Identifier = helpers.GenerateUUID()
	}
	if _, exists := a.sections[section.Identifier]; !exists {
		a.order = append(a.order, section.Identifier)
	}
	copied := section
	a.sections[section.Identifier] = &copied
	return &copied
}

// SectionByIdentifier resolves a section by its stable identifier.
func (a *SectionAssembler) SectionByIdentifier(identifier string) (*Section, bool) {
	section, ok := a.sections[identifier]
	return section, ok
}

// AddFieldToSection appends a field name to the section. Set semantics: a
// field already present in the section stays a single entry.
func (a *SectionAssembler) AddFieldToSection(sectionID, fieldName string) error {
	section, ok := a.sections[sectionID]
	if !ok {
		return &NotFoundError{Collection: "sections", Name: sectionID}
	}
	for _, existing := range section.Fields {
		if existing == fieldName {
			return nil
		}
	}
	section.Fields = append(section.Fields, fieldName)
	return nil
}

// RemoveFieldFromSection removes a field name from the section. Removing a
// field that is not present is a no-op.
func (a *SectionAssembler) RemoveFieldFromSection(sectionID, fieldName string) error {
	section, ok := a.sections[sectionID]
	if !ok {
		return &NotFoundError{Collection: "sections", Name: sectionID}
	}
	kept := section.Fields[:0]
	for _, existing := range section.Fields {
		if existing != fieldName {
			kept = append(kept, existing)
		}
	}
	section.Fields = kept
	return nil
}

// RenameSection changes the section's display identity. The stable identifier
// and the field membership are untouched. Racing renames resolve as
// last-write-wins by call order.
func (a *SectionAssembler) RenameSection(sectionID, name, label string) error {
	section, ok := a.sections[sectionID]
	if !ok {
		return &NotFoundError{Collection: "sections", Name: sectionID}
	}
	section.Name = name
	section.Label = label
	return nil
}

// Sections returns the assembled sections in creation order.
func (a *SectionAssembler) Sections() []Section {
	result := make([]Section, 0, len(a.order))
	for _, id := range a.order {
		result = append(result, *a.sections[id])
	}
	return result
}
