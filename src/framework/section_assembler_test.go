package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionAssemblerFieldMembership(t *testing.T) {
	assembler := NewSectionAssembler()
	section := assembler.AddSection("info", "Information")

	require.NoError(t, assembler.AddFieldToSection(section.Identifier, "hostname"))
	require.NoError(t, assembler.AddFieldToSection(section.Identifier, "os"))
	// Adding the same field twice leaves exactly one entry.
	require.NoError(t, assembler.AddFieldToSection(section.Identifier, "hostname"))
	assert.Equal(t, []string{"hostname", "os"}, section.Fields)

	require.NoError(t, assembler.RemoveFieldFromSection(section.Identifier, "hostname"))
	assert.Equal(t, []string{"os"}, section.Fields)

	// Removing an absent field is a no-op.
	require.NoError(t, assembler.RemoveFieldFromSection(section.Identifier, "hostname"))
	assert.Equal(t, []string{"os"}, section.Fields)
}

func TestSectionAssemblerRenameKeepsIdentifier(t *testing.T) {
	assembler := NewSectionAssembler()
	section := assembler.AddSection("info", "Information")
	assembler.AddFieldToSection(section.Identifier, "hostname")

	before, ok := assembler.SectionByIdentifier(section.Identifier)
	require.True(t, ok)

	require.NoError(t, assembler.RenameSection(section.Identifier, "general", "General"))

	after, ok := assembler.SectionByIdentifier(section.Identifier)
	require.True(t, ok)
	assert.Same(t, before, after)
	assert.Equal(t, "general", after.Name)
	assert.Equal(t, "General", after.Label)
	assert.Equal(t, []string{"hostname"}, after.Fields)
}

func TestSectionAssemblerLastRenameWins(t *testing.T) {
	assembler := NewSectionAssembler()
	section := assembler.AddSection("info", "Information")

	require.NoError(t, assembler.RenameSection(section.Identifier, "first", "First"))
	require.NoError(t, assembler.RenameSection(section.Identifier, "second", "Second"))

	resolved, ok := assembler.SectionByIdentifier(section.Identifier)
	require.True(t, ok)
	assert.Equal(t, "second", resolved.Name)
}

func TestSectionAssemblerUnknownSection(t *testing.T) {
	assembler := NewSectionAssembler()

	err := assembler.AddFieldToSection("missing", "hostname")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	require.Error(t, assembler.RemoveFieldFromSection("missing", "hostname"))
	require.Error(t, assembler.RenameSection("missing", "a", "b"))
}

func TestSectionAssemblerAdoptKeepsExistingIdentifier(t *testing.T) {
	assembler := NewSectionAssembler()
	adopted := assembler.AdoptSection(Section{Identifier: "stable-id", Name: "info"})
	assert.Equal(t, "stable-id", adopted.Identifier)

	generated := assembler.AdoptSection(Section{Name: "other"})
	assert.NotEmpty(t, generated.Identifier)

	sections := assembler.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, "stable-id", sections[0].Identifier)
}
