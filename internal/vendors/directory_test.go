package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mzhao/ai-invoice-audit/internal/models"
)

func TestMemoryDirectory_FindVendor(t *testing.T) {
	dir := NewMemoryDirectory(
		[]models.VendorRecord{
			{VendorName: "Acme Corp", GSTNumber: "GST1234567"},
			{VendorName: "Globex", GSTNumber: "GLX9876543"},
		},
		nil,
	)

	t.Run("exact match", func(t *testing.T) {
		rec := dir.FindVendor("Acme Corp")
		if assert.NotNil(t, rec) {
			assert.Equal(t, "GST1234567", rec.GSTNumber)
		}
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		assert.NotNil(t, dir.FindVendor("acme corp"))
		assert.NotNil(t, dir.FindVendor("GLOBEX"))
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		assert.NotNil(t, dir.FindVendor("  Acme Corp  "))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, dir.FindVendor("Nobody Inc"))
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		rec := dir.FindVendor("Acme Corp")
		rec.GSTNumber = "mutated"
		assert.Equal(t, "GST1234567", dir.FindVendor("Acme Corp").GSTNumber)
	})
}

func TestMemoryDirectory_HasInvoiceNumber(t *testing.T) {
	dir := NewMemoryDirectory(nil, []string{"INV-001", " INV-002 ", ""})

	assert.True(t, dir.HasInvoiceNumber("INV-001"))
	assert.True(t, dir.HasInvoiceNumber("INV-002")) // stored trimmed
	assert.True(t, dir.HasInvoiceNumber(" INV-001 ")) // queried trimmed
	assert.False(t, dir.HasInvoiceNumber("INV-003"))
	assert.False(t, dir.HasInvoiceNumber(""))
}

func TestMemoryDirectory_Len(t *testing.T) {
	assert.Equal(t, 0, NewMemoryDirectory(nil, nil).Len())
	assert.Equal(t, 1, NewMemoryDirectory([]models.VendorRecord{{VendorName: "A"}}, nil).Len())
}
