package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "manifest.jsonl")
	rows := []Row{
		{ImagePath: "a.jpg", JSONData: json.RawMessage(`{"invoice":{}}`), OCRText: "INVOICE", Source: "batch-1", Labeled: true},
		{ImagePath: "b.png", JSONData: json.RawMessage(`{}`), Source: "manual"},
	}

	require.NoError(t, WriteJSONL(path, rows))

	loaded, err := LoadJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestLoadJSONL_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	content := `{"image_path":"a.jpg","json_data":{},"ocr_text":"","source":"x","labeled":false}` + "\n\n" +
		`{"image_path":"b.jpg","json_data":{},"ocr_text":"","source":"x","labeled":true}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := LoadJSONL(path)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLoadJSONL_MalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"image_path\": \"a.jpg\"}\nnot json\n"), 0o644))

	_, err := LoadJSONL(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "c.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	rows, err := CollectImages(dir, "manual")
	require.NoError(t, err)

	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.False(t, row.Labeled)
		assert.Equal(t, "manual", row.Source)
		assert.JSONEq(t, "{}", string(row.JSONData))
	}
}

func TestCollectLabeledBatch(t *testing.T) {
	batchDir := t.TempDir()
	imagesDir := filepath.Join(batchDir, "images")
	require.NoError(t, os.Mkdir(imagesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "inv1.jpg"), []byte("x"), 0o644))

	csvContent := "File Name,Json Data,OCRed Text\n" +
		`inv1.jpg,"{""invoice"":{""invoice_number"":""INV-001""}}",INVOICE TEXT` + "\n" +
		"missing.jpg,{},ignored\n"
	require.NoError(t, os.WriteFile(filepath.Join(batchDir, "batch.csv"), []byte(csvContent), 0o644))

	rows, err := CollectLabeledBatch(batchDir, []string{"images"}, "batch-1")
	require.NoError(t, err)

	// The row whose image is missing on disk is skipped.
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Labeled)
	assert.Equal(t, "INVOICE TEXT", rows[0].OCRText)
	assert.Contains(t, rows[0].ImagePath, "inv1.jpg")
	assert.Contains(t, string(rows[0].JSONData), "INV-001")
}
