package record

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecord_ValidFile(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "valid", "resume.json")

	rec, err := LoadRecord(path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "Ada Lovelace", rec.Personal.Name)
	assert.Len(t, rec.Experience, 3)
	assert.Len(t, rec.Education, 2)
	assert.Equal(t, types.StringList{"Go", "Python", "SQL"}, rec.Skills.ProgrammingLanguages)
	assert.Equal(t, types.StringList{}, rec.Interests)
	assert.Empty(t, rec.Experience[0].EndDate, "current role has no end date")
}

func TestLoadRecord_FileNotFound(t *testing.T) {
	_, err := LoadRecord("nonexistent_file.json")
	require.Error(t, err)

	loadErr, ok := err.(*LoadError)
	require.True(t, ok, "error should be LoadError type")
	assert.Contains(t, loadErr.Error(), "failed to read file")
}

func TestLoadRecord_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	invalidJSON := filepath.Join(tmpDir, "invalid.json")
	require.NoError(t, os.WriteFile(invalidJSON, []byte("{ invalid json }"), 0644))

	_, err := LoadRecord(invalidJSON)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Error(), "malformed")
}

func TestLoadRecord_RejectsMissingSkills(t *testing.T) {
	for _, name := range []string{"missing_skills.json", "empty_languages.json"} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRecord(filepath.Join("..", "..", "testdata", "invalid", name))
			require.Error(t, err)

			var invalid *InvalidRecordError
			assert.True(t, errors.As(err, &invalid), "expected InvalidRecordError, got %T", err)
		})
	}
}

func TestDecode_TooLarge(t *testing.T) {
	big := `{"summary": "` + strings.Repeat("x", maxRecordBytes) + `"}`
	_, err := Decode(strings.NewReader(big))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestUnmarshal_AllowsIncompleteDraft(t *testing.T) {
	rec, err := Unmarshal([]byte(`{"personal": {"name": "Ada", "email": "ada@example.com"},
		"skills": {"programmingLanguages": ""}}`))
	require.NoError(t, err)
	assert.Empty(t, rec.Skills.ProgrammingLanguages)

	assert.Error(t, Prepare(rec))
}

func TestPrepare_Nil(t *testing.T) {
	var invalid *InvalidRecordError
	assert.True(t, errors.As(Prepare(nil), &invalid))
}
