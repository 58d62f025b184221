package main

import (
	"os"
	"path/filepath"
	"testing"
)

const (
	validRecordPath          = "../../testdata/valid/resume.json"
	skillsOnlyRecordPath     = "../../testdata/valid/skills_only.json"
	emptyLanguagesRecordPath = "../../testdata/invalid/empty_languages.json"
	missingSkillsRecordPath  = "../../testdata/invalid/missing_skills.json"
)

// getBinaryPath returns the path to the resume_builder binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "resume_builder"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}
