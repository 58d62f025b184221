// Package schemas holds the JSON Schemas for documents accepted at the API and CLI boundaries.
package schemas

import _ "embed"

// ResumeRecord is the JSON Schema for a raw resume record.
//
//go:embed resume_record.schema.json
var ResumeRecord string
