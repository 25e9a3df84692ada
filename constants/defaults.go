package constants

import "time"

// Model and orchestration defaults. These mirror the configuration surface the
// server and CLI expose; everything here can be overridden via env or config file.
const (
	DefaultPrimaryModel  = "gpt-4o"
	DefaultFallbackModel = "gemini-2.5-flash"
	DefaultTemperature   = 0.1
	DefaultMaxRetries    = 3
	DefaultBaseDelay     = 1 * time.Second
	DefaultMaxDelay      = 30 * time.Second

	// MaxDocumentPages bounds input documents; the extractor targets short
	// (1-2 page) documents and page counts beyond this are rejected upfront.
	MaxDocumentPages = 2

	// MaxUploadBytes caps multipart uploads accepted by the server.
	MaxUploadBytes = 20 << 20 // 20MB
)

// SheetName is the single worksheet written by the exporter.
const SheetName = "Extracted Data"

// SheetHeaders is the fixed header row of the exported workbook. Column order
// matches document.Row: section, key, value, comment, prefixed by a row number.
var SheetHeaders = []string{"#", "Section", "Key", "Value", "Comments"}
