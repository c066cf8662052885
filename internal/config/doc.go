// Package config loads the lineindex configuration.
//
// Settings come from three sources, later ones overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← LINEINDEX_*
//	├─────────────────────────────┤
//	│  2. Configuration File      │  ← TOML, with @include
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Sources are read into maps by package loader, merged with
// loader.DeepMerge, and decoded into a typed Config. Unknown keys are
// rejected.
//
// # File Format
//
//	[logging]
//	level = "debug"
//
//	[document]
//	encoding = "windows-1252"
//	gap_capacity = 256
//
//	[index]
//	consistency_checks = true
//
//	[annotations]
//	wrap_width = 80
//
//	[[markers]]
//	index = 1
//	symbol = "bookmark"
//	fore = "#ffffff"
//	back = "darkred"
//
// # Environment Variables
//
// LINEINDEX_SECTION_KEY sets section.key, so LINEINDEX_DOCUMENT_GAP_CAPACITY
// sets document.gap_capacity. The short forms LINEINDEX_LOG_LEVEL,
// LINEINDEX_ENCODING, LINEINDEX_CHECKS and LINEINDEX_WRAP are also
// recognized. LINEINDEX_MARKERS takes a JSON array of marker tables.
//
// # Basic Usage
//
//	cfg, err := config.Load("lineindex.toml")
//	if err != nil {
//	    var pe *config.ParseError
//	    if errors.As(err, &pe) {
//	        // pe.Line, pe.Column locate the syntax error
//	    }
//	    return err
//	}
//
// Validation failures match ErrValidationFailed and can be unpacked as
// *ValidationError.
package config
