// Package replay drives an engine from scripts and dumps its line table.
//
// Two script formats are supported. YAML scripts are flat step lists with
// expect steps for checking the index; Lua scripts get a doc table with the
// same operations plus queries, for generated or randomized edits. Both use
// UTF-16 positions and zero-based lines, like the engine.
//
// Run wraps a script and counts the native notifications it produced.
// DumpJSON and WriteText render the resulting line table.
package replay
