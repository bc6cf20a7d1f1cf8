// Package dep3 parses DEP3 patch headers into validated records.
//
// A patch file starts with `Key: value` header lines, optionally folded onto
// indented continuation lines and interleaved with free-form prose, and ends
// its metadata at a line reading `---`. Parser reads that prefix line by line
// through a three-state machine (none, header, free-form) and produces a
// Record. Description, Author and Reviewed-by are stored under their aliases
// Subject, From and Acked-by; every Record accessor resolves the alias first.
//
// A Record is valid when it carries a Description and at least one of Origin
// or Author. Only valid records receive the accumulated free-form prose,
// appended to Description, and have their values trimmed. Parse functions
// return an error solely for I/O failures, reported as ReadError.
package dep3
