// Package resolve implements the configuration-resolution engine: it takes a
// decoded survey configuration payload and compiles its file definitions
// into two tables, a file table keyed by canonical format and object type
// and a group table pairing files of different object types that belong to
// the same pointing.
//
// Resolution is a fixed pipeline run once at construction. Each file source
// in the payload is normalized from its nested shape into flat descriptors,
// wildcard patterns are expanded, descriptors of different object types are
// paired positionally within each format, and the per-source tables are
// merged, de-duplicated and reverse-indexed by group. Top-level reader
// defaults (fields, flag_field, file_reader) are distributed over the tables
// before merging, with optional restriction by format component or object
// type.
//
// The resulting Resolver is a read-only query surface. It never opens the
// files it catalogs; wildcard expansion against the filesystem is the one
// I/O it performs, and that is injectable.
package resolve
