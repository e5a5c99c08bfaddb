// Package catalog stores agent definition documents by id and hands out
// parsed definitions, caching parse results by content hash. A filesystem
// loader discovers agent documents and prompt fragments from a directory
// tree.
package catalog
