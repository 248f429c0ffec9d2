// Package parsers provides implementations of the DocumentParser
// interface for the supported book formats. Each parser knows how to
// extract a title and plain text from one format.
//
// The ingest pipeline picks the first parser whose Formats list
// matches the document's detected or declared format.
package parsers
