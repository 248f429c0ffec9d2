// Package publish provides Publisher implementations for the
// supported paste services and a registry that resolves the publisher
// for the configured service.
//
// Each service lives in its own subpackage: dpaste and sprunge are
// anonymous HTTP paste bins, gist and gdrive are token-backed uploads.
package publish
