// Package mediatypes provides file-extension filtering for the extraction
// pipeline.
//
// The pipeline only processes files whose extension is in the configured
// ExtensionSet; everything else in the source directory is ignored. Matching
// is case-insensitive, so IMG_0001.JPG matches a set containing "jpg".
package mediatypes
