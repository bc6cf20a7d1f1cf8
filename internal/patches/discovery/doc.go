// Package discovery locates patch files beneath directory roots using
// doublestar glob patterns matched against root-relative paths.
package discovery
