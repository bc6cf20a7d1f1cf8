// Package show implements the show command, which prints the parsed DEP3
// header of each patch as a YAML document with fields in file order.
package show
