// Package history recovers patch authorship from version control.
//
// When a patch header omits Author or Last-Update, GitResolver asks git for
// the most recent commit touching the patch file and reports its author and
// commit date.
package history
