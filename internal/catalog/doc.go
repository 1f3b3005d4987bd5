// Package catalog resolves the fixed playlist identifiers to display metadata.
//
// [Loader.Load] fetches every identifier concurrently and joins the results.
// The batch is all-or-nothing: one failed fetch cancels the others and the
// caller gets a catalog load error instead of a partial list.
package catalog
