// Package services wraps the catalog repositories for transport adapters.
//
// Mutations return a Result envelope with a human readable message; reads
// return entities unchanged. Errors from the repositories are passed through
// untouched so the boundary can map their apperrors kind to a status.
//
// # Compile-time checks
//
//	var _ BookStore = (*books.Repository)(nil)
//	var _ AuthorStore = (*authors.Repository)(nil)
//	var _ CategoryStore = (*categories.Repository)(nil)
package services
