package config

const (
	// DefaultDatabasePath is the default sqlite file for the catalog.
	DefaultDatabasePath = "./catalog.db"

	// DefaultPort matches the port the catalog API has always listened on.
	DefaultPort = 3000

	// MaxBooksPerPage caps perPage on the books listing.
	MaxBooksPerPage = 20
)
