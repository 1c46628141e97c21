// Package database is the storage gateway for the catalog.
//
// # Architecture
//
// The gateway owns the gorm connection pool and is the only place that opens
// or closes it. Entity repositories live in sub-packages and receive the
// gateway at construction:
//
//	database/
//	├── database.go      # Driver selection, migrations, currency seeding
//	├── gateway.go       # Run / Transaction scopes and error translation
//	├── relations.go     # Connect / Replace / Disconnect association mutations
//	├── pagination.go    # Offset, Paginate scope and IDList
//	├── books/           # Books and ratings
//	├── authors/         # Authors
//	├── categories/      # Categories
//	├── currencies/      # Currency lookup by short code
//	├── users/           # Users owning ratings and logging in
//	└── maintenance/     # Dangling association sweep
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(database.Options{Driver: "sqlite", Path: "./catalog.db"})
//	authorsRepo := authors.NewRepository(db)
//	author, err := authorsRepo.Create(ctx, entities.Author{Name: "Tolstoy", Birth: birth}, nil)
//
// # Operation Scope
//
// Every repository method runs through Database.Run (or Database.Transaction).
// The scope binds a fresh session to the caller's context and, on every exit
// path, translates the error into the apperrors taxonomy and records the
// outcome. Repositories never hold a *gorm.DB outside that scope.
//
// # Relationship Mutations
//
// Association changes go through Mutate with an explicit Mutation value:
//
//	database.Mutate[entities.Author](tx, &book, "Authors", database.Connect(1, 2))
//	database.Mutate[entities.Author](tx, &book, "Authors", database.Replace(5))
//	database.Mutate[entities.Book](db, &author, "Books", database.Disconnect(bookID))
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *database.Database field
//  3. Add NewRepository(db *database.Database) constructor
//  4. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
