// Package relica provides archive repository implementations using Relica query builder.
//
// Relica (github.com/coregx/relica) is a lightweight, type-safe database query builder
// for Go with zero production dependencies.
//
// This package implements the roomcast archive repositories:
//   - RoomRepository
//   - MessageRepository
//
// Example usage:
//
//	import (
//	    "database/sql"
//	    "github.com/coregx/roomcast"
//	    "github.com/coregx/roomcast/adapters/relica"
//	    _ "github.com/mattn/go-sqlite3"
//	)
//
//	db, err := sql.Open("sqlite3", "roomcast.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	repos := relica.NewRepositories(db, "sqlite3")
//
//	archiver, err := roomcast.NewArchiver(
//	    roomcast.WithArchiveRepositories(repos.Room, repos.Message),
//	    roomcast.WithArchiveLogger(logger),
//	)
//	go archiver.Run(ctx)
//
//	registry, err := roomcast.NewRegistry(roomcast.WithArchive(archiver))
package relica
