package relica

import (
	"database/sql"

	"github.com/coregx/roomcast"
	"github.com/coregx/roomcast/model"
)

// Repositories holds all repository implementations.
type Repositories struct {
	Room    roomcast.RoomRepository
	Message roomcast.MessageRepository
}

// NewRepositories creates all repository implementations using Relica.
//
// The db parameter should be an *sql.DB connected to MySQL, PostgreSQL, or SQLite.
// The driverName should be "mysql", "postgres", or "sqlite3".
// The table prefix defaults to "roomcast_".
func NewRepositories(db *sql.DB, driverName string) *Repositories {
	return NewRepositoriesWithPrefix(db, driverName, model.DefaultTablePrefix)
}

// NewRepositoriesWithPrefix creates all repository implementations with a custom table prefix.
func NewRepositoriesWithPrefix(db *sql.DB, driverName, prefix string) *Repositories {
	return &Repositories{
		Room:    NewRoomRepositoryWithPrefix(db, driverName, prefix),
		Message: NewMessageRepositoryWithPrefix(db, driverName, prefix),
	}
}
