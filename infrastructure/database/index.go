package database

import (
	"invigil.io/infrastructure/database/connection"
	"invigil.io/infrastructure/env"
)

func SetUpDatabase(cfg *env.Config) error {
	return connection.ConnectToDatabase(cfg)
}

func CleanUp() {
	connection.CleanUp()
}
