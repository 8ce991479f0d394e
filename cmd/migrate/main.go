package main

import (
	"log"

	"taxi-dispatch-system/config"
	"taxi-dispatch-system/migration"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := migration.RunMigrations(cfg.DB.DSN(), "file://migration/migrations"); err != nil {
		log.Fatal(err)
	}
}
