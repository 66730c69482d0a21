// Package main provides the schema migration runner for the encounter
// report database.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/viper"

	"github.com/voltfall/tactics/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrationsDir := flag.String("migrations", "migrations", "directory holding the SQL migration pairs")
	direction := flag.String("direction", "up", "up, down, or status")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("reading config: %v", err)
	}
	section := v.Sub("database")
	if section == nil {
		log.Fatalf("config %s has no database section", *configPath)
	}
	var dbCfg config.DatabaseConfig
	if err := section.Unmarshal(&dbCfg); err != nil {
		log.Fatalf("parsing database config: %v", err)
	}

	m, err := migrate.New("file://"+*migrationsDir, dbCfg.DSN())
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	switch *direction {
	case "status":
		fmt.Printf("schema %s [%s]\n", describeVersion(m), time.Since(start))
		return
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatalf("invalid direction %q: must be 'up', 'down', or 'status'", *direction)
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Printf("no changes, schema %s [%s]\n", describeVersion(m), time.Since(start))
	case err != nil:
		log.Fatalf("migrating %s: %v", *direction, err)
	default:
		fmt.Printf("migrated %s, schema %s [%s]\n", *direction, describeVersion(m), time.Since(start))
	}
}

func describeVersion(m *migrate.Migrate) string {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return "empty"
	case err != nil:
		return fmt.Sprintf("unknown (%v)", err)
	case dirty:
		return fmt.Sprintf("at version %d (dirty)", version)
	default:
		return fmt.Sprintf("at version %d", version)
	}
}
