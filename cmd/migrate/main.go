// migrate aplica o revierte las migraciones embebidas sobre la base configurada.
//
// Uso: go run ./cmd/migrate [-log-level info] up|down|version
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/licoreria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/licoreria-api/pkg/config"
	"github.com/jhoicas/licoreria-api/pkg/logger"
)

func main() {
	logLevel := flag.String("log-level", "info", "nivel de log (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: *logLevel, Service: "migrate"})

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	defer mg.Close()

	switch args[0] {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = mg.Version()
		if err == nil {
			fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		}
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("migración")
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "uso: migrate [-log-level nivel] up|down|version")
}
