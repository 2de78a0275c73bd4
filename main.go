package main

import (
	"os"

	"github.com/freelanceos/freelanceos/internal/cli"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func init() {
	// a missing .env file is fine, the environment may already be set
	_ = godotenv.Load()

	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
