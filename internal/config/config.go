package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "FREELANCEOS_"

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Database Database `koanf:"db"`
	Billing  Billing  `koanf:"billing"`
	Timer    Timer    `koanf:"timer"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Billing holds the regulatory figures and invoicing defaults. Amounts are
// decimal strings in the configured currency units.
type Billing struct {
	Currency         string `koanf:"currency"`
	LowerCap         string `koanf:"lowercap"`
	UpperCap         string `koanf:"uppercap"`
	ContributionRate string `koanf:"contributionrate"`
	PaymentTermDays  int    `koanf:"paymenttermdays"`
}

type Timer struct {
	TickInterval    time.Duration `koanf:"tickinterval"`
	SupersedePolicy string        `koanf:"supersedepolicy"`
	StopPolicy      string        `koanf:"stoppolicy"`
	ElapsedMode     string        `koanf:"elapsedmode"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "freelanceos",
			Pass:   "",
			Name:   "freelanceos",
			Schema: "freelanceos",
		},
		Billing: Billing{
			Currency:         "EUR",
			LowerCap:         "37500",
			UpperCap:         "77700",
			ContributionRate: "24.6",
			PaymentTermDays:  30,
		},
		Timer: Timer{
			TickInterval:    time.Second,
			SupersedePolicy: "discard",
			StopPolicy:      "keep_on_failure",
			ElapsedMode:     "accumulated",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
