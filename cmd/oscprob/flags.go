package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nuphysics/oscprob/internal/logger"
)

var (
	theta12 float64
	theta13 float64
	theta23 float64
	deltaCP float64
	dm21Sq  float64
	dm32Sq  float64

	backendName  string
	densityFile  string
	heightKm     float64
	antineutrino bool

	logLevel  string
	logFormat string
	debug     bool
)

// Defaults follow the NuFIT 5.2 normal-ordering best fit.
func oscillationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:        "theta12",
			Usage:       "solar mixing angle in radians",
			Value:       0.5903,
			Destination: &theta12,
		},
		&cli.Float64Flag{
			Name:        "theta13",
			Usage:       "reactor mixing angle in radians",
			Value:       0.1503,
			Destination: &theta13,
		},
		&cli.Float64Flag{
			Name:        "theta23",
			Usage:       "atmospheric mixing angle in radians",
			Value:       0.8430,
			Destination: &theta23,
		},
		&cli.Float64Flag{
			Name:        "delta-cp",
			Usage:       "CP violating phase in radians",
			Value:       4.084,
			Destination: &deltaCP,
		},
		&cli.Float64Flag{
			Name:        "dm21sq",
			Usage:       "solar mass splitting in eV^2",
			Value:       7.41e-5,
			Destination: &dm21Sq,
		},
		&cli.Float64Flag{
			Name:        "dm32sq",
			Usage:       "atmospheric mass splitting in eV^2",
			Value:       2.437e-3,
			Destination: &dm32Sq,
		},
	}
}

func propagationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "dispatch backend (auto, pool, flat)",
			Value:       "auto",
			Destination: &backendName,
		},
		&cli.StringFlag{
			Name:        "density-file",
			Usage:       "path to a 3- or 5-column earth density table",
			Destination: &densityFile,
		},
		&cli.Float64Flag{
			Name:        "height",
			Usage:       "neutrino production height in km",
			Value:       22.0,
			Destination: &heightKm,
		},
		&cli.BoolFlag{
			Name:        "antineutrino",
			Aliases:     []string{"nubar"},
			Usage:       "propagate antineutrinos instead of neutrinos",
			Destination: &antineutrino,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Value:       "text",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	if logFormat == "json" {
		return logger.JSON(os.Stderr, level)
	}
	return logger.Text(os.Stderr, level)
}
