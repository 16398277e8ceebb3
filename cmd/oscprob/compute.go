package main

import (
	"context"
	"fmt"
	"math"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/nuphysics/oscprob/internal/physics"
	"github.com/nuphysics/oscprob/internal/propagator"
)

func computeCmd() *cli.Command {
	var (
		energyMin  float64
		energyMax  float64
		nEnergies  int64
		cosineMin  float64
		cosineMax  float64
		nCosines   int64
		channel    string
		outputPath string
	)

	flags := append(oscillationFlags(), propagationFlags()...)
	flags = append(flags, loggingFlags()...)
	flags = append(flags,
		&cli.Float64Flag{
			Name:        "energy-min",
			Usage:       "lowest energy in GeV",
			Value:       0.5,
			Destination: &energyMin,
		},
		&cli.Float64Flag{
			Name:        "energy-max",
			Usage:       "highest energy in GeV",
			Value:       100,
			Destination: &energyMax,
		},
		&cli.Int64Flag{
			Name:        "energies",
			Usage:       "number of energy bins (log spaced)",
			Value:       100,
			Destination: &nEnergies,
		},
		&cli.Float64Flag{
			Name:        "cosine-min",
			Usage:       "lowest zenith cosine",
			Value:       -1,
			Destination: &cosineMin,
		},
		&cli.Float64Flag{
			Name:        "cosine-max",
			Usage:       "highest zenith cosine",
			Value:       0,
			Destination: &cosineMax,
		},
		&cli.Int64Flag{
			Name:        "cosines",
			Usage:       "number of zenith cosine bins",
			Value:       100,
			Destination: &nCosines,
		},
		&cli.StringFlag{
			Name:        "channel",
			Usage:       "oscillation channel to print (e.g. mu->mu)",
			Value:       "mu->mu",
			Destination: &channel,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "write the full oscillogram as JSON to this file",
			Destination: &outputPath,
		},
	)

	return &cli.Command{
		Name:  "compute",
		Usage: "Compute an oscillation probability grid",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyComputeConfig(cmd, LoadConfig())
			log := buildLogger()

			ch, err := propagator.ParseChannel(channel)
			if err != nil {
				return err
			}

			energies := logspace(energyMin, energyMax, int(nEnergies))
			cosines := linspace(cosineMin, cosineMax, int(nCosines))

			prop, err := propagator.New(len(cosines), len(energies))
			if err != nil {
				return err
			}
			prop.SetLogger(log)
			if err := prop.SetBackend(backendName); err != nil {
				return err
			}
			prop.SetMixingAngles(theta12, theta13, theta23, deltaCP)
			prop.SetMassSplittings(dm21Sq, dm32Sq)
			if err := prop.SetEnergies(energies); err != nil {
				return err
			}
			if err := prop.SetCosines(cosines); err != nil {
				return err
			}
			if densityFile != "" {
				if err := prop.SetDensityFromFile(densityFile); err != nil {
					return err
				}
			} else if err := prop.SetDefaultDensity(); err != nil {
				return err
			}
			if err := prop.SetProductionHeight(heightKm); err != nil {
				return err
			}

			nuType := physics.Neutrino
			if antineutrino {
				nuType = physics.Antineutrino
			}
			if err := prop.Calculate(nuType); err != nil {
				return err
			}

			if outputPath != "" {
				return writeOscillogram(prop, outputPath, nuType, energies, cosines)
			}
			return printChannel(prop, ch, energies, cosines)
		},
	}
}

func printChannel(prop *propagator.Propagator, ch propagator.Channel, energies, cosines []float64) error {
	fmt.Printf("# channel %s\n", ch)
	fmt.Printf("# %10s %12s %12s\n", "cos(zen)", "E (GeV)", "P")
	for ci, cz := range cosines {
		for ei, e := range energies {
			p, err := prop.Probability(ci, ei, ch)
			if err != nil {
				return err
			}
			fmt.Printf("  %10.4f %12.5g %12.6f\n", cz, e, p)
		}
	}
	return nil
}

func writeOscillogram(prop *propagator.Propagator, path string, nuType physics.NeutrinoType, energies, cosines []float64) error {
	channels := make(map[string][]float64, 9)
	for _, ch := range propagator.Channels() {
		grid, err := prop.ProbabilityGrid(ch)
		if err != nil {
			return err
		}
		channels[ch.String()] = grid
	}
	out := map[string]any{
		"neutrino_type": nuType.String(),
		"energies":      energies,
		"cosines":       cosines,
		"backend":       prop.BackendName(),
		"channels":      channels,
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func logspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	logLo, logHi := math.Log10(lo), math.Log10(hi)
	step := (logHi - logLo) / float64(n-1)
	for i := range out {
		out[i] = math.Pow(10, logLo+float64(i)*step)
	}
	return out
}

func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
