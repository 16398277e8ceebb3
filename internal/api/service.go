package api

import (
	"context"
	"fmt"
	"time"

	"github.com/nuphysics/oscprob/internal/logger"
	"github.com/nuphysics/oscprob/internal/physics"
	"github.com/nuphysics/oscprob/internal/propagator"
)

// DefaultProductionHeightKm is used when a request leaves the production
// height unset.
const DefaultProductionHeightKm = 22.0

// CalculatorService turns oscillogram requests into propagator runs.
type CalculatorService struct {
	log   logger.Logger
	clock func() time.Time
}

func NewCalculatorService(log logger.Logger) *CalculatorService {
	if log == nil {
		log = logger.Default()
	}
	return &CalculatorService{
		log:   log,
		clock: time.Now,
	}
}

// Compute validates the request, runs one calculation pass, and packages the
// requested channels. Validation failures unwrap to ErrInvalidRequest.
func (s *CalculatorService) Compute(ctx context.Context, req *OscillogramRequest) (*OscillogramResponse, error) {
	if len(req.Energies) == 0 {
		return nil, newInvalidRequest("energies must not be empty")
	}
	if len(req.Cosines) == 0 {
		return nil, newInvalidRequest("cosines must not be empty")
	}

	nuType, err := physics.ParseNeutrinoType(req.NeutrinoType)
	if err != nil {
		return nil, newInvalidRequest(err.Error())
	}

	channels, err := resolveChannels(req.Channels)
	if err != nil {
		return nil, newInvalidRequest(err.Error())
	}

	prop, err := propagator.New(len(req.Cosines), len(req.Energies))
	if err != nil {
		return nil, newInvalidRequest(err.Error())
	}
	if req.Backend != "" {
		if err := prop.SetBackend(req.Backend); err != nil {
			return nil, newInvalidRequest(err.Error())
		}
	}
	prop.SetLogger(s.log)

	pars := req.Parameters
	prop.SetMixingAngles(pars.Theta12, pars.Theta13, pars.Theta23, pars.DeltaCP)
	prop.SetMassSplittings(pars.Dm21Sq, pars.Dm32Sq)

	if err := prop.SetEnergies(req.Energies); err != nil {
		return nil, newInvalidRequest(err.Error())
	}
	if err := prop.SetCosines(req.Cosines); err != nil {
		return nil, newInvalidRequest(err.Error())
	}
	if err := applyEarthModel(prop, req.EarthModel); err != nil {
		return nil, newInvalidRequest(err.Error())
	}

	height := DefaultProductionHeightKm
	if req.ProductionHeightKm != nil {
		height = *req.ProductionHeightKm
	}
	if err := prop.SetProductionHeight(height); err != nil {
		return nil, newInvalidRequest(err.Error())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := s.clock()
	if err := prop.Calculate(nuType); err != nil {
		return nil, fmt.Errorf("calculate: %w", err)
	}
	s.log.Info("oscillogram computed",
		"type", nuType.String(),
		"cosines", len(req.Cosines),
		"energies", len(req.Energies),
		"backend", prop.BackendName(),
		"elapsed", s.clock().Sub(started))

	out := make(map[string][]float64, len(channels))
	for _, ch := range channels {
		grid, err := prop.ProbabilityGrid(ch)
		if err != nil {
			return nil, err
		}
		out[ch.String()] = grid
	}

	return &OscillogramResponse{
		ID:           newOscillogramID(),
		Object:       "oscillogram",
		CreatedAt:    s.clock().Unix(),
		NeutrinoType: nuType.String(),
		Parameters:   pars,
		Energies:     req.Energies,
		Cosines:      req.Cosines,
		Backend:      prop.BackendName(),
		Channels:     out,
	}, nil
}

func resolveChannels(names []string) ([]propagator.Channel, error) {
	if len(names) == 0 {
		return propagator.Channels(), nil
	}
	out := make([]propagator.Channel, 0, len(names))
	for _, name := range names {
		ch, err := propagator.ParseChannel(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func applyEarthModel(prop *propagator.Propagator, em *EarthModelRequest) error {
	if em == nil {
		return prop.SetDefaultDensity()
	}
	if len(em.PolyA) > 0 || len(em.PolyB) > 0 || len(em.PolyC) > 0 {
		return prop.SetDensityPoly(em.Radii, em.PolyA, em.PolyB, em.PolyC, em.ElectronFractions)
	}
	return prop.SetDensity(em.Radii, em.Densities, em.ElectronFractions)
}
