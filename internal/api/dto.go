package api

// OscillationParameters carries the PMNS mixing angles (radians), the CP
// phase (radians), and the two mass-squared splittings (eV^2).
type OscillationParameters struct {
	Theta12 float64 `json:"theta12"`
	Theta13 float64 `json:"theta13"`
	Theta23 float64 `json:"theta23"`
	DeltaCP float64 `json:"delta_cp"`
	Dm21Sq  float64 `json:"dm21_sq"`
	Dm32Sq  float64 `json:"dm32_sq"`
}

// EarthModelRequest describes a layered density model. Either Densities
// (constant per shell) or the three polynomial coefficient lists must be
// given, matching Radii in length. When omitted entirely a coarse PREM
// default is used.
type EarthModelRequest struct {
	Radii             []float64 `json:"radii"`
	Densities         []float64 `json:"densities,omitempty"`
	PolyA             []float64 `json:"poly_a,omitempty"`
	PolyB             []float64 `json:"poly_b,omitempty"`
	PolyC             []float64 `json:"poly_c,omitempty"`
	ElectronFractions []float64 `json:"electron_fractions"`
}

// OscillogramRequest is the payload of POST /v1/oscillograms.
type OscillogramRequest struct {
	NeutrinoType       string                `json:"neutrino_type,omitempty"`
	Parameters         OscillationParameters `json:"parameters"`
	Energies           []float64             `json:"energies"`
	Cosines            []float64             `json:"cosines"`
	EarthModel         *EarthModelRequest    `json:"earth_model,omitempty"`
	ProductionHeightKm *float64              `json:"production_height_km,omitempty"`
	Backend            string                `json:"backend,omitempty"`
	Channels           []string              `json:"channels,omitempty"`
}

// OscillogramResponse is the stored result of one calculation. Each channel
// maps to a flat grid walked energy-major: index = ei*len(cosines) + ci.
type OscillogramResponse struct {
	ID           string                `json:"id"`
	Object       string                `json:"object"`
	CreatedAt    int64                 `json:"created_at"`
	NeutrinoType string                `json:"neutrino_type"`
	Parameters   OscillationParameters `json:"parameters"`
	Energies     []float64             `json:"energies"`
	Cosines      []float64             `json:"cosines"`
	Backend      string                `json:"backend"`
	Channels     map[string][]float64  `json:"channels"`
}

// ResponseError mirrors the error envelope of the JSON API.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
