package vesta

// Point is a single fire weather record combined with its fuel scenario.
type Point struct {
	WindSpeed           float64 `json:"wind_speed"`
	FuelMoisture        float64 `json:"fuel_moisture"`
	DroughtFactor       float64 `json:"drought_factor"`
	DroughtIndex        float64 `json:"drought_index"`
	WindReductionFactor float64 `json:"wind_reduction_factor"`
	FuelLoadSurface     float64 `json:"fuel_load_surface"`
	Slope               float64 `json:"slope"`
	FHSElevated         float64 `json:"fhs_elevated"`
	HeightElevated      float64 `json:"height_elevated"`
	WetForest           bool    `json:"wet_forest"`
}

// Result holds every intermediate of a single evaluation.
type Result struct {
	HeightUnderstorey float64 `json:"height_understorey"`
	MoistureEffect    float64 `json:"moisture_effect"`
	FuelAvailability  float64 `json:"fuel_availability"`
	CombinedMoisture  float64 `json:"combined_moisture"`
	RatePhase1        float64 `json:"ros_phase1"`
	RatePhase2        float64 `json:"ros_phase2"`
	RatePhase3        float64 `json:"ros_phase3"`
	ProbabilityPhase2 float64 `json:"probability_phase2"`
	ProbabilityPhase3 float64 `json:"probability_phase3"`
	RateOfSpread      float64 `json:"ros"`
	Regime            Regime  `json:"regime"`
}

// EvaluatePoint runs the full model for one record. The combined moisture
// term, slope effect and sub-canopy wind are computed once and shared by all
// five rate and probability functions.
func EvaluatePoint(p Point) Result {
	r := Result{
		HeightUnderstorey: UnderstoreyHeight(p.FHSElevated, p.HeightElevated),
		MoistureEffect:    MoistureEffect(p.FuelMoisture),
		FuelAvailability:  FuelAvailability(p.DroughtFactor, p.DroughtIndex, p.WindReductionFactor, p.WetForest),
	}
	r.CombinedMoisture = r.MoistureEffect * r.FuelAvailability

	u := p.WindSpeed / p.WindReductionFactor
	slope := SlopeEffect(p.Slope)

	r.RatePhase1 = ratePhase1(u, p.FuelLoadSurface, r.CombinedMoisture, slope)
	r.RatePhase2 = ratePhase2(u, p.FuelLoadSurface, r.HeightUnderstorey, r.CombinedMoisture, slope)
	r.RatePhase3 = ratePhase3(p.WindSpeed, r.CombinedMoisture)
	r.ProbabilityPhase2 = probabilityPhase2(u, p.FuelLoadSurface, r.CombinedMoisture)
	r.ProbabilityPhase3 = probabilityPhase3(p.WindSpeed, r.RatePhase2, r.CombinedMoisture)
	r.RateOfSpread = RateOfSpread(r.RatePhase1, r.RatePhase2, r.RatePhase3, r.ProbabilityPhase2, r.ProbabilityPhase3)
	r.Regime = Classify(r.ProbabilityPhase2, r.ProbabilityPhase3)
	return r
}

// Inputs are the series form of [Point]. Each field broadcasts; DroughtIndex,
// WindReductionFactor and Slope fall back to the model defaults when nil.
type Inputs struct {
	WindSpeed           []float64 `json:"wind_speed"`
	FuelMoisture        []float64 `json:"fuel_moisture"`
	DroughtFactor       []float64 `json:"drought_factor"`
	DroughtIndex        []float64 `json:"drought_index,omitempty"`
	WindReductionFactor []float64 `json:"wind_reduction_factor,omitempty"`
	FuelLoadSurface     []float64 `json:"fuel_load_surface"`
	Slope               []float64 `json:"slope,omitempty"`
	FHSElevated         []float64 `json:"fhs_elevated"`
	HeightElevated      []float64 `json:"height_elevated"`
	WetForest           bool      `json:"wet_forest"`
}

// Outputs are the series form of [Result], one element per record.
type Outputs struct {
	HeightUnderstorey []float64 `json:"height_understorey"`
	MoistureEffect    []float64 `json:"moisture_effect"`
	FuelAvailability  []float64 `json:"fuel_availability"`
	CombinedMoisture  []float64 `json:"combined_moisture"`
	RatePhase1        []float64 `json:"ros_phase1"`
	RatePhase2        []float64 `json:"ros_phase2"`
	RatePhase3        []float64 `json:"ros_phase3"`
	ProbabilityPhase2 []float64 `json:"probability_phase2"`
	ProbabilityPhase3 []float64 `json:"probability_phase3"`
	RateOfSpread      []float64 `json:"ros"`
	Regime            []Regime  `json:"regime"`
}

// Len reports the number of records in o.
func (o Outputs) Len() int {
	return len(o.RateOfSpread)
}

// At returns the evaluation of record i.
func (o Outputs) At(i int) Result {
	return Result{
		HeightUnderstorey: o.HeightUnderstorey[i],
		MoistureEffect:    o.MoistureEffect[i],
		FuelAvailability:  o.FuelAvailability[i],
		CombinedMoisture:  o.CombinedMoisture[i],
		RatePhase1:        o.RatePhase1[i],
		RatePhase2:        o.RatePhase2[i],
		RatePhase3:        o.RatePhase3[i],
		ProbabilityPhase2: o.ProbabilityPhase2[i],
		ProbabilityPhase3: o.ProbabilityPhase3[i],
		RateOfSpread:      o.RateOfSpread[i],
		Regime:            o.Regime[i],
	}
}

// Evaluate runs the full model over a batch of records. All inputs are
// checked for compatible lengths first; on mismatch no output is produced.
func Evaluate(in Inputs) (Outputs, error) {
	cols := []series{
		named("wind_speed", in.WindSpeed),
		named("fuel_moisture", in.FuelMoisture),
		named("drought_factor", in.DroughtFactor),
		named("drought_index", orDefault(in.DroughtIndex, DefaultDroughtIndex)),
		named("wind_reduction_factor", orDefault(in.WindReductionFactor, DefaultWindReductionFactor)),
		named("fuel_load_surface", in.FuelLoadSurface),
		named("slope", orDefault(in.Slope, 0)),
		named("fhs_elevated", in.FHSElevated),
		named("height_elevated", in.HeightElevated),
	}
	n, err := broadcastLen(cols...)
	if err != nil {
		return Outputs{}, err
	}

	out := newOutputs(n)
	for i := 0; i < n; i++ {
		r := EvaluatePoint(Point{
			WindSpeed:           cols[0].at(i),
			FuelMoisture:        cols[1].at(i),
			DroughtFactor:       cols[2].at(i),
			DroughtIndex:        cols[3].at(i),
			WindReductionFactor: cols[4].at(i),
			FuelLoadSurface:     cols[5].at(i),
			Slope:               cols[6].at(i),
			FHSElevated:         cols[7].at(i),
			HeightElevated:      cols[8].at(i),
			WetForest:           in.WetForest,
		})
		out.set(i, r)
	}
	return out, nil
}

func newOutputs(n int) Outputs {
	return Outputs{
		HeightUnderstorey: make([]float64, n),
		MoistureEffect:    make([]float64, n),
		FuelAvailability:  make([]float64, n),
		CombinedMoisture:  make([]float64, n),
		RatePhase1:        make([]float64, n),
		RatePhase2:        make([]float64, n),
		RatePhase3:        make([]float64, n),
		ProbabilityPhase2: make([]float64, n),
		ProbabilityPhase3: make([]float64, n),
		RateOfSpread:      make([]float64, n),
		Regime:            make([]Regime, n),
	}
}

func (o Outputs) set(i int, r Result) {
	o.HeightUnderstorey[i] = r.HeightUnderstorey
	o.MoistureEffect[i] = r.MoistureEffect
	o.FuelAvailability[i] = r.FuelAvailability
	o.CombinedMoisture[i] = r.CombinedMoisture
	o.RatePhase1[i] = r.RatePhase1
	o.RatePhase2[i] = r.RatePhase2
	o.RatePhase3[i] = r.RatePhase3
	o.ProbabilityPhase2[i] = r.ProbabilityPhase2
	o.ProbabilityPhase3[i] = r.ProbabilityPhase3
	o.RateOfSpread[i] = r.RateOfSpread
	o.Regime[i] = r.Regime
}

func orDefault(values []float64, def float64) []float64 {
	if values == nil {
		return Scalar(def)
	}
	return values
}
