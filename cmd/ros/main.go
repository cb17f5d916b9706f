// Command ros evaluates the spread model for a single set of conditions and
// prints every intermediate quantity.
//
// Usage:
//
//	go run ./cmd/ros -wind 20 -moisture 10 -df 8
//	go run ./cmd/ros -wind 35 -moisture 6 -df 9 -di 120 -wet -json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/couchcryptid/vesta-spread-service/internal/domain"
	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ros:", err)
		os.Exit(2)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	def := domain.DefaultScenario()

	fs := flag.NewFlagSet("ros", flag.ContinueOnError)
	fs.SetOutput(stderr)
	wind := fs.Float64("wind", 0, "10 m open wind speed, km/h")
	moisture := fs.Float64("moisture", 0, "fine dead fuel moisture content, %")
	df := fs.Float64("df", 0, "drought factor, 0-10")
	di := fs.Float64("di", def.DroughtIndex, "drought index (KBDI or SDI), wet forest only")
	wrf := fs.Float64("wrf", def.WindReductionFactor, "wind reduction factor")
	load := fs.Float64("load", def.FuelLoadSurface, "surface and near-surface fuel load, t/ha")
	slope := fs.Float64("slope", def.Slope, "terrain slope, degrees, positive upslope")
	fhs := fs.Float64("fhs", def.FHSElevated, "elevated fuel hazard score")
	height := fs.Float64("height", def.HeightElevated, "elevated fuel height, m")
	wet := fs.Bool("wet", def.WetForest, "apply the wet forest drought factor adjustment")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	p := vesta.Point{
		WindSpeed:           *wind,
		FuelMoisture:        *moisture,
		DroughtFactor:       *df,
		DroughtIndex:        *di,
		WindReductionFactor: *wrf,
		FuelLoadSurface:     *load,
		Slope:               *slope,
		FHSElevated:         *fhs,
		HeightElevated:      *height,
		WetForest:           *wet,
	}
	r := vesta.EvaluatePoint(p)

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Inputs vesta.Point  `json:"inputs"`
			Result vesta.Result `json:"result"`
		}{p, r})
	}
	return printTable(stdout, r)
}

func printTable(w io.Writer, r vesta.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		label string
		value float64
		unit  string
	}{
		{"understorey height", r.HeightUnderstorey, "m"},
		{"moisture effect", r.MoistureEffect, ""},
		{"fuel availability", r.FuelAvailability, ""},
		{"combined moisture", r.CombinedMoisture, ""},
		{"phase 1 rate", r.RatePhase1, "m/h"},
		{"phase 2 rate", r.RatePhase2, "m/h"},
		{"phase 3 rate", r.RatePhase3, "m/h"},
		{"phase 2 probability", r.ProbabilityPhase2, ""},
		{"phase 3 probability", r.ProbabilityPhase3, ""},
		{"rate of spread", r.RateOfSpread, "m/h"},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%.6g\t%s\n", row.label, row.value, row.unit)
	}
	fmt.Fprintf(tw, "regime\t%s\t\n", r.Regime)
	return tw.Flush()
}
