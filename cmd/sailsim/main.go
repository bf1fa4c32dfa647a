package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"

	"github.com/heliodyne/sailprop"
)

// This code effectively only reads the scenario file, runs one trajectory
// prediction and exports the result.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05"
)

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "sail scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Read prediction parameters.
	startDT, err := time.Parse(dateFormat, viper.GetString("prediction.start"))
	if err != nil {
		log.Fatalf("could not parse prediction.start: %s", err)
	}
	duration := viper.GetDuration("prediction.duration")
	steps := viper.GetInt("prediction.steps")
	if verbose {
		log.Printf("[conf] predicting %s over %d steps from %s\n", duration, steps, startDT)
	}

	// Read the orbit.
	originName := viper.GetString("orbit.body")
	origin, err := sailprop.BodyFromString(originName)
	if err != nil {
		log.Fatalf("could not understand body %q: %s", originName, err)
	}
	orbit, err := sailprop.NewOrbit(
		viper.GetFloat64("orbit.sma"),
		viper.GetFloat64("orbit.ecc"),
		viper.GetFloat64("orbit.inc"),
		viper.GetFloat64("orbit.RAAN"),
		viper.GetFloat64("orbit.argPeri"),
		viper.GetFloat64("orbit.meanAnomaly"),
		startDT, origin)
	if err != nil {
		log.Fatalf("invalid orbit: %s", err)
	}

	// Read the sail.
	sail := sailprop.SailConfig{
		Area:         viper.GetFloat64("sail.area"),
		Reflectivity: viper.GetFloat64("sail.reflectivity"),
		Yaw:          viper.GetFloat64("sail.yaw"),
		Pitch:        viper.GetFloat64("sail.pitch"),
		Deployment:   viper.GetFloat64("sail.deployment"),
		Condition:    viper.GetFloat64("sail.condition"),
		Count:        viper.GetInt("sail.count"),
	}
	mass := viper.GetFloat64("ship.mass")

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	settings := sailprop.LoadSettings()
	catalog := sailprop.NewCatalog(settings)
	soi := sailprop.NewSOIManager(catalog, settings, logger)
	cache := sailprop.NewTrajectoryCache(settings)
	predictor := sailprop.NewPredictor(catalog, soi, cache, settings, logger)

	soiState := sailprop.HeliocentricSOIState()
	if !origin.IsSun() {
		soiState = sailprop.SOIState{InSOI: true, BodyName: origin.Name}
	}
	samples, err := predictor.Predict(sailprop.PredictionRequest{
		Orbit:    orbit,
		Sail:     sail,
		Mass:     mass,
		Start:    startDT,
		Duration: duration,
		Steps:    steps,
		SOI:      soiState,
	})
	if err != nil {
		log.Fatalf("prediction failed: %s", err)
	}

	conf := sailprop.ExportConfig{
		Filename: viper.GetString("export.filename"),
		AsCSV:    viper.GetBool("export.csv"),
		AsJSON:   viper.GetBool("export.json"),
	}
	if err := sailprop.ExportTrajectory(conf, samples); err != nil {
		log.Fatalf("export failed: %s", err)
	}
	log.Printf("predicted %d samples (truncated: %v)", len(samples), len(samples) > 0 && samples[len(samples)-1].Truncated)
}
