package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/nivedita/drishti/internal/app"
	"github.com/nivedita/drishti/internal/capture"
	"github.com/nivedita/drishti/internal/gaze"
	"github.com/nivedita/drishti/internal/store"
)

func main() {
	var (
		dbPath    = flag.String("db", "", "path to the database (default ~/.drishti/drishti.db)")
		mode      = flag.String("mode", gaze.ModePLGaze, "gaze estimator mode (plgaze, mock)")
		candidate = flag.String("candidate", "", "candidate identifier")
		video     = flag.String("video", "", "recorded video to analyze")
		out       = flag.String("out", "", "write per-frame analysis results to this JSON file")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	st, err := openStore(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer st.Close()

	switch flag.Arg(0) {
	case "candidates":
		candidates, err := st.Sessions().ListCandidates()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list candidates")
		}
		for _, id := range candidates {
			fmt.Println(id)
		}

	case "analyze":
		if *candidate == "" || *video == "" {
			log.Fatal().Msg("analyze requires -candidate and -video")
		}
		if err := analyze(st, log, *mode, *candidate, *video, *out); err != nil {
			log.Fatal().Err(err).Msg("analysis failed")
		}

	default:
		fmt.Fprintln(os.Stderr, "usage: drishti [flags] candidates|analyze")
		flag.PrintDefaults()
		os.Exit(2)
	}
}

func analyze(st *store.Store, log zerolog.Logger, mode, candidate, video, out string) error {
	sess, err := st.Sessions().LatestByCandidate(candidate)
	if err != nil {
		return fmt.Errorf("no calibration session for candidate %s: %w", candidate, err)
	}

	estimator, err := gaze.NewEstimator(mode, gaze.DefaultConfig())
	if err != nil {
		return err
	}
	defer estimator.Close()

	a, err := app.New(app.Config{
		Store:     st,
		Estimator: estimator,
		Screen:    sess.Screen.Geometry,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	transform, err := a.LoadTransform(sess.ID)
	if err != nil {
		return fmt.Errorf("no stored transform for session %s: %w", sess.ID, err)
	}

	results, summary, err := a.Analyze(capture.NewVideoFile(video), transform)
	if err != nil {
		return err
	}

	log.Info().
		Int("frames", summary.TotalFrames).
		Int("detected", summary.DetectedFrames).
		Int("projected", summary.ProjectedFrames).
		Int("on_screen", summary.OnScreenFrames).
		Msg("analysis complete")

	if out != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		log.Info().Str("path", out).Msg("wrote per-frame results")
	}
	return nil
}

func openStore(dbPath string) (*store.Store, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir := filepath.Join(homeDir, ".drishti")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		dbPath = filepath.Join(dir, "drishti.db")
	}
	return store.New(dbPath)
}
