package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/grexie/categorize/pkg/fixtures"
	"github.com/grexie/categorize/pkg/model"
	"github.com/grexie/categorize/pkg/problem"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
)

func loadEnv(filenames ...string) {
	for _, filename := range filenames {
		if s, err := os.Stat(filename); err == nil && !s.IsDir() {
			godotenv.Load(filename)
		}
	}
}

func main() {
	if _, ok := os.LookupEnv("ENV"); !ok {
		env := "development"
		os.Setenv("ENV", env)
	}
	loadEnv(".env."+os.Getenv("ENV")+".local", ".env."+os.Getenv("ENV"), ".env.local", ".env")

	names, err := problem.List(fixtures.FS)
	if err != nil {
		log.Fatalf("error listing problems: %v", err)
	}
	if p, ok := os.LookupEnv("CATEGORIZE_PROBLEMS"); ok && p != "" {
		names = strings.Split(p, ",")
	}

	var opts problem.RunOptions
	if s, ok := os.LookupEnv("CATEGORIZE_SEED"); ok {
		if s, err := strconv.ParseUint(s, 10, 64); err != nil {
			log.Fatalf("error parsing env.CATEGORIZE_SEED: %v", err)
		} else {
			opts.Seed = s
		}
	}
	if e, ok := os.LookupEnv("CATEGORIZE_EPOCHS"); ok {
		if e, err := strconv.ParseInt(e, 10, 64); err != nil {
			log.Fatalf("error parsing env.CATEGORIZE_EPOCHS: %v", err)
		} else {
			opts.Epochs = int(e)
		}
	}
	verbose := os.Getenv("CATEGORIZE_VERBOSE") == "true"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, name := range names {
		def, err := problem.Load(fixtures.FS, strings.TrimSpace(name))
		if err != nil {
			log.Fatalf("error loading problem: %v", err)
		}

		writeConfig(def, opts)

		pw := progress.NewWriter()
		pw.SetMessageLength(40)
		pw.SetNumTrackersExpected(1)
		pw.SetStyle(progress.StyleDefault)
		pw.SetTrackerLength(15)
		pw.SetTrackerPosition(progress.PositionRight)
		pw.SetUpdateFrequency(time.Millisecond * 100)
		pw.Style().Colors = progress.StyleColorsExample
		pw.Style().Options.PercentFormat = "%2.0f%%"
		go pw.Render()

		runOpts := opts
		runOpts.Progress = pw
		if verbose {
			runOpts.OnEpochEnd = func(stats model.EpochStats) {
				log.Printf("%s: epoch %d: loss = %.6f accuracy = %.2f%%", def.Name, stats.Epoch, stats.Loss, 100*stats.Accuracy)
			}
		}

		result, err := problem.Run(ctx, def, runOpts)

		pw.Stop()
		for pw.IsRenderInProgress() {
			time.Sleep(100 * time.Millisecond)
		}

		if err != nil {
			log.Fatalf("error running problem %s: %v", def.Name, err)
		}

		if err := result.Metrics.Write(os.Stdout, def.Labels); err != nil {
			log.Fatalf("error writing metrics: %v", err)
		}

		for _, q := range result.Queries {
			fmt.Printf("\n%s\n%s\n", q.Name, q.Prediction.Format(def.Labels))
		}
		fmt.Println()
	}
}

func writeConfig(def *problem.Definition, opts problem.RunOptions) {
	seed, epochs := def.Seed, def.Epochs
	if opts.Seed != 0 {
		seed = opts.Seed
	}
	if opts.Epochs > 0 {
		epochs = opts.Epochs
	}

	spec, err := def.Spec()
	if err != nil {
		log.Fatalf("error reading features: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(def.Name)
	t.AppendRows([]table.Row{
		{"FEATURES", strings.Join(spec.Columns(), ", ")},
		{"LABELS", strings.Join(def.Labels, ", ")},
		{"HIDDEN", fmt.Sprintf("%d", def.Hidden)},
		{"EPOCHS", fmt.Sprintf("%d", epochs)},
		{"LEARN_RATE", fmt.Sprintf("%0.04f", def.LearnRate)},
		{"BATCH_SIZE", fmt.Sprintf("%d", def.BatchSize)},
		{"SEED", fmt.Sprintf("%d", seed)},
		{"SAMPLES", fmt.Sprintf("%d", len(def.Training))},
	})
	t.Render()
}
