package backcast_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/forecastlab/backcast"
	"github.com/forecastlab/backcast/models"
	"github.com/forecastlab/backcast/timeframe"
)

func Example() {
	// a daily cycle on a constant level, hourly over 40 days
	ts := timeframe.GenerateT(960, time.Hour, func() time.Time {
		return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	})
	y := timeframe.GenerateConst(960, 50.0).
		Add(timeframe.GenerateWave(ts, 10.0, 86400.0, 1.0, 0.0))

	frame, err := timeframe.Build(y.Observations(ts, nil), &timeframe.Config{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	bt, err := backcast.New(frame, &backcast.Options{
		InitialWindow: 720,
		AssessWindow:  120,
		Step:          120,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := bt.Register("mean", models.NewMean()); err != nil {
		fmt.Println("error:", err)
		return
	}
	decompose, err := models.NewDecompose(nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := bt.Register("decompose", decompose); err != nil {
		fmt.Println("error:", err)
		return
	}

	report, err := bt.Run(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	best, _ := report.Best()
	fmt.Printf("best model: %s over %d folds\n", best.ModelID, best.Folds)
	// Output:
	// best model: decompose over 2 folds
}
