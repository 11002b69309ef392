package model

import (
	"context"
	"fmt"
	"math"

	"github.com/grexie/categorize/pkg/dataset"
	"github.com/jedib0t/go-pretty/v6/progress"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// EpochStats summarises one epoch: mean cross-entropy over all samples and
// the share of samples whose most probable class was the target.
type EpochStats struct {
	Epoch    int
	Loss     float64
	Accuracy float64
}

type EpochFunc func(stats EpochStats)

type History struct {
	Epochs []EpochStats
}

func (h *History) Losses() []float64 {
	out := make([]float64, len(h.Epochs))
	for i, e := range h.Epochs {
		out[i] = e.Loss
	}
	return out
}

// Last returns the stats of the most recent completed epoch.
func (h *History) Last() EpochStats {
	if len(h.Epochs) == 0 {
		return EpochStats{Epoch: -1, Loss: math.NaN()}
	}
	return h.Epochs[len(h.Epochs)-1]
}

type TrainOptions struct {
	Epochs    int
	LearnRate float64
	// BatchSize <= 0 trains on the whole dataset as one batch.
	BatchSize int

	// Adam hyperparameters; zero values select 0.9, 0.999 and 1e-8.
	Beta1   float64
	Beta2   float64
	Epsilon float64
	// Clip bounds each gradient element to [-Clip, Clip]; 0 disables it.
	Clip float64

	// Seed drives the per-epoch shuffle.
	Seed uint64

	Progress   progress.Writer
	OnEpochEnd EpochFunc
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.Beta1 == 0 {
		o.Beta1 = 0.9
	}
	if o.Beta2 == 0 {
		o.Beta2 = 0.999
	}
	if o.Epsilon == 0 {
		o.Epsilon = 1e-8
	}
	return o
}

func (o TrainOptions) validate() error {
	if o.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrTraining, o.Epochs)
	}
	if !(o.LearnRate > 0) || math.IsInf(o.LearnRate, 0) {
		return fmt.Errorf("%w: learn rate must be positive, got %v", ErrTraining, o.LearnRate)
	}
	if o.Beta1 < 0 || o.Beta1 >= 1 || o.Beta2 < 0 || o.Beta2 >= 1 {
		return fmt.Errorf("%w: adam betas must be in [0, 1), got %v and %v", ErrTraining, o.Beta1, o.Beta2)
	}
	if o.Clip < 0 {
		return fmt.Errorf("%w: clip must not be negative, got %v", ErrTraining, o.Clip)
	}
	return nil
}

// trainer is the graph, tape machine and Adam state of one Train call.
type trainer struct {
	net   *network
	y     *gorgonia.Node
	count *gorgonia.Node
	loss  *gorgonia.Node

	vm     gorgonia.VM
	solver gorgonia.Solver

	batchSize int
}

func newTrainer(m *Model, batchSize int, opts TrainOptions) (*trainer, error) {
	net, err := newNetwork(m, batchSize)
	if err != nil {
		return nil, err
	}

	t := &trainer{net: net, batchSize: batchSize}
	t.y = gorgonia.NewMatrix(net.g, tensor.Float64,
		gorgonia.WithShape(batchSize, m.classes),
		gorgonia.WithName("y"))
	t.count = gorgonia.NewScalar(net.g, tensor.Float64,
		gorgonia.WithName("n"))

	if t.loss, err = CategoricalCrossEntropy(net.probs, t.y, t.count); err != nil {
		return nil, err
	}

	if _, err := gorgonia.Grad(t.loss, net.learnables()...); err != nil {
		return nil, fmt.Errorf("failed to compute gradients: %v", err)
	}

	t.vm = gorgonia.NewTapeMachine(net.g,
		gorgonia.WithLogger(nil),
		gorgonia.WithValueFmt("%3.3f"),
	)

	solverOpts := []gorgonia.SolverOpt{
		gorgonia.WithLearnRate(opts.LearnRate),
		gorgonia.WithBeta1(opts.Beta1),
		gorgonia.WithBeta2(opts.Beta2),
		gorgonia.WithEps(opts.Epsilon),
	}
	if opts.Clip > 0 {
		solverOpts = append(solverOpts, gorgonia.WithClip(opts.Clip))
	}
	t.solver = gorgonia.NewAdamSolver(solverOpts...)

	return t, nil
}

func (t *trainer) Close() error {
	return t.vm.Close()
}

// step runs forward and backward passes over the samples at indices and
// applies one Adam update. It returns the mean loss of the batch and the
// number of samples classified correctly before the update.
func (t *trainer) step(ds *dataset.Dataset, indices []int) (float64, int, error) {
	xs, ys := ds.FlattenBatch(indices, t.batchSize)

	if err := gorgonia.Let(t.net.x, tensor.New(
		tensor.WithShape(t.batchSize, ds.Inputs()),
		tensor.WithBacking(xs))); err != nil {
		return 0, 0, fmt.Errorf("failed to update x tensor: %v", err)
	}
	if err := gorgonia.Let(t.y, tensor.New(
		tensor.WithShape(t.batchSize, ds.Classes()),
		tensor.WithBacking(ys))); err != nil {
		return 0, 0, fmt.Errorf("failed to update y tensor: %v", err)
	}
	if err := gorgonia.Let(t.count, float64(len(indices))); err != nil {
		return 0, 0, fmt.Errorf("failed to update sample count: %v", err)
	}

	t.vm.Reset()
	if err := t.vm.RunAll(); err != nil {
		return 0, 0, fmt.Errorf("forward/backward pass failed: %v", err)
	}

	loss, ok := t.loss.Value().Data().(float64)
	if !ok {
		return 0, 0, fmt.Errorf("loss is not a float64 scalar")
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return loss, 0, fmt.Errorf("%w: loss is not finite (%v)", ErrTraining, loss)
	}

	probs, err := nodeData(t.net.probs)
	if err != nil {
		return 0, 0, fmt.Errorf("reading probabilities: %v", err)
	}
	classes := ds.Classes()
	correct := 0
	for i, idx := range indices {
		if floats.MaxIdx(probs[i*classes:(i+1)*classes]) == ds.Class(idx) {
			correct++
		}
	}

	if err := t.solver.Step(gorgonia.NodesToValueGrads(t.net.learnables())); err != nil {
		return 0, 0, fmt.Errorf("optimizer step failed: %v", err)
	}

	return loss, correct, nil
}

// finite reports whether every parameter in the graph is finite.
func (t *trainer) finite() (bool, error) {
	for _, node := range t.net.learnables() {
		data, err := nodeData(node)
		if err != nil {
			return false, err
		}
		if floats.HasNaN(data) || math.IsInf(floats.Max(data), 1) || math.IsInf(floats.Min(data), -1) {
			return false, nil
		}
	}
	return true, nil
}

// Train fits m to ds for exactly opts.Epochs epochs with Adam on
// categorical cross-entropy, visiting the samples in a fresh random order
// each epoch. Parameters are committed to m only at the end of each
// completed epoch: on error or cancellation m holds the last completed
// epoch.
func Train(ctx context.Context, m *Model, ds *dataset.Dataset, opts TrainOptions) (*History, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrTraining, dataset.ErrEmpty)
	}
	if ds.Inputs() != m.inputs {
		return nil, fmt.Errorf("%w: dataset has %d features, model expects %d", ErrTraining, ds.Inputs(), m.inputs)
	}
	if ds.Classes() != m.classes {
		return nil, fmt.Errorf("%w: dataset has %d classes, model expects %d", ErrTraining, ds.Classes(), m.classes)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > ds.Len() {
		batchSize = ds.Len()
	}

	t, err := newTrainer(m, batchSize, opts)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	var tracker *progress.Tracker
	if opts.Progress != nil {
		tracker = &progress.Tracker{
			Message: "Training",
			Total:   int64(opts.Epochs),
			Units:   progress.UnitsDefault,
		}
		opts.Progress.AppendTracker(tracker)
		tracker.Start()
	}

	rng := NewRand(opts.Seed)
	history := &History{Epochs: make([]EpochStats, 0, opts.Epochs)}

	for epoch := range opts.Epochs {
		if err := ctx.Err(); err != nil {
			if tracker != nil {
				tracker.MarkAsErrored()
			}
			return history, fmt.Errorf("training stopped after %d epochs: %w", epoch, err)
		}

		order := ds.Permutation(rng)
		totalLoss := 0.0
		correct := 0

		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			batch := order[start:end]

			loss, c, err := t.step(ds, batch)
			if err != nil {
				if tracker != nil {
					tracker.MarkAsErrored()
				}
				return history, fmt.Errorf("epoch %d: %w", epoch, err)
			}
			totalLoss += loss * float64(len(batch))
			correct += c
		}

		if ok, err := t.finite(); err != nil {
			return history, fmt.Errorf("epoch %d: %v", epoch, err)
		} else if !ok {
			if tracker != nil {
				tracker.MarkAsErrored()
			}
			return history, fmt.Errorf("%w: epoch %d produced non-finite parameters", ErrTraining, epoch)
		}
		if err := t.net.commit(m); err != nil {
			return history, fmt.Errorf("epoch %d: %v", epoch, err)
		}

		stats := EpochStats{
			Epoch:    epoch,
			Loss:     totalLoss / float64(ds.Len()),
			Accuracy: float64(correct) / float64(ds.Len()),
		}
		history.Epochs = append(history.Epochs, stats)

		if tracker != nil {
			tracker.Message = fmt.Sprintf("Training - L: %.6f, A: %.2f%%", stats.Loss, 100*stats.Accuracy)
			tracker.SetValue(int64(epoch + 1))
		}
		if opts.OnEpochEnd != nil {
			opts.OnEpochEnd(stats)
		}
	}

	if tracker != nil {
		tracker.MarkAsDone()
	}

	return history, nil
}
