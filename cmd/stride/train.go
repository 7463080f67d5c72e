// Copyright 2026 Stride ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"math/rand"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stride-ml/stride/core"
	"github.com/stride-ml/stride/data"
	"github.com/stride-ml/stride/nn"
	"github.com/stride-ml/stride/optim"
)

var epochs int

// demo is the built-in demo composition: a linear regressor over the
// synthetic regression dataset, optimized with SGD. The module body keeps a
// handle on the layer so the training loop can compute its gradients.
var demo = func() struct {
	spec *core.Spec
	lin  *nn.Linear
} {
	d := struct {
		spec *core.Spec
		lin  *nn.Linear
	}{}
	d.spec = &core.Spec{
		Name: "DemoRegressor",
		Mixins: []core.Mixin{
			&data.RandomRegressionLoader{},
			&optim.SgdOptimizer{},
		},
		Body: func(m *core.Module) error {
			seed, err := m.Hparams().Int("seed")
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(int64(seed)))
			d.lin = nn.NewLinear(m.InputShape.NumElements(), m.OutputShape.NumElements(), rng)
			m.AddParameters(d.lin.Parameters()...)
			m.SetForward(d.lin.Forward)
			return nil
		},
	}
	return d
}()

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the built-in demo module",
	Long: `Train composes the demo module (synthetic regression data + SGD),
exposes its merged configuration schema as flags, and runs a small
gradient-descent loop over the generated dataset.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&epochs, "epochs", 10, "number of training epochs")
	cfgs, err := demo.spec.CollectConfigs()
	if err != nil {
		panic(err)
	}
	cfgs.BindFlags(trainCmd.Flags())
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfgs, err := demo.spec.CollectConfigs()
	if err != nil {
		return err
	}
	bag, err := assembleHparams(cfgs, cmd.Flags())
	if err != nil {
		return err
	}

	module, err := core.New(demo.spec, bag, core.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info().
		Str("run_id", module.RunID()).
		Strs("hparams", bag.Keys()).
		Msg("module constructed")

	setup, err := module.ConfigureOptimizers()
	if err != nil {
		return err
	}

	train := module.TrainLoader()
	val := module.ValLoader()
	for epoch := 0; epoch < epochs; epoch++ {
		var trainLoss float64
		var steps int
		for batch := range train.Batches() {
			out, err := module.TrainingStep(batch, steps)
			if err != nil {
				return err
			}
			applyLinearGradients(demo.lin, batch, out.Pred)
			setup.Optimizer.Step()
			setup.Optimizer.ZeroGrad()
			trainLoss += float64(out.Loss)
			steps++
		}
		if setup.Scheduler != nil {
			setup.Scheduler.OnEpochEnd(epoch)
		}

		var valLoss float64
		var valSteps int
		for batch := range val.Batches() {
			out, err := module.ValidationStep(batch, valSteps)
			if err != nil {
				return err
			}
			valLoss += float64(out.Loss)
			valSteps++
		}

		logger.Info().
			Int("epoch", epoch).
			Float64("train_loss", trainLoss/float64(steps)).
			Float64("val_loss", valLoss/float64(valSteps)).
			Msg("epoch complete")
	}

	var testLoss float64
	var testSteps int
	for batch := range module.TestLoader().Batches() {
		out, err := module.TestStep(batch, testSteps)
		if err != nil {
			return err
		}
		testLoss += float64(out.Loss)
		testSteps++
	}
	logger.Info().Float64("test_loss", testLoss/float64(testSteps)).Msg("training finished")
	return nil
}

// assembleHparams layers configuration sources: declared defaults, then the
// optional YAML hparams file, then explicitly set flags.
func assembleHparams(cfgs *core.Configs, fs *pflag.FlagSet) (*core.AttributeBag, error) {
	flagBag, err := cfgs.BagFromFlags(fs)
	if err != nil {
		return nil, err
	}
	bag := core.NewBag()
	if hparamsFile != "" {
		bag, err = core.LoadBag(hparamsFile)
		if err != nil {
			return nil, err
		}
	}
	for _, name := range cfgs.Names() {
		if fs.Changed(name) || !bag.Has(name) {
			v, _ := flagBag.Get(name)
			bag.Set(name, v)
		}
	}
	return bag, nil
}

// applyLinearGradients computes closed-form MSE gradients for a linear
// layer and stores them on its parameters. The library owns no autodiff;
// the driver supplies gradients.
func applyLinearGradients(lin *nn.Linear, batch core.Batch, pred [][]float32) {
	in := lin.InFeatures()
	out := lin.OutFeatures()
	gradW := make([]float32, in*out)
	gradB := make([]float32, out)

	scale := 2.0 / float32(len(batch.X)*out)
	for b := range batch.X {
		for o := 0; o < out; o++ {
			d := scale * (pred[b][o] - batch.Y[b][o])
			gradB[o] += d
			for j := 0; j < in; j++ {
				gradW[o*in+j] += d * batch.X[b][j]
			}
		}
	}

	lin.Weight().SetGrad(gradW)
	lin.Bias().SetGrad(gradB)
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
