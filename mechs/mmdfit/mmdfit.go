// mmdfit fits a spike-history GLM to synthetic spike trains drawn from a
// known ground-truth model, by minimizing the MMD surrogate with the
// score-function gradient estimator.  Epoch and metric logs are saved as
// tab-separated tables.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"

	"github.com/adehad/mmd-glm/library/glm"
	"github.com/adehad/mmd-glm/library/kernels"
	"github.com/adehad/mmd-glm/library/optim"
	"github.com/adehad/mmd-glm/library/train"
)

var (
	epochs   = flag.Int("epochs", 500, "number of training epochs")
	batch    = flag.Int("batch", 100, "simulated trials per epoch")
	store    = flag.Int("store", 1, "forgetting buffer capacity in minibatches")
	beta     = flag.Float64("beta", 1, "per-epoch discount on buffered minibatches")
	lr       = flag.Float64("lr", 5e-3, "Adam learning rate")
	clip     = flag.Float64("clip", 0, "gradient value clip, 0 for none")
	biased   = flag.Bool("biased", false, "use the biased MMD estimator")
	loglik   = flag.Bool("loglik", false, "add the data log-likelihood term to the loss")
	cv       = flag.Bool("cv", false, "enable control variates")
	sigma    = flag.Float64("sigma", 2, "Gaussian kernel width")
	nmetrics = flag.Int("nmetrics", 25, "record metrics every this many epochs")
	ndata    = flag.Int("ndata", 200, "number of data trials to generate")
	epcFile  = flag.String("epclog", "mmdfit_epc.tsv", "epoch log output file")
	metFile  = flag.String("metlog", "mmdfit_metrics.tsv", "metrics log output file")
	quiet    = flag.Bool("quiet", false, "suppress progress output")
)

func main() {
	flag.Parse()

	// 200 ms of 1 ms bins
	dt := 0.001
	t := make([]float64, 200)
	for i := range t {
		t[i] = float64(i) * dt
	}

	// ground truth: tonic drive with a refractory spike-history filter
	truth := glm.New(3.0, nil, glm.NewRaisedCosine(3, 0.02), glm.Exp)
	truth.EtaCoefs = []float64{-6, -2, -0.5}
	maskData := truth.Sample(t, nil, *ndata)

	model := glm.New(2.0, nil, glm.NewRaisedCosine(3, 0.02), glm.Exp)

	cfg := train.Config{}
	cfg.Defaults()
	cfg.NumEpochs = *epochs
	cfg.NBatchFr = *batch
	cfg.NIterationsStore = *store
	cfg.Beta = *beta
	cfg.Biased = *biased
	cfg.LogLikelihood = *loglik
	cfg.ControlVariates = *cv
	cfg.Clip = *clip
	cfg.NMetrics = *nmetrics
	cfg.Verbose = !*quiet

	tr := train.New(model, cfg)
	tr.Kernel = kernels.Gaussian(*sigma)
	adam := optim.NewAdam(tr.Theta, tr.Grad, *lr)
	tr.Optim = adam
	tr.Sched = optim.NewStepLR(&adam.Lr, 200, 0.5)
	tr.Metrics = spikeCountMetrics

	res, err := tr.Fit(t, maskData, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("final loss %.6f\n", res.Loss[len(res.Loss)-1])
	fmt.Printf("truth  params %v\n", truth.Params())
	fmt.Printf("fitted params %v\n", model.Params())

	if err := saveEpochLog(*epcFile, res); err != nil {
		log.Fatal(err)
	}
	if err := res.Metrics.SaveTSV(*metFile); err != nil {
		log.Fatal(err)
	}
}

// spikeCountMetrics reports mean spikes per trial on both sides, a quick
// check that the fitted model is in the right firing regime.
func spikeCountMetrics(md train.Model, t []float64, maskData, maskSim *etensor.Float64) map[string]float64 {
	return map[string]float64{
		"nspk_data":  meanCount(maskData),
		"nspk_model": meanCount(maskSim),
	}
}

func meanCount(mask *etensor.Float64) float64 {
	sum := 0.0
	for _, v := range mask.Values {
		sum += v
	}
	return sum / float64(mask.Dim(1))
}

func saveEpochLog(fnm string, res train.Result) error {
	sch := etable.Schema{
		{Name: "Epoch", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "Loss", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
	}
	if len(res.NLL) > 0 {
		sch = append(sch, etable.Column{Name: "NLL", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil})
	}
	dt := &etable.Table{}
	dt.SetFromSchema(sch, len(res.Loss))
	for i, v := range res.Loss {
		dt.SetCellFloat("Epoch", i, float64(i))
		dt.SetCellFloat("Loss", i, v)
		if len(res.NLL) > 0 {
			dt.SetCellFloat("NLL", i, res.NLL[i])
		}
	}
	f, err := os.Create(fnm)
	if err != nil {
		return err
	}
	defer f.Close()
	dt.WriteCSVHeaders(f, etable.Tab)
	for row := 0; row < dt.Rows; row++ {
		dt.WriteCSVRow(f, row, etable.Tab)
	}
	return nil
}
