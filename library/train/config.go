package train

// Config collects the knobs of one fitting run.
type Config struct {
	NumEpochs        int     `desc:"number of training epochs"`
	NBatchFr         int     `desc:"simulated trials drawn per epoch; must be >= 2 for the unbiased estimator"`
	NIterationsStore int     `desc:"capacity of the forgetting buffer; 1 means no history"`
	Beta             float64 `desc:"discount factor applied per epoch of age to buffered batches; 1 means no decay"`
	LamMMD           float64 `desc:"weight of the MMD surrogate in the total loss"`
	Biased           bool    `desc:"use the biased (V-statistic) estimator instead of the unbiased U-statistic"`
	LogLikelihood    bool    `desc:"add the data negative log-likelihood to the loss, unweighted"`
	ControlVariates  bool    `desc:"inject the score control-variate gradient correction"`
	Clip             float64 `desc:"per-element gradient magnitude bound, 0 or less for no clipping"`
	NMetrics         int     `desc:"record metrics every this many epochs"`
	Verbose          bool    `desc:"print per-epoch progress"`
}

func (cf *Config) Defaults() {
	cf.NumEpochs = 20
	cf.NBatchFr = 100
	cf.NIterationsStore = 1
	cf.Beta = 1
	cf.LamMMD = 1
	cf.NMetrics = 25
}
