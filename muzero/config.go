package muzero

import "fmt"

const (
	SearchMethodMuZero = "muzero"
	SearchMethodGumbel = "gumbel"
)

type Config struct {
	Seed int64

	// Parallelism axes. NumEnvs rows advance in lockstep inside each of
	// NumReplicas identical replicas.
	NumEnvs     int
	NumReplicas int

	RolloutLength int
	WarmupSteps   int
	Epochs        int
	NumUpdates    int
	NumEvaluation int

	BufferSize           int
	BatchSize            int
	SampleSequenceLength int

	NSteps      int
	Gamma       float32
	EntCoef     float32
	VfCoef      float32
	MaxGradNorm float32

	WorldModelLR float32
	ActorLR      float32
	CriticLR     float32

	SearchMethod   string
	NumSimulations int
	MaxDepth       int
	SearchC        float64
	GumbelScale    float64

	EmbedDim            int
	RepresentationTorso []int
	DynamicsTorso       []int
	ActorTorso          []int
	CriticTorso         []int
	Alpha               float32
}

func (c *Config) NumUpdatesPerEval() int {
	return c.NumUpdates / c.NumEvaluation
}

// Validate is called before any stateful resource is built. Everything it
// rejects is a configuration error, not a runtime failure.
func (c *Config) Validate() error {
	switch c.SearchMethod {
	case SearchMethodMuZero, SearchMethodGumbel:
	default:
		return fmt.Errorf("search method %q not supported", c.SearchMethod)
	}
	if c.NumUpdates <= c.NumEvaluation {
		return fmt.Errorf("number of updates (%d) must exceed number of evaluations (%d)", c.NumUpdates, c.NumEvaluation)
	}
	if c.NumEnvs <= 0 || c.NumReplicas <= 0 {
		return fmt.Errorf("need at least one environment row and one replica, got %d and %d", c.NumEnvs, c.NumReplicas)
	}
	if c.RolloutLength <= 0 || c.Epochs <= 0 {
		return fmt.Errorf("rollout length (%d) and epochs (%d) must be positive", c.RolloutLength, c.Epochs)
	}
	if c.SampleSequenceLength < 2 {
		return fmt.Errorf("sample sequence length must be at least 2 to form bootstrap targets, got %d", c.SampleSequenceLength)
	}
	if c.BufferSize < c.SampleSequenceLength {
		return fmt.Errorf("buffer size %d cannot hold sample sequences of length %d", c.BufferSize, c.SampleSequenceLength)
	}
	// Sampling before the buffer holds a full sequence is undefined; warmup
	// must rule it out structurally.
	if c.WarmupSteps < c.SampleSequenceLength {
		return fmt.Errorf("warmup of %d steps cannot fill the buffer past the minimum sample length %d", c.WarmupSteps, c.SampleSequenceLength)
	}
	if c.NSteps <= 0 {
		return fmt.Errorf("n-step horizon must be positive, got %d", c.NSteps)
	}
	if c.NumSimulations <= 0 || c.MaxDepth <= 0 {
		return fmt.Errorf("search needs positive simulation count (%d) and max depth (%d)", c.NumSimulations, c.MaxDepth)
	}
	if c.EmbedDim <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.EmbedDim)
	}
	return nil
}
