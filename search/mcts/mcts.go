package mcts

import (
	"math"
	"math/rand"

	orand "github.com/sw965/omw/math/rand"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/skylooop/stoix/mlfuncs"
	"github.com/skylooop/stoix/network"
	"github.com/skylooop/stoix/search"
)

// PUCB is the per-edge visit statistic.
type PUCB struct {
	AccumReward float64
	Trial       int
	P           float64
}

func (p *PUCB) AverageReward() float64 {
	return p.AccumReward / float64(p.Trial+1)
}

func (p *PUCB) Get(c float64, totalTrial int) float64 {
	v := p.AverageReward()
	return v + c*p.P*math.Sqrt(float64(totalTrial))/float64(p.Trial+1)
}

// Node is a latent-space tree node. Children are expanded lazily through the
// recurrent function; the real environment is never touched.
type Node struct {
	Embedding blas32.Vector
	Value     float64
	Priors    []float32
	Stats     []PUCB
	Rewards   []float64
	Children  []*Node
}

func newNode(priors []float32, value float64) *Node {
	n := len(priors)
	node := &Node{
		Value:    value,
		Priors:   priors,
		Stats:    make([]PUCB, n),
		Rewards:  make([]float64, n),
		Children: make([]*Node, n),
	}
	for i, p := range priors {
		node.Stats[i].P = float64(p)
	}
	return node
}

func (node *Node) totalTrial() int {
	total := 0
	for i := range node.Stats {
		total += node.Stats[i].Trial
	}
	return total
}

func (node *Node) maxStatKeys(c float64) []int {
	total := node.totalTrial()
	max := math.Inf(-1)
	for i := range node.Stats {
		if y := node.Stats[i].Get(c, total); y > max {
			max = y
		}
	}
	ks := make([]int, 0, len(node.Stats))
	for i := range node.Stats {
		if node.Stats[i].Get(c, total) == max {
			ks = append(ks, i)
		}
	}
	return ks
}

// Runner runs bounded PUCT simulations over the latent transition model.
type Runner struct {
	Recurrent   search.RecurrentFn
	Simulations int
	MaxDepth    int
	C           float64
	GumbelRoot  bool
	GumbelScale float64
}

type edge struct {
	node   *Node
	action int
}

func (r *Runner) Search(params *network.MZParams, rng *rand.Rand, root search.Root) (search.Output, error) {
	n := len(root.PriorLogits)
	priorLogits := root.PriorLogits
	if r.GumbelRoot {
		noisy := make([]float32, n)
		for i, l := range priorLogits {
			g := -math.Log(-math.Log(rng.Float64() + 1e-12))
			noisy[i] = l + float32(r.GumbelScale*g)
		}
		priorLogits = noisy
	}
	rootNode := newNode(mlfuncs.Softmax(priorLogits), float64(root.Value))
	rootNode.Embedding = root.Embedding

	rootValueSum := rootNode.Value
	for sim := 0; sim < r.Simulations; sim++ {
		node := rootNode
		path := make([]edge, 0, r.MaxDepth)
		var leafValue float64

		for {
			action := orand.Choice(node.maxStatKeys(r.C), rng)
			path = append(path, edge{node: node, action: action})

			child := node.Children[action]
			if child == nil {
				out, err := r.Recurrent(params, rng, action, node.Embedding)
				if err != nil {
					return search.Output{}, err
				}
				child = newNode(mlfuncs.Softmax(out.PriorLogits), float64(out.Value))
				child.Embedding = out.NextEmbedding
				node.Children[action] = child
				node.Rewards[action] = float64(out.Reward)
				leafValue = child.Value
				break
			}
			if len(path) >= r.MaxDepth {
				leafValue = child.Value
				break
			}
			node = child
		}

		// Backup with discount 1 inside simulation.
		g := leafValue
		for i := len(path) - 1; i >= 0; i-- {
			e := path[i]
			g = e.node.Rewards[e.action] + g
			e.node.Stats[e.action].AccumReward += g
			e.node.Stats[e.action].Trial++
		}
		rootValueSum += g
	}

	total := rootNode.totalTrial()
	weights := make([]float32, n)
	for i := range rootNode.Stats {
		weights[i] = float32(rootNode.Stats[i].Trial) / float32(total)
	}

	var action int
	if r.GumbelRoot {
		action = orand.Choice(maxTrialKeys(rootNode), rng)
	} else {
		action = orand.IntByWeight(weights, rng)
	}

	return search.Output{
		Action:        action,
		ActionWeights: weights,
		RootValue:     float32(rootValueSum / float64(r.Simulations+1)),
	}, nil
}

func maxTrialKeys(node *Node) []int {
	max := -1
	for i := range node.Stats {
		if node.Stats[i].Trial > max {
			max = node.Stats[i].Trial
		}
	}
	ks := make([]int, 0, len(node.Stats))
	for i := range node.Stats {
		if node.Stats[i].Trial == max {
			ks = append(ks, i)
		}
	}
	return ks
}
