package network

// WorldModelParams pairs the observation encoder with the latent transition
// model.
type WorldModelParams struct {
	Representation Model
	Dynamics       Dynamics
}

func (w WorldModelParams) Clone() WorldModelParams {
	return WorldModelParams{
		Representation: w.Representation.Clone(),
		Dynamics:       w.Dynamics.Clone(),
	}
}

// Parameters returns the world-model parameter groups in canonical order:
// representation, dynamics torso, embedding head, reward head. Gradients and
// optimizer moments follow the same order.
func (w *WorldModelParams) Parameters() []*Parameter {
	return []*Parameter{
		&w.Representation.Parameter,
		&w.Dynamics.Torso.Parameter,
		&w.Dynamics.EmbeddingHead.Parameter,
		&w.Dynamics.RewardHead.Parameter,
	}
}

func (w *WorldModelParams) NewGradZerosLike() GradBuffers {
	params := w.Parameters()
	gs := make(GradBuffers, len(params))
	for i, p := range params {
		gs[i] = p.NewGradZerosLike()
	}
	return gs
}

type PredictionParams struct {
	Actor  Model
	Critic Model
}

func (p PredictionParams) Clone() PredictionParams {
	return PredictionParams{
		Actor:  p.Actor.Clone(),
		Critic: p.Critic.Clone(),
	}
}

// MZParams is the complete learnable state, replaced subtree-by-subtree after
// each optimization step.
type MZParams struct {
	Prediction PredictionParams
	WorldModel WorldModelParams
}

func (m MZParams) Clone() MZParams {
	return MZParams{
		Prediction: m.Prediction.Clone(),
		WorldModel: m.WorldModel.Clone(),
	}
}

// AllParameters returns every parameter group in a fixed order: the world
// model groups, then actor, then critic.
func (m *MZParams) AllParameters() []*Parameter {
	groups := m.WorldModel.Parameters()
	groups = append(groups, &m.Prediction.Actor.Parameter, &m.Prediction.Critic.Parameter)
	return groups
}
