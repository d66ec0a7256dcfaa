// Personality — immutable per-agent trait vector.
package agents

// Personality holds the four trait scalars, each in [0,1], fixed at agent
// creation. Traits are dispositions, not state: nothing in the engine
// mutates them after spawn.
type Personality struct {
	Discipline  float64 `json:"discipline"`
	Sociability float64 `json:"sociability"`
	Ambition    float64 `json:"ambition"`
	Creativity  float64 `json:"creativity"`
}

// LearningRate derives the per-agent learning rate from a base rate.
// Disciplined agents learn slower and steadier; impulsive agents swing more.
func (p Personality) LearningRate(base float64) float64 {
	return base * (1.5 - p.Discipline)
}

// ExplorationRate derives the per-agent exploration probability from a base
// rate. Creative agents deviate from the arg-max more often.
func (p Personality) ExplorationRate(base float64) float64 {
	r := base * (0.5 + p.Creativity)
	if r > 1 {
		r = 1
	}
	return r
}
