// NeedState — the four bounded drives plus the wallet.
package agents

// NeedState tracks an agent's internal drives. Hunger and SocialDeficit
// rise over time (higher = worse); Energy and WorkSat fall over time
// (higher = better). All four clamp to [0,100] after every mutation.
type NeedState struct {
	Hunger        float64 `json:"hunger"`
	Energy        float64 `json:"energy"`
	SocialDeficit float64 `json:"social_deficit"`
	WorkSat       float64 `json:"work_sat"`

	// Wallet is unbounded above. It clamps at zero unless the run was
	// configured to permit debt.
	Wallet float64 `json:"wallet"`
}

// Clamp forces every bounded field back into [0,100]. allowDebt controls
// whether the wallet may stay negative.
func (n *NeedState) Clamp(allowDebt bool) {
	n.Hunger = clamp100(n.Hunger)
	n.Energy = clamp100(n.Energy)
	n.SocialDeficit = clamp100(n.SocialDeficit)
	n.WorkSat = clamp100(n.WorkSat)
	if !allowDebt && n.Wallet < 0 {
		n.Wallet = 0
	}
}

// Decay advances the passage of time: hunger and social deficit creep up,
// energy and work satisfaction wind down. Energy is spared while sleeping.
func (n *NeedState) Decay(hungerRise, energyFall, socialRise, workSatFall float64, sleeping bool) {
	n.Hunger += hungerRise
	if !sleeping {
		n.Energy -= energyFall
	}
	n.SocialDeficit += socialRise
	n.WorkSat -= workSatFall
	n.Clamp(false)
}

// OverallSatisfaction maps the four needs onto [0,1], deficits inverted so
// that 1 means fully content.
func (n *NeedState) OverallSatisfaction() float64 {
	return ((100 - n.Hunger) + n.Energy + (100 - n.SocialDeficit) + n.WorkSat) / 400
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
