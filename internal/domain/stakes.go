package domain

import "math"

// StakeRecommendation es el stake recomendado para un resultado concreto.
type StakeRecommendation struct {
	OutcomeName     string  `json:"outcome_name"`
	Bookmaker       string  `json:"bookmaker"`
	Odds            float64 `json:"odds"`
	Stake           float64 `json:"stake"`
	PotentialReturn float64 `json:"potential_return"`
}

// StakePlan es el reparto de un stake total entre todos los resultados de
// una oportunidad. Invariante: stake × odds es igual (salvo redondeo a 2
// decimales) en todos los resultados del plan.
type StakePlan struct {
	TotalStake       float64               `json:"total_stake"`
	GuaranteedProfit float64               `json:"guaranteed_profit"`
	ProfitPercentage float64               `json:"profit_percentage"`
	Stakes           []StakeRecommendation `json:"stakes"`
}

// CalculateStakes calcula el reparto óptimo de totalStake entre los resultados:
//
//	stake_i = totalStake × (1/odds_i) / Σ(1/odds)
//
// Con ese reparto, stake_i × odds_i = totalStake / Σ(1/odds) para todo i —
// el retorno queda igualado gane quien gane.
//
// Entrada degenerada (sin resultados o totalStake <= 0) devuelve un plan a
// cero con stakes vacíos; no es un error. El redondeo a 2 decimales se aplica
// solo en la salida, nunca sobre las sumas intermedias. Resultados con nombre
// duplicado se tratan como slots de reparto separados — colapsarlos es
// trabajo del normalizador, no de esta función.
func CalculateStakes(outcomes []OutcomeQuote, totalStake float64) StakePlan {
	if len(outcomes) == 0 || totalStake <= 0 {
		return StakePlan{
			TotalStake: totalStake,
			Stakes:     []StakeRecommendation{},
		}
	}

	totalImplied := 0.0
	for _, o := range outcomes {
		totalImplied += o.ImpliedProbability()
	}

	stakes := make([]StakeRecommendation, 0, len(outcomes))
	guaranteedReturn := 0.0

	for i, o := range outcomes {
		stake := 0.0
		if totalImplied > 0 {
			stake = totalStake * o.ImpliedProbability() / totalImplied
		}
		potentialReturn := stake * o.Price
		if i == 0 {
			guaranteedReturn = potentialReturn
		}

		stakes = append(stakes, StakeRecommendation{
			OutcomeName:     o.Name,
			Bookmaker:       o.Bookmaker,
			Odds:            o.Price,
			Stake:           round2(stake),
			PotentialReturn: round2(potentialReturn),
		})
	}

	if guaranteedReturn == 0 {
		guaranteedReturn = totalStake
	}
	guaranteedProfit := guaranteedReturn - totalStake

	return StakePlan{
		TotalStake:       totalStake,
		GuaranteedProfit: round2(guaranteedProfit),
		ProfitPercentage: round2(guaranteedProfit / totalStake * 100),
		Stakes:           stakes,
	}
}

// CalculateProfit devuelve solo el beneficio garantizado del reparto óptimo.
func CalculateProfit(outcomes []OutcomeQuote, totalStake float64) float64 {
	return CalculateStakes(outcomes, totalStake).GuaranteedProfit
}

// round2 redondea a 2 decimales para display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
