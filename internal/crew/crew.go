// Package crew handles wage payment, morale, desertion, and the
// efficiency multiplier crew state feeds back into shipping speed. The
// morale decay/recovery/clamp shape is the teacher's NeedsState/
// DecayNeeds/clampNeeds idiom (internal/agents/behavior.go)
// transplanted from per-agent needs onto a ship's aggregate crew.
package crew

import (
	"math"

	"github.com/brinewake/archipelago/internal/config"
)

// PayWages debits wages from the ship's cash for the tick, destroying
// the paid amount (SPEC_FULL.md §9 decision 1: wages are a sink, not a
// transfer — crew are not agents with their own wallet in this model).
// If the ship can't afford full wages, morale takes an unpaid-tick hit
// instead of crew going hungry mid-tick.
func PayWages(cash *float64, unpaidTicks *int, crewCount int, wageRate float64) (paid float64, destroyed float64) {
	if crewCount <= 0 {
		*unpaidTicks = 0
		return 0, 0
	}
	owed := float64(crewCount) * wageRate
	if *cash >= owed {
		*cash -= owed
		*unpaidTicks = 0
		return owed, owed
	}
	paid = *cash
	*cash = 0
	*unpaidTicks++
	return paid, paid
}

// minOperatingCrew returns the minimum headcount a ship needs to
// function at all (spec §4.8): below it, the ship has no effective
// efficiency regardless of morale.
func minOperatingCrew(crewCapacity int, cfg config.Crew) int {
	return int(math.Ceil(float64(crewCapacity) * cfg.MinCrewRatio))
}

// UpdateMorale applies the tick's morale forces, clamped to [0,1]:
// baseline unpaid-wage decay (doubled once unpaid ticks pass half the
// desertion threshold), at-sea penalty, low-crew penalty below half
// capacity, a harsher penalty below minimum operating crew, and
// recovery when fully paid — recovery runs faster while docked, since
// crew can rest and resupply at an island (spec §4.8).
func UpdateMorale(morale float64, unpaidTicks, crewCount, crewCapacity int, atSea bool, cfg config.Crew) float64 {
	if unpaidTicks > 0 {
		decay := cfg.MoraleDecayRate
		if cfg.UnpaidDesertionThreshold > 0 && unpaidTicks >= cfg.UnpaidDesertionThreshold/2 {
			decay *= 2
		}
		morale -= decay
	} else {
		recovery := cfg.MoraleRecoveryRate
		if !atSea {
			recovery += 0.5 * cfg.MoraleRecoveryRate
		}
		morale += recovery * (1 - morale)
	}

	if atSea {
		morale -= cfg.AtSeaMoralePenalty
	}
	if crewCapacity > 0 && crewCount < crewCapacity/2 {
		morale -= cfg.LowCrewMoralePenalty
	}
	if crewCount < minOperatingCrew(crewCapacity, cfg) {
		morale -= 2 * cfg.MoraleDecayRate
	}

	if morale < 0 {
		return 0
	}
	if morale > 1 {
		return 1
	}
	return morale
}

// CheckDesertion returns the number of crew who desert this tick.
// Desertion triggers once morale falls under the desertion-morale
// threshold OR unpaid ticks reach the unpaid-desertion threshold; when
// two or more of those conditions hold at once (including running
// below minimum operating crew), the desertion rate doubles, since a
// ship in multiple kinds of trouble bleeds crew faster than one in a
// single kind (spec §4.8).
func CheckDesertion(crewCount, crewCapacity int, morale float64, unpaidTicks int, dt float64, cfg config.Crew) int {
	if crewCount <= 0 {
		return 0
	}
	belowMorale := morale < cfg.DesertionMoraleThreshold
	belowUnpaid := cfg.UnpaidDesertionThreshold > 0 && unpaidTicks >= cfg.UnpaidDesertionThreshold
	belowMinCrew := crewCount < minOperatingCrew(crewCapacity, cfg)
	if !belowMorale && !belowUnpaid {
		return 0
	}

	conditions := 0
	if belowMorale {
		conditions++
	}
	if belowUnpaid {
		conditions++
	}
	if belowMinCrew {
		conditions++
	}
	multiplier := 1.0
	if conditions >= 2 {
		multiplier = 2.0
	}

	deserters := int(math.Floor(float64(crewCount) * cfg.DesertionRate * multiplier * dt))
	if deserters > crewCount {
		deserters = crewCount
	}
	return deserters
}

// Efficiency returns the crew-driven multiplier shipping applies to a
// ship's effective speed: zero below minimum operating crew (the ship
// cannot get underway at all), otherwise scaling from 0.5 at minimum
// staffing to 1.0 at full capacity, with a bonus above the high-morale
// threshold and a penalty below the low-morale threshold.
func Efficiency(crewCount, crewCapacity int, morale float64, cfg config.Crew) float64 {
	minCrew := minOperatingCrew(crewCapacity, cfg)
	if crewCount < minCrew {
		return 0
	}
	if crewCapacity <= 0 {
		return 1.0
	}
	staffing := 1.0
	if span := crewCapacity - minCrew; span > 0 {
		staffing = float64(crewCount-minCrew) / float64(span)
	}
	if staffing > 1 {
		staffing = 1
	}
	eff := 0.5 + 0.5*staffing
	if morale > cfg.EfficiencyBonusMoraleThreshold {
		eff *= 1 + cfg.EfficiencyBonus
	}
	if morale < cfg.EfficiencyPenaltyMoraleThreshold {
		eff *= 1 - cfg.EfficiencyPenalty
	}
	return eff
}
