// Package shipyard advances build orders and delivers finished ships.
// The stepped-progress-then-materialize-on-completion shape is grounded
// on the teacher's infrastructure growth idiom
// (processInfrastructureGrowth: accumulate a progress value each tick,
// and once it crosses a threshold, step the owning entity's level) and
// its birth idiom in processPopulation (accumulate, then on threshold
// materialize a new entity into the owning collection).
package shipyard

import (
	"fmt"

	"github.com/brinewake/archipelago/internal/worldstate"
)

// ErrInsufficientMaterials is returned when an island lacks the timber
// or tools a blueprint requires to start a build.
var ErrInsufficientMaterials = fmt.Errorf("shipyard: insufficient materials")

// ErrShipyardBusy is returned when a build order is requested on a
// shipyard that already has an active build.
var ErrShipyardBusy = fmt.Errorf("shipyard: build already in progress")

// StartBuild consumes the blueprint's material cost from island
// inventory and queues the build.
func StartBuild(sy *worldstate.ShipyardState, isl *worldstate.IslandState, bp worldstate.Blueprint, ownerID string) error {
	if sy.Active != nil {
		return ErrShipyardBusy
	}
	if isl.Inventory["timber"] < bp.TimberCost || isl.Inventory["tools"] < bp.ToolsCost {
		return ErrInsufficientMaterials
	}
	isl.Inventory["timber"] -= bp.TimberCost
	isl.Inventory["tools"] -= bp.ToolsCost
	sy.Active = &worldstate.BuildOrder{Blueprint: bp, OwnerID: ownerID}
	return nil
}

// Advance steps a shipyard's active build by one tick. If laborAvailable
// is false (no workers assigned, e.g. the island's crafting labor share
// collapsed) the build stalls rather than losing progress. It returns
// the completed order, or nil if none completed this tick.
func Advance(sy *worldstate.ShipyardState, laborAvailable bool) *worldstate.BuildOrder {
	order := sy.Active
	if order == nil {
		return nil
	}
	if !laborAvailable {
		order.Stalled = true
		return nil
	}
	order.Stalled = false
	if order.Blueprint.BuildTicks <= 0 {
		order.Progress = 1
	} else {
		order.Progress += 1.0 / order.Blueprint.BuildTicks
	}
	if order.Progress < 1 {
		return nil
	}
	sy.Active = nil
	return order
}

// Deliver materializes a finished build order into a new ship docked
// at the shipyard's island, owned by the build's requester.
func Deliver(order *worldstate.BuildOrder, shipID string, islandID string) *worldstate.ShipState {
	bp := order.Blueprint
	return &worldstate.ShipState{
		ID:            shipID,
		Name:          fmt.Sprintf("%s-%s", bp.ID, shipID[:8]),
		OwnerAgentID:  order.OwnerID,
		CargoCapacity: bp.CargoCapacity,
		BaseSpeed:     bp.BaseSpeed,
		Cargo:         map[worldstate.GoodID]float64{},
		Location:      worldstate.ShipLocation{Kind: worldstate.LocationAtIsland, IslandID: islandID},
		Condition:     1.0,
		Crew: worldstate.CrewState{
			Count:    bp.CrewCapacity,
			Capacity: bp.CrewCapacity,
			Morale:   1.0,
		},
	}
}
