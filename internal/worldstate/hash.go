package worldstate

import (
	"encoding/json"

	"github.com/brinewake/archipelago/internal/rng"
)

// canonicalView is the ordered, JSON-stable projection of WorldState
// that Hash feeds to the fingerprint function. Plain maps keyed by
// string already marshal in sorted-key order via encoding/json; the
// slice fields here exist only for the non-string-keyed or otherwise
// order-sensitive parts (events, and any field whose iteration order
// is not implied by its own map key).
type canonicalView struct {
	Tick     uint64                     `json:"tick"`
	RngState uint64                     `json:"rng_state"`
	Islands  map[string]*IslandState    `json:"islands"`
	Ships    map[string]*ShipState      `json:"ships"`
	Shipyards map[string]*ShipyardState `json:"shipyards"`
	Events   []WorldEvent               `json:"events"`
	Agents   map[string]*AgentState     `json:"agents"`
	Economy  EconomyMetrics             `json:"economy"`
}

// Hash computes the canonical fingerprint used by property 1
// (determinism): two runs seeded identically must produce the same
// sequence of per-tick hashes. Agent private memory (strategy history,
// trade ledgers) is intentionally excluded — it lives outside
// WorldState entirely, per SPEC_FULL.md §3/§9.
func (w *WorldState) Hash() (uint64, error) {
	view := canonicalView{
		Tick:      w.Tick,
		RngState:  w.RngState,
		Islands:   w.Islands,
		Ships:     w.Ships,
		Shipyards: w.Shipyards,
		Events:    w.SortedEvents(),
		Agents:    w.Agents,
		Economy:   w.Economy,
	}
	return rng.Fingerprint(func() ([]byte, error) {
		return json.Marshal(view)
	})
}
