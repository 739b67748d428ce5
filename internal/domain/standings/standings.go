// Package standings derives ranked player standings from the event log.
//
// Standings are never persisted or patched: every trigger recomputes them
// wholesale from the round's events via leaf resolution, so all devices that
// share an event set agree on the result.
package standings

import (
	"sort"

	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/resolve"
)

// DefaultPar is assumed for holes missing from the par map.
const DefaultPar = 3

// NameResolver maps a player id string to a display name.
type NameResolver func(playerID string) string

// Compute aggregates the round's events into a ranked standing list using
// DefaultPar for holes missing from the par map.
func Compute(round model.Round, events []model.ScoreEvent, pars map[int]int, resolveName NameResolver) []model.Standing {
	return ComputeWithDefault(round, events, pars, DefaultPar, resolveName)
}

// ComputeWithDefault aggregates the round's events into a ranked standing
// list, assuming defaultPar for holes missing from the par map.
// For each participant it sums leaf stroke counts and pars across holes with
// at least one resolved score. Sorted ascending by score relative to par,
// tie-broken alphabetically by display name; tied scores share a 1-based
// position. Empty input yields an empty list, never an error.
func ComputeWithDefault(round model.Round, events []model.ScoreEvent, pars map[int]int, defaultPar int, resolveName NameResolver) []model.Standing {
	if defaultPar < 1 {
		defaultPar = DefaultPar
	}
	participants := round.Participants()
	out := make([]model.Standing, 0, len(participants))
	for _, playerID := range participants {
		name := displayName(playerID, resolveName)
		totalStrokes, totalPar, played := 0, 0, 0
		for hole := 1; hole <= round.HoleCount; hole++ {
			leaf, ok := resolve.Current(playerID, hole, events)
			if !ok {
				continue
			}
			totalStrokes += leaf.StrokeCount
			totalPar += parFor(pars, hole, defaultPar)
			played++
		}
		out = append(out, model.Standing{
			PlayerID:           playerID,
			PlayerName:         name,
			TotalStrokes:       totalStrokes,
			HolesPlayed:        played,
			ScoreRelativeToPar: totalStrokes - totalPar,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScoreRelativeToPar != out[j].ScoreRelativeToPar {
			return out[i].ScoreRelativeToPar < out[j].ScoreRelativeToPar
		}
		return out[i].PlayerName < out[j].PlayerName
	})

	// 1-based positions; ties share the position of the first tied entry.
	for i := range out {
		switch {
		case i == 0:
			out[i].Position = 1
		case out[i].ScoreRelativeToPar == out[i-1].ScoreRelativeToPar:
			out[i].Position = out[i-1].Position
		default:
			out[i].Position = i + 1
		}
	}
	return out
}

// PositionChange records a player's rank movement between two standings.
type PositionChange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// PositionChanges diffs two standings lists and returns only players whose
// position actually changed, keyed by player id. Animation and diagnostic
// metadata; never persisted.
func PositionChanges(previous, next []model.Standing) map[string]PositionChange {
	prevByID := make(map[string]int, len(previous))
	for _, s := range previous {
		prevByID[s.PlayerID] = s.Position
	}
	changes := make(map[string]PositionChange)
	for _, s := range next {
		prev, ok := prevByID[s.PlayerID]
		if !ok || prev == s.Position {
			continue
		}
		changes[s.PlayerID] = PositionChange{From: prev, To: s.Position}
	}
	return changes
}

func displayName(playerID string, resolveName NameResolver) string {
	if resolveName != nil {
		return resolveName(playerID)
	}
	if name, ok := model.GuestName(playerID); ok {
		return name
	}
	return playerID
}

func parFor(pars map[int]int, hole, fallback int) int {
	if par, ok := pars[hole]; ok {
		return par
	}
	return fallback
}
