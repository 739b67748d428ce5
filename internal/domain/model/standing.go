package model

import "strconv"

// Standing is one player's computed position in a round. Ephemeral and
// derived: recomputed wholesale from the event log on every trigger, never
// persisted or patched incrementally.
type Standing struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	// Position is 1-based; tied scores share the same position.
	Position     int `json:"position"`
	TotalStrokes int `json:"total_strokes"`
	// HolesPlayed counts distinct holes with at least one resolved score.
	HolesPlayed int `json:"holes_played"`
	// ScoreRelativeToPar is total strokes minus total par for holes played.
	ScoreRelativeToPar int `json:"score_relative_to_par"`
}

// FormattedScore renders the relative score golf-style: "E" at par,
// otherwise signed ("-3", "+2").
func (s Standing) FormattedScore() string {
	switch {
	case s.ScoreRelativeToPar == 0:
		return "E"
	case s.ScoreRelativeToPar > 0:
		return "+" + strconv.Itoa(s.ScoreRelativeToPar)
	default:
		return strconv.Itoa(s.ScoreRelativeToPar)
	}
}
