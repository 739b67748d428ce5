package simulator

import (
	"context"
	"fmt"

	"github.com/okian/birdie/internal/domain/resolve"
)

// Report summarizes a finished simulation.
type Report struct {
	Devices       int
	EventsTotal   int
	Discrepancies int
	Converged     bool
	// Failures lists convergence violations; empty on success.
	Failures []string
}

// verify checks that every device holds the same event log, resolves every
// key to the same stroke count, and that discrepancies only exist when the
// scenario injected disagreements.
func (s *Simulator) verify(ctx context.Context, expectedDisagreements int) (Report, error) {
	report := Report{Devices: len(s.devices), Converged: true}
	if len(s.devices) == 0 {
		return report, nil
	}

	reference := s.devices[0]
	report.EventsTotal = reference.Events.Count(ctx)

	for _, d := range s.devices[1:] {
		if n := d.Events.Count(ctx); n != report.EventsTotal {
			report.Converged = false
			report.Failures = append(report.Failures,
				fmt.Sprintf("%s holds %d events, %s holds %d", d.ID, n, reference.ID, report.EventsTotal))
		}
	}

	for hole := 1; hole <= s.round.HoleCount; hole++ {
		for _, playerID := range s.round.PlayerIDs {
			refEvents, err := reference.Events.ByKey(ctx, s.round.ID, playerID, hole)
			if err != nil {
				return report, err
			}
			refLeaf, ok := resolve.Current(playerID, hole, refEvents)
			if !ok {
				report.Converged = false
				report.Failures = append(report.Failures,
					fmt.Sprintf("no resolved score for player %s hole %d", playerID, hole))
				continue
			}
			for _, d := range s.devices[1:] {
				events, err := d.Events.ByKey(ctx, s.round.ID, playerID, hole)
				if err != nil {
					return report, err
				}
				leaf, ok := resolve.Current(playerID, hole, events)
				if !ok || leaf.ID != refLeaf.ID {
					report.Converged = false
					report.Failures = append(report.Failures,
						fmt.Sprintf("%s resolves player %s hole %d differently", d.ID, playerID, hole))
				}
			}
		}
	}

	for _, d := range s.devices {
		list, err := d.Discreps.ByRound(ctx, s.round.ID)
		if err != nil {
			return report, err
		}
		if len(list) > report.Discrepancies {
			report.Discrepancies = len(list)
		}
	}
	if expectedDisagreements == 0 && report.Discrepancies > 0 {
		report.Converged = false
		report.Failures = append(report.Failures,
			fmt.Sprintf("%d discrepancies detected with no injected disagreements", report.Discrepancies))
	}

	return report, nil
}
