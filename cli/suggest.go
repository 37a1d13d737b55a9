package cli

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

var commandNames = []string{
	"mark", "unmark", "tick", "status", "targets", "workers", "stacks",
	"flag", "unflag", "destroy", "deconstruct", "config", "help",
}

// unknownCommand builds the response for an unrecognized command,
// suggesting the closest known command within edit distance.
func (s *Session) unknownCommand(cmd string) string {
	if best, ok := closest(cmd, commandNames); ok {
		return fmt.Sprintf("Unknown command %q. Did you mean %q? (help for a list)", cmd, best)
	}
	return fmt.Sprintf("Unknown command %q. Type help for a list.", cmd)
}

// unknownEntity builds the response for an unknown entity ID, suggesting
// the closest existing one.
func (s *Session) unknownEntity(entityID string) string {
	if best, ok := closest(entityID, s.entityIDs()); ok {
		return fmt.Sprintf("No entity %q. Did you mean %q?", entityID, best)
	}
	return fmt.Sprintf("No entity %q.", entityID)
}

// closest returns the candidate with the smallest edit distance, when
// that distance is small enough relative to the candidate's length.
func closest(input string, candidates []string) (string, bool) {
	best := ""
	bestDist := -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(input, cand)
		if dist > distanceLimit(len(cand)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best, bestDist != -1
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
