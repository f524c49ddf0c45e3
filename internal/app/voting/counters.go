package voting

import (
	"fmt"

	"github.com/campusvote/halalan/internal/domain"
)

// CounterKeyElectionTotal is the live counter of ballots cast in an
// election.
func CounterKeyElectionTotal(electionID domain.ElectionID) string {
	return fmt.Sprintf("election:%s:total", electionID)
}

// CounterKeyCandidate is the live counter of votes for one candidate.
func CounterKeyCandidate(electionID domain.ElectionID, candidateID domain.ApplicationID) string {
	return fmt.Sprintf("election:%s:candidate:%s", electionID, candidateID)
}
