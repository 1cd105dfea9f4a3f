package txflow

import (
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// Status is the canonical lifecycle status of a submitted transaction.
type Status int

const (
	StatusReceived Status = iota
	StatusAcceptedL2
	StatusAcceptedL1
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusReceived:
		return "RECEIVED"
	case StatusAcceptedL2:
		return "ACCEPTED_L2"
	case StatusAcceptedL1:
		return "ACCEPTED_L1"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further status change is possible.
func (s Status) Terminal() bool {
	return s == StatusAcceptedL2 || s == StatusAcceptedL1 || s == StatusRejected
}

// Accepted reports whether s is one of the accepted statuses.
func (s Status) Accepted() bool {
	return s == StatusAcceptedL2 || s == StatusAcceptedL1
}

// Classify maps one receipt observation to a Status. Rules apply in order:
//
//  1. absent or pending shape          -> RECEIVED
//  2. execution REVERTED               -> REJECTED
//  3. ACCEPTED_ON_L2 and SUCCEEDED     -> ACCEPTED_L2
//  4. ACCEPTED_ON_L2 and not SUCCEEDED -> REJECTED
//  5. ACCEPTED_ON_L1                   -> ACCEPTED_L1
//  6. anything else                    -> RECEIVED
func Classify(obs starknet.Observation) Status {
	if obs.Shape != starknet.ShapeInvoke || obs.Receipt == nil {
		return StatusReceived
	}
	r := obs.Receipt

	if r.ExecutionStatus == starknet.ExecutionReverted {
		return StatusRejected
	}
	if r.FinalityStatus == starknet.FinalityAcceptedOnL2 {
		if r.ExecutionStatus == starknet.ExecutionSucceeded {
			return StatusAcceptedL2
		}
		return StatusRejected
	}
	if r.FinalityStatus == starknet.FinalityAcceptedOnL1 {
		return StatusAcceptedL1
	}
	return StatusReceived
}
