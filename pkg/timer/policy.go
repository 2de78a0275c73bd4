package timer

import (
	"fmt"

	"github.com/freelanceos/freelanceos/internal/config"
)

// SupersedePolicy decides what happens to a loaded session when another activity is started.
type SupersedePolicy string

const (
	// SupersedeDiscard drops the previous session without recording it.
	SupersedeDiscard SupersedePolicy = "discard"
	// SupersedeRecord stops and records the previous session first. Starting is
	// refused when recording fails.
	SupersedeRecord SupersedePolicy = "record"
)

// StopPolicy decides the timer state after a failed recording on stop.
type StopPolicy string

const (
	StopResetAlways   StopPolicy = "reset_always"
	StopKeepOnFailure StopPolicy = "keep_on_failure"
)

type ElapsedMode string

const (
	// ElapsedAccumulated counts running time only: time before the last pause plus time since resume.
	ElapsedAccumulated ElapsedMode = "accumulated"
	// ElapsedWallClock measures from the original start, paused intervals included.
	ElapsedWallClock ElapsedMode = "wall_clock"
)

type Policies struct {
	Supersede SupersedePolicy
	Stop      StopPolicy
	Elapsed   ElapsedMode
}

func DefaultPolicies() Policies {
	return Policies{
		Supersede: SupersedeDiscard,
		Stop:      StopKeepOnFailure,
		Elapsed:   ElapsedAccumulated,
	}
}

func PoliciesFromConfig(cfg config.Timer) (Policies, error) {
	policies := Policies{
		Supersede: SupersedePolicy(cfg.SupersedePolicy),
		Stop:      StopPolicy(cfg.StopPolicy),
		Elapsed:   ElapsedMode(cfg.ElapsedMode),
	}
	switch policies.Supersede {
	case SupersedeDiscard, SupersedeRecord:
	default:
		return Policies{}, fmt.Errorf("unknown timer supersede policy %q", cfg.SupersedePolicy)
	}
	switch policies.Stop {
	case StopResetAlways, StopKeepOnFailure:
	default:
		return Policies{}, fmt.Errorf("unknown timer stop policy %q", cfg.StopPolicy)
	}
	switch policies.Elapsed {
	case ElapsedAccumulated, ElapsedWallClock:
	default:
		return Policies{}, fmt.Errorf("unknown timer elapsed mode %q", cfg.ElapsedMode)
	}
	return policies, nil
}
