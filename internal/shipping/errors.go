package shipping

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a quote that cannot run because of bad settings,
	// e.g. an empty courier allow-list or a missing origin postcode.
	ErrConfiguration = errors.New("configuration error")
	// ErrResolution marks an origin or destination that could not be mapped to
	// a RajaOngkir destination id.
	ErrResolution = errors.New("resolution failure")
)

// Stage names the step of a quote that failed.
type Stage string

const (
	StageCouriers    Stage = "couriers"
	StageOrigin      Stage = "origin"
	StageDestination Stage = "destination"
	StageCost        Stage = "cost"
)

// Failure is the internal result of an unsuccessful quote. It wraps one of
// ErrConfiguration, ErrResolution, *httpclient.UpstreamError or
// *httpclient.InvalidRequestError.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(stage Stage, err error) *Failure {
	return &Failure{Stage: stage, Err: err}
}
