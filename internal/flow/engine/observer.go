package engine

import (
	"time"

	"flowwatch/internal/model"
)

// Observer is notified after each settled fetch, once the resulting
// snapshot has been published. Calls come from fetch goroutines and may be
// concurrent.
type Observer interface {
	OnSample(instrumentID string, sample model.Sample, observedAt time.Time)
	OnFetchFailure(instrumentID string, err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Sample       func(instrumentID string, sample model.Sample, observedAt time.Time)
	FetchFailure func(instrumentID string, err error)
}

func (f ObserverFuncs) OnSample(instrumentID string, sample model.Sample, observedAt time.Time) {
	if f.Sample != nil {
		f.Sample(instrumentID, sample, observedAt)
	}
}

func (f ObserverFuncs) OnFetchFailure(instrumentID string, err error) {
	if f.FetchFailure != nil {
		f.FetchFailure(instrumentID, err)
	}
}

type observers []Observer

func (o observers) OnSample(instrumentID string, sample model.Sample, observedAt time.Time) {
	for _, obs := range o {
		obs.OnSample(instrumentID, sample, observedAt)
	}
}

func (o observers) OnFetchFailure(instrumentID string, err error) {
	for _, obs := range o {
		obs.OnFetchFailure(instrumentID, err)
	}
}
