// Package datasettest builds in-memory stores for tests.
package datasettest

import (
	"sales-assistant/internal/dataset"
	"sales-assistant/internal/models"
)

// Signals is shorthand for a bundle of yes/no signals plus an optional review count.
type Signals struct {
	GooglePlaces bool
	SEM          bool
	FBPosts      bool
	Instagram    bool
	Twitter      bool
	Reviews      float64
}

func yesNo(b bool) models.SignalValue {
	if b {
		return models.TextSignal("Yes")
	}
	return models.TextSignal("No")
}

func (s Signals) Bundle() models.SignalBundle {
	b := models.SignalBundle{
		models.SignalGooglePlaces: yesNo(s.GooglePlaces),
		models.SignalSEM:          yesNo(s.SEM),
		models.SignalFBPosts:      yesNo(s.FBPosts),
		models.SignalInstagram:    yesNo(s.Instagram),
		models.SignalTwitter:      yesNo(s.Twitter),
	}
	if s.Reviews > 0 {
		b[models.SignalReviews] = models.NumberSignal(s.Reviews)
	}
	return b
}

// Record builds a normalized record.
func Record(name, category, city, state string, s Signals) models.Record {
	return models.Record{
		Fields: map[string]string{
			models.FieldBusinessName:    name,
			models.FieldPrimaryCategory: category,
			models.FieldCity:            city,
			models.FieldState:           state,
		},
		Signals: s.Bundle(),
	}
}

// Columns is the column set every fixture record carries.
var Columns = []string{
	models.FieldBusinessName,
	models.FieldPrimaryCategory,
	models.FieldCity,
	models.FieldState,
}

func Store(records ...models.Record) *dataset.Store {
	return dataset.NewStore(records, Columns)
}

// Sample is a small mixed dataset used across packages.
func Sample() *dataset.Store {
	return Store(
		Record("Lone Star PCs", "Computer Contractors", "Austin", "TX", Signals{}),
		Record("Alamo Tech Repair", "Computer Contractors", "San Antonio", "TX", Signals{GooglePlaces: true, SEM: true, FBPosts: true, Reviews: 25}),
		Record("Gulf Coast Plumbing", "Plumbing", "Houston", "TX", Signals{GooglePlaces: true, Reviews: 40}),
		Record("Bayou IT Services", "IT Services", "New Orleans", "LA", Signals{FBPosts: true, Instagram: true}),
		Record("Desert Electrical", "Electrical Contractors", "Phoenix", "AZ", Signals{SEM: true}),
		Record("Pine Software Labs", "Software Development", "Portland", "OR", Signals{GooglePlaces: true, FBPosts: true, Twitter: true, Reviews: 8}),
	)
}
