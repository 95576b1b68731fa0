package model

import "time"

// User is owned by the identity store; this subsystem only reads it.
type User struct {
	ID                string
	Email             string
	Name              string
	Country           string
	InvestmentGoals   string
	RiskTolerance     string
	PreferredIndustry string
	CreatedAt         time.Time
}
