package model

type AlertKind string

const (
	AlertProjectCreated AlertKind = "project_created"
	AlertDonation       AlertKind = "donation"
)

// Alert describes a platform event worth announcing to a chat channel.
type Alert struct {
	Kind      AlertKind
	Project   Project
	ActorName string
	Amount    float64
}
