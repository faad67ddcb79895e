package models

// RoundSettings mirrors the settings/rounds document: round name to open flag.
type RoundSettings map[string]bool
