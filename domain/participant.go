// Package domain contains core concepts of the collaborative pad.
// This file defines Participant entities and the color palette.
// No runtime, network, or UI logic should be added here.
package domain

import "math/rand"

// Palette is the fixed set of display colors handed out to participants.
// Colors may repeat between participants, there is no collision avoidance.
var Palette = []string{
	"#e6194b",
	"#3cb44b",
	"#ffe119",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46f0f0",
}

// Participant is a named member of the session.
// The ID is the claimed identity, unique among registered participants
// for as long as the owning connection stays open.
type Participant struct {
	ID    string
	Color string
}

// PickColor returns an arbitrary palette color.
func PickColor() string {
	return Palette[rand.Intn(len(Palette))]
}
