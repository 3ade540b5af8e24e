package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DexEntry is one user's record of having caught one species.
// An entry exists iff the species is caught; "not caught" is represented
// by the absence of a document, never by caught=false.
type DexEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    string             `bson:"userId" json:"userId"`
	PokemonID int                `bson:"pokemonId" json:"pokemonId"`
	Caught    bool               `bson:"caught" json:"caught"`
	Shiny     bool               `bson:"shiny" json:"shiny"`
	Notes     string             `bson:"notes" json:"notes"`
	// Blob URLs for the regular and shiny screenshot slots
	Screenshot      string `bson:"screenshot,omitempty" json:"screenshot,omitempty"`
	ScreenshotShiny string `bson:"screenshotShiny,omitempty" json:"screenshotShiny,omitempty"`
	// ShareID carries the same value on every entry of a user once sharing is enabled
	ShareID   string    `bson:"shareId,omitempty" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
