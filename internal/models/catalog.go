package models

// CatalogPokemon is static reference data for one species, cached in the
// "pokedex" collection and enriched from PokeAPI on demand.
type CatalogPokemon struct {
	PokemonID   int      `bson:"pokemonId" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Types       []string `bson:"types" json:"types,omitempty"`
	Sprite      string   `bson:"sprite" json:"sprite"`
	SpriteShiny string   `bson:"spriteShiny" json:"spriteShiny"`
	Region      string   `bson:"region" json:"region"`
}
