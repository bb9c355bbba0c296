// Package identity holds the copy for each rebrand of the game: names,
// labels, icons and presets consumed by the front end. The engine never
// reads it.
package identity

import (
	"strings"

	"github.com/LudovicRocher01/Glow/internal/engine"
)

const DefaultName = "glou"

type ThemeLabel struct {
	Theme       engine.Theme `json:"theme"`
	Label       string       `json:"label"`
	Icon        string       `json:"icon"`
	Description string       `json:"description"`
}

type ModeLabel struct {
	Mode     engine.GameMode `json:"mode"`
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	Icon     string          `json:"icon"`
}

type LengthPreset struct {
	Title         string `json:"title"`
	QuestionCount int    `json:"questionCount"`
	Icon          string `json:"icon"`
}

type Identity struct {
	Name       string         `json:"name"`
	Title      string         `json:"title"`
	Tagline    string         `json:"tagline"`
	Disclaimer string         `json:"disclaimer"`
	Themes     []ThemeLabel   `json:"themes"`
	Modes      []ModeLabel    `json:"modes"`
	Presets    []LengthPreset `json:"presets"`
	Version    string         `json:"version"`
}

// HasPreset reports whether count is one of the offered game lengths.
func (id Identity) HasPreset(count int) bool {
	for _, p := range id.Presets {
		if p.QuestionCount == count {
			return true
		}
	}
	return false
}

var themes = []ThemeLabel{
	{engine.ThemeCategory, "Catégorie", "folder.fill", "Chacun votre tour ou en un temps limité, citez des éléments appartenant à une catégorie donnée jusqu'à répétition ou abandon."},
	{engine.ThemeNeverHave, "Je n'ai jamais", "hand.raised.fill", "Le grand classique. Avez-vous déjà fait ces actions ou été dans ces situations ? Si oui, vous perdez."},
	{engine.ThemeCulture, "Culture G", "book.fill", "Testez vos connaissances avec des questions de culture générale. Attention aux pièges !"},
	{engine.ThemeTrueOrFalse, "Vrai ou Faux", "checkmark.circle.fill", "Une affirmation vous est présentée. À vous de deviner si elle est vraie ou fausse."},
	{engine.ThemeWhoWould, "Qui pourrait", "questionmark.circle.fill", "Une situation est décrite. Tous les joueurs désignent la personne la plus susceptible de la faire. Le joueur le plus désigné perd."},
	{engine.ThemeGames, "Jeux", "gamecontroller.fill", "Des mini-jeux, des défis et des duels entre joueurs pour pimenter la partie."},
	{engine.ThemeDebates, "Débats", "bubble.left.and.bubble.right.fill", "Choisissez votre camp entre deux options. Les joueurs dans l'équipe minoritaire perdent."},
	{engine.ThemeOther, "Autres", "sparkles", "Un mélange de règles spéciales, de malédictions, de questions personnelles et d'actions de groupe."},
}

var presets = []LengthPreset{
	{"Apéro", 15, "sun.min.fill"},
	{"Soirée", 30, "moon.stars.fill"},
	{"Marathon", 50, "flame.fill"},
	{"After", 80, "crown.fill"},
}

const disclaimer = "Cette application est destinée à un public adulte (17+). Elle contient des références à l'alcool, à la sexualité et à des substances. Elle n'encourage pas leur consommation réelle. Veuillez jouer de manière responsable."

var registry = map[string]Identity{
	"alkool": {
		Name:       "alkool",
		Title:      "Alkool",
		Tagline:    "Le jeu festif qui pimente tes soirées entre amis 🍻",
		Disclaimer: disclaimer,
		Themes:     themes,
		Modes: []ModeLabel{
			{engine.ModeClassic, "Mode Classique", "Pour une partie fun, sans conséquences", "party.popper.fill"},
			{engine.ModeIntense, "Mode Alkool (17+)", "Contenu original avec boissons", "wineglass.fill"},
		},
		Presets: presets,
		Version: "1.0.0",
	},
	"glou": {
		Name:       "glou",
		Title:      "Glou",
		Tagline:    "Comment voulez-vous jouer ?",
		Disclaimer: disclaimer,
		Themes:     themes,
		Modes: []ModeLabel{
			{engine.ModeClassic, "Mode Classique", "Pour une partie fun, sans conséquences", "party.popper.fill"},
			{engine.ModeIntense, "Mode Glou (17+)", "Contenu original avec boissons", "wineglass.fill"},
		},
		Presets: presets,
		Version: "2.0.0",
	},
	"glow": {
		Name:       "glow",
		Title:      "Glow",
		Tagline:    "Des défis, des débats et des fous rires",
		Disclaimer: disclaimer,
		Themes:     themes,
		Modes: []ModeLabel{
			{engine.ModeClassic, "Mode Classique", "Pour une partie fun, sans conséquences", "party.popper.fill"},
			{engine.ModeIntense, "Mode Glow (17+)", "Contenu original avec boissons", "wineglass.fill"},
		},
		Presets: presets,
		Version: "3.0.0",
	},
}

// Lookup returns the identity registered under name, falling back to the default.
func Lookup(name string) (Identity, bool) {
	id, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return registry[DefaultName], false
	}
	return id, true
}

// Names lists the registered identities.
func Names() []string {
	return []string{"alkool", "glou", "glow"}
}
