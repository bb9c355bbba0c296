// Package prompts holds the static prompt catalog, one list of raw prompt
// strings per category.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/LudovicRocher01/Glow/internal/random"
)

type Category string

const (
	Categories      Category = "categories"
	Challenges      Category = "challenges"
	NeverHave       Category = "never_have"
	WhoWould        Category = "who_would"
	OneUnluck       Category = "one_unluck"
	Unluck          Category = "unluck"
	Versus          Category = "versus"
	Game            Category = "game"
	Curse           Category = "curse"
	Debate          Category = "debate"
	RoundCategories Category = "round_categories"
	Culture         Category = "culture"
	TrueOrFalse     Category = "true_or_false"
	Confidence      Category = "confidence"
)

var known = map[Category]bool{
	Categories: true, Challenges: true, NeverHave: true, WhoWould: true,
	OneUnluck: true, Unluck: true, Versus: true, Game: true, Curse: true,
	Debate: true, RoundCategories: true, Culture: true, TrueOrFalse: true,
	Confidence: true,
}

//go:embed data/catalog.json
var data embed.FS

// Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	rng     *rand.Rand
	entries map[Category][]string
}

// New builds a catalog from in-memory lists. Blank entries are dropped.
func New(entries map[Category][]string, rng *rand.Rand) (*Catalog, error) {
	if rng == nil {
		rng = random.New()
	}
	c := &Catalog{rng: rng, entries: make(map[Category][]string, len(entries))}
	for cat, list := range entries {
		if !known[cat] {
			return nil, fmt.Errorf("unknown prompt category %q", cat)
		}
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				c.entries[cat] = append(c.entries[cat], s)
			}
		}
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	b, err := data.ReadFile("data/catalog.json")
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}
	return parse(b)
}

// Load reads a catalog from a JSON file shaped like {"category": ["prompt", ...]}.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := parse(b)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return c, nil
}

func parse(b []byte) (*Catalog, error) {
	var raw map[Category][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(raw, nil)
}

// RandomPromptFor returns a uniformly drawn prompt, or false if the category is empty.
func (c *Catalog) RandomPromptFor(cat Category) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.entries[cat]
	if len(list) == 0 {
		return "", false
	}
	return list[c.rng.Intn(len(list))], true
}

func (c *Catalog) Count(cat Category) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[cat])
}

// Categories returns the non-empty categories, sorted.
func (c *Catalog) Categories() []Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Category, 0, len(c.entries))
	for cat, list := range c.entries {
		if len(list) > 0 {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
