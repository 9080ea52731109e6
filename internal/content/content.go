package content

import (
	"encoding/json"
	"math/rand"
	"os"

	log "github.com/sirupsen/logrus"
)

// Built-in fallbacks keep the /frase and /libro commands and the daily
// broadcast working when the content files are missing or corrupt.
var defaultPhrases = []string{
	"Non risparmiare ciò che resta dopo aver speso, spendi ciò che resta dopo aver risparmiato.",
	"Il miglior momento per investire era vent'anni fa. Il secondo miglior momento è oggi.",
	"La ricchezza è ciò che non vedi: entrate risparmiate, non spese.",
}

var defaultBooks = []string{
	"L'investitore intelligente — Benjamin Graham",
	"Padre ricco padre povero — Robert Kiyosaki",
	"La psicologia dei soldi — Morgan Housel",
}

// List is a static content collection with uniform random selection.
type List struct {
	items []string
}

// Load reads a JSON string array from path. A missing or unparseable
// file degrades to the fallback set and is never fatal.
func Load(path string, fallback []string) *List {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("content file %s not readable, using defaults: %v", path, err)
		return &List{items: fallback}
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
		log.Errorf("content file %s is corrupt, using defaults: %v", path, err)
		return &List{items: fallback}
	}

	return &List{items: items}
}

func LoadPhrases(path string) *List {
	return Load(path, defaultPhrases)
}

func LoadBooks(path string) *List {
	return Load(path, defaultBooks)
}

func (l *List) Random() string {
	if len(l.items) == 0 {
		return ""
	}
	return l.items[rand.Intn(len(l.items))]
}

func (l *List) Len() int {
	return len(l.items)
}
