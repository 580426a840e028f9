// Package deck loads vocabulary decks and turns them into practice items.
package deck

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

//go:embed data/*.tsv
var builtin embed.FS

// ErrUnknownDataset is returned by Load for names without a built-in deck.
var ErrUnknownDataset = errors.New("unknown dataset")

// Entry is one row of a deck file.
type Entry struct {
	ID    int
	Src   string
	Dst   string
	POS   string
	Level string
}

// Deck is a named list of entries with language labels.
type Deck struct {
	Name        string
	SourceLabel string
	TargetLabel string
	Entries     []Entry
	// FromFile marks decks read by LoadFile rather than built in.
	FromFile bool
}

// Names lists the built-in datasets.
func Names() []string {
	files, err := builtin.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(f.Name(), ".tsv"))
	}
	sort.Strings(names)
	return names
}

// Load returns a built-in dataset by name.
func Load(name string) (Deck, error) {
	f, err := builtin.Open(path.Join("data", name+".tsv"))
	if err != nil {
		return Deck{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownDataset, name, strings.Join(Names(), ", "))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for embedded file.
			_ = cerr
		}
	}()
	return parse(name, f)
}

// LoadFile reads a deck from a TSV file: id, source, target, and optional
// part of speech and level columns. Lines starting with # are comments;
// "# source = X" and "# target = Y" set the language labels.
func LoadFile(p string) (Deck, error) {
	file, err := os.Open(p)
	if err != nil {
		return Deck{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only deck.
			_ = cerr
		}
	}()
	name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	d, err := parse(name, file)
	if err != nil {
		return Deck{}, err
	}
	d.FromFile = true
	return d, nil
}

func parse(name string, r io.Reader) (Deck, error) {
	d := Deck{Name: name, SourceLabel: "Source", TargetLabel: "Target"}
	seen := map[int]struct{}{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			applyDirective(&d, strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return Deck{}, fmt.Errorf("line %d: expected at least 3 tab-separated fields, got %d", lineNo, len(fields))
		}
		id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return Deck{}, fmt.Errorf("line %d: invalid id %q", lineNo, fields[0])
		}
		if _, ok := seen[id]; ok {
			return Deck{}, fmt.Errorf("line %d: duplicate id %d", lineNo, id)
		}
		seen[id] = struct{}{}
		e := Entry{
			ID:  id,
			Src: strings.TrimSpace(fields[1]),
			Dst: strings.TrimSpace(fields[2]),
		}
		if e.Src == "" || e.Dst == "" {
			return Deck{}, fmt.Errorf("line %d: empty source or target", lineNo)
		}
		if len(fields) > 3 {
			e.POS = strings.TrimSpace(fields[3])
		}
		if len(fields) > 4 {
			e.Level = strings.ToUpper(strings.TrimSpace(fields[4]))
		}
		d.Entries = append(d.Entries, e)
	}
	if err := scanner.Err(); err != nil {
		return Deck{}, err
	}
	if len(d.Entries) == 0 {
		return Deck{}, fmt.Errorf("deck %s is empty", name)
	}
	return d, nil
}

func applyDirective(d *Deck, text string) {
	key, value, ok := strings.Cut(text, "=")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "source":
		d.SourceLabel = value
	case "target":
		d.TargetLabel = value
	}
}
