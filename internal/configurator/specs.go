package configurator

import (
	"strings"

	"github.com/tidwall/gjson"
)

type SpecFormat int

const (
	SpecNone SpecFormat = iota
	SpecJSON            // legacy {"key": "value"} object
	SpecText            // newline separated bullets
)

type SpecPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SpecBlock is the parsed form of a variant's specs column. Pairs is set for
// SpecJSON, Lines for SpecText.
type SpecBlock struct {
	Format SpecFormat
	Pairs  []SpecPair
	Lines  []string
}

// ParseSpecBlock sniffs the stored text: a trimmed value starting with "{" is
// read as a JSON object, anything else as plain text. It never fails;
// malformed JSON yields an empty block.
func ParseSpecBlock(raw string) SpecBlock {
	s := strings.TrimSpace(raw)
	if s == "" {
		return SpecBlock{}
	}
	if strings.HasPrefix(s, "{") {
		pairs, ok := parsePairs(s)
		if !ok {
			return SpecBlock{}
		}
		return SpecBlock{Format: SpecJSON, Pairs: pairs}
	}

	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = cleanLine(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return SpecBlock{}
	}
	return SpecBlock{Format: SpecText, Lines: lines}
}

// Values returns the display lines of the block.
func (b SpecBlock) Values() []string {
	switch b.Format {
	case SpecJSON:
		out := make([]string, 0, len(b.Pairs))
		for _, p := range b.Pairs {
			out = append(out, p.Value)
		}
		return out
	case SpecText:
		return append([]string(nil), b.Lines...)
	}
	return nil
}

func (b SpecBlock) Empty() bool { return b.Format == SpecNone }

// ParseSpecTable reads a car's global spec table. Only the JSON object form
// carries key/value defaults; any other content yields no table.
func ParseSpecTable(raw string) []SpecPair {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "{") {
		return nil
	}
	pairs, _ := parsePairs(s)
	return pairs
}

// EffectiveSpecs resolves the lines shown for a variant. JSON blocks are laid
// over the global table key by key; text blocks stand alone.
func EffectiveSpecs(global []SpecPair, block SpecBlock) []string {
	if block.Format != SpecJSON {
		return block.Values()
	}
	merged := append([]SpecPair(nil), global...)
	idx := make(map[string]int, len(merged))
	for i, p := range merged {
		idx[p.Key] = i
	}
	for _, p := range block.Pairs {
		if i, ok := idx[p.Key]; ok {
			merged[i].Value = p.Value
			continue
		}
		idx[p.Key] = len(merged)
		merged = append(merged, p)
	}
	return SpecBlock{Format: SpecJSON, Pairs: merged}.Values()
}

// parsePairs walks a JSON object in document order keeping non-empty string
// values. A repeated key keeps its first position and its last value.
func parsePairs(s string) ([]SpecPair, bool) {
	if !gjson.Valid(s) {
		return nil, false
	}
	res := gjson.Parse(s)
	if !res.IsObject() {
		return nil, false
	}
	var pairs []SpecPair
	idx := map[string]int{}
	res.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.String {
			return true
		}
		val := cleanLine(v.String())
		if val == "" {
			return true
		}
		key := k.String()
		if i, ok := idx[key]; ok {
			pairs[i].Value = val
			return true
		}
		idx[key] = len(pairs)
		pairs = append(pairs, SpecPair{Key: key, Value: val})
		return true
	})
	return pairs, true
}

// cleanLine trims the line and drops a leading "- " or "* " bullet.
func cleanLine(l string) string {
	l = strings.TrimSpace(l)
	if len(l) >= 2 && (l[0] == '-' || l[0] == '*') && (l[1] == ' ' || l[1] == '\t') {
		l = strings.TrimSpace(l[2:])
	}
	return l
}
