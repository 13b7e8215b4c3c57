package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// SpecialTokens names the four control tokens every vocabulary must define.
// Loader names vary between model exports; the roles do not.
type SpecialTokens struct {
	Cls string
	Sep string
	Pad string
	Unk string
}

func DefaultSpecialTokens() SpecialTokens {
	return SpecialTokens{Cls: "[CLS]", Sep: "[SEP]", Pad: "[PAD]", Unk: "[UNK]"}
}

// Vocabulary is the bidirectional token table from a model's JSON export.
type Vocabulary struct {
	ids      map[string]int64
	tokens   map[int64]string
	specials SpecialTokens

	cls, sep, pad, unk int64
}

// LoadVocabulary reads a JSON object mapping token strings to integer IDs,
// as exported alongside the classifier model.
func LoadVocabulary(path string) (*Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	var entries map[string]int64
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	v, err := NewVocabulary(entries, DefaultSpecialTokens())
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

func NewVocabulary(entries map[string]int64, specials SpecialTokens) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, errors.New("vocabulary is empty")
	}
	v := &Vocabulary{
		ids:      make(map[string]int64, len(entries)),
		tokens:   make(map[int64]string, len(entries)),
		specials: specials,
	}
	for tok, id := range entries {
		v.ids[tok] = id
		v.tokens[id] = tok
	}

	var ok bool
	if v.cls, ok = v.ids[specials.Cls]; !ok {
		return nil, fmt.Errorf("missing special token %q", specials.Cls)
	}
	if v.sep, ok = v.ids[specials.Sep]; !ok {
		return nil, fmt.Errorf("missing special token %q", specials.Sep)
	}
	if v.pad, ok = v.ids[specials.Pad]; !ok {
		return nil, fmt.Errorf("missing special token %q", specials.Pad)
	}
	if v.unk, ok = v.ids[specials.Unk]; !ok {
		return nil, fmt.Errorf("missing special token %q", specials.Unk)
	}
	return v, nil
}

func (v *Vocabulary) Has(token string) bool {
	_, ok := v.ids[token]
	return ok
}

func (v *Vocabulary) ID(token string) (int64, bool) {
	id, ok := v.ids[token]
	return id, ok
}

func (v *Vocabulary) Token(id int64) (string, bool) {
	tok, ok := v.tokens[id]
	return tok, ok
}

func (v *Vocabulary) Size() int { return len(v.ids) }

func (v *Vocabulary) ClsID() int64 { return v.cls }
func (v *Vocabulary) SepID() int64 { return v.sep }
func (v *Vocabulary) PadID() int64 { return v.pad }
func (v *Vocabulary) UnkID() int64 { return v.unk }
