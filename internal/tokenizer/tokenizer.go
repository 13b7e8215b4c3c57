package tokenizer

import (
	"strings"
)

// SequenceLength is the fixed input width of the classifier model.
const SequenceLength = 128

// boundaryMarker is the SentencePiece word-boundary prefix (U+2581).
const boundaryMarker = "▁"

const defaultMaxPieceLen = 20

type Option func(*Tokenizer)

// WithMaxPieceLen bounds the longest candidate substring tried during the
// greedy scan. It must be at least the length of the longest vocabulary
// entry, or long pieces become unreachable.
func WithMaxPieceLen(n int) Option {
	return func(t *Tokenizer) {
		if n > 0 {
			t.maxPieceLen = n
		}
	}
}

// Tokenizer performs greedy longest-match subword tokenization against a
// SentencePiece-style vocabulary. It is stateless after construction and
// safe for concurrent use.
type Tokenizer struct {
	vocab       *Vocabulary
	maxPieceLen int
}

func New(vocab *Vocabulary, opts ...Option) *Tokenizer {
	t := &Tokenizer{vocab: vocab, maxPieceLen: defaultMaxPieceLen}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize splits text into vocabulary pieces. The text is lowercased and a
// single space is prepended so the first word can match a boundary-marked
// piece. At each position the longest matching candidate wins; a candidate
// matches if the vocabulary holds it verbatim or with the boundary marker
// prefixed. Whitespace that matches nothing is dropped; any other unmatched
// rune passes through as its own token.
func (t *Tokenizer) Tokenize(text string) []string {
	runes := []rune(" " + strings.ToLower(text))
	var tokens []string
	for i := 0; i < len(runes); {
		max := t.maxPieceLen
		if rem := len(runes) - i; rem < max {
			max = rem
		}
		matched := false
		for l := max; l >= 1; l-- {
			cand := string(runes[i : i+l])
			if t.vocab.Has(cand) || t.vocab.Has(boundaryMarker+cand) {
				tokens = append(tokens, cand)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			r := string(runes[i])
			i++
			if strings.TrimSpace(r) != "" {
				tokens = append(tokens, r)
			}
		}
	}
	return tokens
}

// Encode maps text to model token IDs wrapped in [CLS] and [SEP]. The result
// is unpadded; EncodePadded produces the fixed-length model input.
func (t *Tokenizer) Encode(text string) []int64 {
	tokens := t.Tokenize(text)
	ids := make([]int64, 0, len(tokens)+2)
	ids = append(ids, t.vocab.cls)
	for _, tok := range tokens {
		ids = t.appendTokenIDs(ids, tok)
	}
	ids = append(ids, t.vocab.sep)
	return ids
}

// appendTokenIDs resolves one matched piece: the piece verbatim, then its
// boundary-marked form, then rune by rune with [UNK] as the last resort.
func (t *Tokenizer) appendTokenIDs(ids []int64, tok string) []int64 {
	if id, ok := t.vocab.ID(tok); ok {
		return append(ids, id)
	}
	if id, ok := t.vocab.ID(boundaryMarker + tok); ok {
		return append(ids, id)
	}
	for _, r := range tok {
		s := string(r)
		if id, ok := t.vocab.ID(s); ok {
			ids = append(ids, id)
		} else if id, ok := t.vocab.ID(boundaryMarker + s); ok {
			ids = append(ids, id)
		} else {
			ids = append(ids, t.vocab.unk)
		}
	}
	return ids
}

// Encoding is a fixed-length model input: token IDs and the parallel
// attention mask (1 for real tokens, 0 for padding).
type Encoding struct {
	IDs  []int64
	Mask []int64
}

// EncodePadded encodes text and truncates or right-pads the IDs to exactly
// SequenceLength entries.
func (t *Tokenizer) EncodePadded(text string) Encoding {
	return PadToLength(t.Encode(text), t.vocab.pad, SequenceLength)
}

// PadToLength truncates or right-pads ids to exactly n entries with padID
// and builds the matching attention mask.
func PadToLength(ids []int64, padID int64, n int) Encoding {
	enc := Encoding{IDs: make([]int64, n), Mask: make([]int64, n)}
	keep := len(ids)
	if keep > n {
		keep = n
	}
	copy(enc.IDs, ids[:keep])
	for i := keep; i < n; i++ {
		enc.IDs[i] = padID
	}
	for i := 0; i < keep; i++ {
		enc.Mask[i] = 1
	}
	return enc
}

// Decode reconstructs approximate text from token IDs. Structural specials
// ([CLS], [SEP], [PAD]) are skipped, boundary markers become spaces and the
// result is trimmed. Unknown IDs are skipped.
func (t *Tokenizer) Decode(ids []int64) string {
	var b strings.Builder
	for _, id := range ids {
		if id == t.vocab.cls || id == t.vocab.sep || id == t.vocab.pad {
			continue
		}
		tok, ok := t.vocab.Token(id)
		if !ok {
			continue
		}
		b.WriteString(strings.ReplaceAll(tok, boundaryMarker, " "))
	}
	return strings.TrimSpace(b.String())
}
