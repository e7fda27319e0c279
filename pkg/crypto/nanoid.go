package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	// MessageIDAlphabet avoids look-alike characters so ids survive being read aloud.
	MessageIDAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	DefaultIDSize     = 16
	maxAlphabetSize   = 255
	minAlphabetSize   = 8
)

var (
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
)

// NanoIDGenerator produces random ids over a fixed ASCII alphabet.
type NanoIDGenerator struct {
	alphabet string
	mask     int
}

func mask(alphabetLen int) int {
	for i := 1; i <= 8; i++ {
		m := (2 << uint(i)) - 1
		if m > alphabetLen-1 {
			return m
		}
	}
	return maxAlphabetSize
}

func NewNanoID(alphabet string) (*NanoIDGenerator, error) {
	if alphabet == "" {
		alphabet = MessageIDAlphabet
	}
	// Generate indexes by byte
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}

	return &NanoIDGenerator{alphabet: alphabet, mask: mask(len(alphabet))}, nil
}

func (n *NanoIDGenerator) Generate(size int) (string, error) {
	if size <= 0 {
		size = DefaultIDSize
	}

	step := int(math.Ceil(1.6 * float64(n.mask*size) / float64(len(n.alphabet))))
	id := make([]byte, 0, size)
	buf := make([]byte, step)

	for len(id) < size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b) & n.mask
			if idx < len(n.alphabet) {
				id = append(id, n.alphabet[idx])
				if len(id) == size {
					break
				}
			}
		}
	}

	return string(id), nil
}
