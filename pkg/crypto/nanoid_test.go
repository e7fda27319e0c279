package crypto

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNanoIDGenerator_New(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		wantErr  error
	}{
		{name: "default alphabet", alphabet: ""},
		{name: "custom alphabet", alphabet: "abcdefgh"},
		{name: "too short", alphabet: "abc", wantErr: ErrAlphabetTooShort},
		{name: "too long", alphabet: strings.Repeat("a", 256), wantErr: ErrAlphabetTooLong},
		{name: "non ascii", alphabet: "abcdefgé", wantErr: ErrAlphabetNotASCII},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewNanoID(test.alphabet)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("NewNanoID() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestNanoIDGeneratedCharactersShouldComeFromAlphabet(t *testing.T) {
	gen, _ := NewNanoID("")
	for i := 0; i < 50; i++ {
		id, err := gen.Generate(0)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(id) != DefaultIDSize {
			t.Fatalf("len = %d, want %d", len(id), DefaultIDSize)
		}
		for _, r := range id {
			if !strings.ContainsRune(MessageIDAlphabet, r) {
				t.Fatalf("unexpected character %q in %q", r, id)
			}
		}
	}
}

func TestNanoIDGenerateConcurrency(t *testing.T) {
	gen, _ := NewNanoID("")
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id, err := gen.Generate(21)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %q", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}
