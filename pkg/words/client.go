package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode"
)

// Client fetches candidate words for the hangman game and validates them
// against a dictionary API. Base URLs are injectable for tests.
type Client struct {
	httpClient    *http.Client
	randomURL     string
	dictionaryURL string
}

var ErrNoWord = errors.New("no valid word available")

func NewClient(randomURL, dictionaryURL string) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		randomURL:     randomURL,
		dictionaryURL: dictionaryURL,
	}
}

// Random fetches one candidate word. The API answers a JSON array of words.
func (c *Client) Random(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.randomURL+"?words=1", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch random word: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("random word API returned status %d", resp.StatusCode)
	}

	var words []string
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return "", fmt.Errorf("failed to decode random word response: %w", err)
	}
	if len(words) == 0 || words[0] == "" {
		return "", ErrNoWord
	}
	return words[0], nil
}

// Valid reports whether the dictionary knows the word. Any transport error
// counts as invalid; hangman refuses to start rather than use a dud word.
func (c *Client) Valid(ctx context.Context, word string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dictionaryURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Candidate fetches a random word and keeps only dictionary-validated ones.
// Words with hyphens, apostrophes or other non-letter runes are rejected:
// the guessing game accepts single letters only, so such a word could never
// be completed.
func (c *Client) Candidate(ctx context.Context) (string, error) {
	word, err := c.Random(ctx)
	if err != nil {
		return "", err
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return "", ErrNoWord
		}
	}
	if !c.Valid(ctx, word) {
		return "", ErrNoWord
	}
	return word, nil
}
