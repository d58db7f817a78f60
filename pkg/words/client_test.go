package words

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Random(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("words"))
		w.Write([]byte(`["castle"]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	word, err := client.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "castle", word)
}

func TestClient_RandomEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Random(context.Background())
	assert.ErrorIs(t, err, ErrNoWord)
}

func TestClient_RandomServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Random(context.Background())
	assert.Error(t, err)
}

func TestClient_Valid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/castle" {
			w.Write([]byte(`[{"word":"castle"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	assert.True(t, client.Valid(context.Background(), "castle"))
	assert.False(t, client.Valid(context.Background(), "zzzz"))
}

func TestClient_CandidateRejectsUnknownWords(t *testing.T) {
	random := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["zzzz"]`))
	}))
	defer random.Close()
	dict := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer dict.Close()

	client := NewClient(random.URL, dict.URL)
	_, err := client.Candidate(context.Background())
	assert.ErrorIs(t, err, ErrNoWord)
}

func TestClient_CandidateRejectsNonLetterWords(t *testing.T) {
	dictCalls := 0
	dict := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dictCalls++
		w.Write([]byte(`[{}]`))
	}))
	defer dict.Close()

	for _, word := range []string{"mother-in-law", "o'clock", "per se"} {
		word := word
		random := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`["` + word + `"]`))
		}))

		client := NewClient(random.URL, dict.URL)
		_, err := client.Candidate(context.Background())
		assert.ErrorIs(t, err, ErrNoWord, "word %q cannot be guessed letter by letter", word)
		random.Close()
	}
	assert.Zero(t, dictCalls, "unplayable words are rejected before the dictionary lookup")
}

func TestClient_CandidateAcceptsValidatedWord(t *testing.T) {
	random := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["castle"]`))
	}))
	defer random.Close()
	dict := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"word":"castle"}]`))
	}))
	defer dict.Close()

	client := NewClient(random.URL, dict.URL)
	word, err := client.Candidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "castle", word)
}
