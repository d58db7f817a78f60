package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caprisun/pkg/games"
)

func TestFileBackend_LoadMissingFileReturnsEmptyDocument(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "storage.json"))

	doc, err := backend.Load()
	require.NoError(t, err)
	assert.NotNil(t, doc.Groups)
	assert.NotNil(t, doc.Bans)
	assert.NotNil(t, doc.Warnings)
	assert.NotNil(t, doc.Games.Hangman)
}

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	backend := NewFileBackend(path)

	doc := NewDocument()
	doc.Group("group1").Approved = true
	doc.Group("group1").Antilink = "on"
	doc.Bans["user1"] = true
	doc.Warnings["user2"] = 2
	doc.Prefix = "!"
	doc.Games.Hangman["group1"] = games.NewHangman("user3", "castle", 6)

	require.NoError(t, backend.Save(doc))

	restored, err := backend.Load()
	require.NoError(t, err)
	assert.True(t, restored.Groups["group1"].Approved)
	assert.Equal(t, "on", restored.Groups["group1"].Antilink)
	assert.True(t, restored.Bans["user1"])
	assert.Equal(t, 2, restored.Warnings["user2"])
	assert.Equal(t, "!", restored.Prefix)
	require.Contains(t, restored.Games.Hangman, "group1")
	assert.Equal(t, "castle", restored.Games.Hangman["group1"].Word)
}

func TestFileBackend_LoadPartialDocumentBackfillsMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bans":{"user1":true}}`), 0o644))

	doc, err := NewFileBackend(path).Load()
	require.NoError(t, err)
	assert.True(t, doc.Bans["user1"])
	assert.NotNil(t, doc.Groups)
	assert.NotNil(t, doc.Warnings)
	assert.NotNil(t, doc.Games.WordGame)
}

func TestFileBackend_LoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileBackend(path).Load()
	assert.Error(t, err)
}

func TestDocument_GroupCreatesEntry(t *testing.T) {
	doc := NewDocument()
	g := doc.Group("group1")
	g.Approved = true

	assert.Same(t, g, doc.Group("group1"))
	assert.True(t, doc.Groups["group1"].Approved)
}

func TestDocument_AbsentWarningOmittedFromJSON(t *testing.T) {
	doc := NewDocument()
	doc.Warnings["user1"]++
	delete(doc.Warnings, "user1")

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "user1", "a reset warning leaves no trace")
}

func TestRepository_UpdatePersistsAndViewObserves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	repo, err := NewRepository(NewFileBackend(path))
	require.NoError(t, err)

	require.NoError(t, repo.Update(func(doc *Document) error {
		doc.Warnings["user1"] = 2
		return nil
	}))

	var count int
	repo.View(func(doc *Document) {
		count = doc.Warnings["user1"]
	})
	assert.Equal(t, 2, count)

	// A fresh repository over the same file sees the persisted state.
	repo2, err := NewRepository(NewFileBackend(path))
	require.NoError(t, err)
	repo2.View(func(doc *Document) {
		count = doc.Warnings["user1"]
	})
	assert.Equal(t, 2, count)
}

func TestRepository_UpdateErrorSkipsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	repo, err := NewRepository(NewFileBackend(path))
	require.NoError(t, err)

	wantErr := assert.AnError
	err = repo.Update(func(doc *Document) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "a failed update must not write the file")
}

func TestRepository_ConcurrentUpdatesDoNotLoseIncrements(t *testing.T) {
	repo, err := NewRepository(NewFileBackend(filepath.Join(t.TempDir(), "storage.json")))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Update(func(doc *Document) error {
				doc.Warnings["user1"]++
				return nil
			})
		}()
	}
	wg.Wait()

	var count int
	repo.View(func(doc *Document) {
		count = doc.Warnings["user1"]
	})
	assert.Equal(t, 20, count)
}

func TestChatLocker_SerializesPerChat(t *testing.T) {
	locker := NewChatLocker()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("group1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
