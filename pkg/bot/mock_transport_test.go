package bot

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"caprisun/pkg/cache"
	"caprisun/pkg/store"
)

// MockTransport implements Transport for testing and records every outbound
// call.
type MockTransport struct {
	Sent      []SentMessage
	Reactions []string
	Deleted   []string
	Removed   []string
	Promoted  []string
	Demoted   []string
	Files     []string

	Meta    map[string]*GroupMetadata
	MetaErr error
	Names   map[string]string
	Link    string
	Mode    GroupMode
}

type SentMessage struct {
	ChannelID string
	Text      string
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		Meta:  map[string]*GroupMetadata{},
		Names: map[string]string{},
	}
}

func (m *MockTransport) SendMessage(ctx context.Context, channelID, text string) error {
	m.Sent = append(m.Sent, SentMessage{ChannelID: channelID, Text: text})
	return nil
}

func (m *MockTransport) React(ctx context.Context, channelID, messageID, emoji string) error {
	m.Reactions = append(m.Reactions, emoji)
	return nil
}

func (m *MockTransport) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	m.Deleted = append(m.Deleted, messageID)
	return nil
}

func (m *MockTransport) SendFile(ctx context.Context, channelID, name string, r io.Reader) error {
	m.Files = append(m.Files, name)
	return nil
}

func (m *MockTransport) GroupMetadata(ctx context.Context, groupID string) (*GroupMetadata, error) {
	if m.MetaErr != nil {
		return nil, m.MetaErr
	}
	if meta, ok := m.Meta[groupID]; ok {
		return meta, nil
	}
	return &GroupMetadata{Subject: "Test Group", HomeChannel: "home"}, nil
}

func (m *MockTransport) UpdateParticipants(ctx context.Context, groupID string, userIDs []string, action ParticipantAction) error {
	switch action {
	case ActionRemove:
		m.Removed = append(m.Removed, userIDs...)
	case ActionPromote:
		m.Promoted = append(m.Promoted, userIDs...)
	case ActionDemote:
		m.Demoted = append(m.Demoted, userIDs...)
	case ActionAdd:
		return ErrUnsupported
	}
	return nil
}

func (m *MockTransport) InviteLink(ctx context.Context, groupID string) (string, error) {
	if m.Link == "" {
		return "https://discord.gg/test", nil
	}
	return m.Link, nil
}

func (m *MockTransport) SetGroupSetting(ctx context.Context, groupID string, mode GroupMode) error {
	m.Mode = mode
	return nil
}

func (m *MockTransport) DisplayName(ctx context.Context, groupID, userID string) (string, error) {
	if name, ok := m.Names[userID]; ok {
		return name, nil
	}
	return "user-" + userID, nil
}

func (m *MockTransport) LastSent() string {
	if len(m.Sent) == 0 {
		return ""
	}
	return m.Sent[len(m.Sent)-1].Text
}

func testRepo(t *testing.T) *store.Repository {
	t.Helper()
	repo, err := store.NewRepository(store.NewFileBackend(filepath.Join(t.TempDir(), "storage.json")))
	require.NoError(t, err)
	return repo
}

func testDirectory(transport Transport) *Directory {
	return NewDirectory(transport, cache.NewMemoryCache())
}
