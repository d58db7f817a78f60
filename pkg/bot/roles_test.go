package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"caprisun/pkg/store"
)

func TestNormalizeUserID(t *testing.T) {
	cases := map[string]string{
		"+12345":      "12345",
		"12345:7":     "12345",
		"+12345:12":   "12345",
		"12345":       "12345",
		"user:name":   "user:name",
		"user:name:3": "user:name",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeUserID(in), "input %q", in)
	}
}

func TestRoleResolver_OwnerMatchesAcrossIDForms(t *testing.T) {
	transport := NewMockTransport()
	resolver := NewRoleResolver(testDirectory(transport), []string{"+111"})

	assert.True(t, resolver.IsOwner("111"))
	assert.True(t, resolver.IsOwner("111:4"))
	assert.True(t, resolver.IsOwner("+111"))
	assert.False(t, resolver.IsOwner("222"))
}

func TestRoleResolver_OwnerBeatsBan(t *testing.T) {
	transport := NewMockTransport()
	resolver := NewRoleResolver(testDirectory(transport), []string{"111"})

	role := resolver.Resolve(context.Background(), "111", "group1", true)
	assert.Equal(t, RoleOwner, role, "a banned owner is still an owner")
}

func TestRoleResolver_BannedBeatsAdmin(t *testing.T) {
	transport := NewMockTransport()
	transport.Meta["group1"] = &GroupMetadata{
		Participants: []Participant{{ID: "222", Admin: true}},
	}
	resolver := NewRoleResolver(testDirectory(transport), nil)

	role := resolver.Resolve(context.Background(), "222", "group1", true)
	assert.Equal(t, RoleBanned, role)
}

func TestRoleResolver_AdminFromGroupMetadata(t *testing.T) {
	transport := NewMockTransport()
	transport.Meta["group1"] = &GroupMetadata{
		Participants: []Participant{
			{ID: "222", Admin: true},
			{ID: "333", Admin: false},
		},
	}
	resolver := NewRoleResolver(testDirectory(transport), nil)

	assert.Equal(t, RoleAdmin, resolver.Resolve(context.Background(), "222", "group1", false))
	assert.Equal(t, RoleMember, resolver.Resolve(context.Background(), "333", "group1", false))
}

func TestRoleResolver_FailsOpenToMember(t *testing.T) {
	transport := NewMockTransport()
	transport.MetaErr = errors.New("api down")
	resolver := NewRoleResolver(testDirectory(transport), nil)

	role := resolver.Resolve(context.Background(), "222", "group1", false)
	assert.Equal(t, RoleMember, role)
}

func TestRoleResolver_DirectMessageIsMember(t *testing.T) {
	transport := NewMockTransport()
	resolver := NewRoleResolver(testDirectory(transport), nil)

	assert.Equal(t, RoleMember, resolver.Resolve(context.Background(), "222", "", false))
}

func TestIsGroupApproved(t *testing.T) {
	doc := store.NewDocument()
	doc.Group("approved").Approved = true
	doc.Group("blocked").Approved = true
	doc.Group("blocked").Blocked = true
	doc.Group("pending")

	assert.True(t, IsGroupApproved(doc, "control", ""), "direct messages bypass the gate")
	assert.True(t, IsGroupApproved(doc, "control", "control"), "the control group is always approved")
	assert.True(t, IsGroupApproved(doc, "control", "approved"))
	assert.False(t, IsGroupApproved(doc, "control", "pending"), "a bare entry is not approval")
	assert.False(t, IsGroupApproved(doc, "control", "blocked"), "blocked overrides approved")
	assert.False(t, IsGroupApproved(doc, "control", "unknown"))
}
