package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApprovedStatus(t *testing.T) {
	cases := []struct {
		raw       string
		isRemoved bool
		want      ApprovedStatus
	}{
		{"APPROVED", false, StatusApproved},
		{"approved", false, StatusApproved},
		{" Approved ", false, StatusApproved},
		{"REJECTED", false, StatusRejected},
		{"removed", false, StatusRemoved},
		{"PENDING", false, StatusPending},
		{"", false, StatusPending},
		{"garbage", false, StatusPending},
		// Legacy флаг isRemoved сильнее статуса
		{"APPROVED", true, StatusRemoved},
		{"", true, StatusRemoved},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseApprovedStatus(tc.raw, tc.isRemoved),
			"raw=%q isRemoved=%v", tc.raw, tc.isRemoved)
	}
}

// TestProjectMember_UnmarshalJSON проверяет схлопывание legacy полей
// в канонический статус при декодировании
func TestProjectMember_UnmarshalJSON(t *testing.T) {
	var m ProjectMember
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"m1","userId":"u1","username":"alice","role":"developer","approvedStatus":"approved","isRemoved":true}`,
	), &m))

	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "alice", m.Username)
	assert.Equal(t, StatusRemoved, m.ApprovedStatus)
	assert.True(t, m.IsRemoved())
}

func TestProject_VisibleMembers(t *testing.T) {
	p := Project{
		ID:      "p1",
		OwnerID: "u1",
		Members: []ProjectMember{
			{ID: "m1", UserID: "u2", ApprovedStatus: StatusApproved},
			{ID: "m2", UserID: "u3", ApprovedStatus: StatusRemoved},
			{ID: "m3", UserID: "u4", ApprovedStatus: StatusPending},
		},
	}

	visible := p.VisibleMembers()
	require.Len(t, visible, 2)
	assert.Equal(t, "m1", visible[0].ID)
	assert.Equal(t, "m3", visible[1].ID)
	// Авторитетная запись не трогается
	assert.Len(t, p.Members, 3)
}

func TestProject_BelongsTo(t *testing.T) {
	p := Project{
		ID:      "p1",
		OwnerID: "owner",
		Members: []ProjectMember{
			{UserID: "approved", ApprovedStatus: StatusApproved},
			{UserID: "pending", ApprovedStatus: StatusPending},
			{UserID: "removed", ApprovedStatus: StatusRemoved},
		},
	}

	assert.True(t, p.BelongsTo("owner"))
	assert.True(t, p.BelongsTo("approved"))
	assert.False(t, p.BelongsTo("pending"))
	assert.False(t, p.BelongsTo("removed"))
	assert.False(t, p.BelongsTo("stranger"))
}

func TestPageCountFor(t *testing.T) {
	assert.Equal(t, 0, PageCountFor(0, 10))
	assert.Equal(t, 1, PageCountFor(1, 10))
	assert.Equal(t, 1, PageCountFor(10, 10))
	assert.Equal(t, 2, PageCountFor(11, 10))
	assert.Equal(t, 0, PageCountFor(5, 0))
}

func TestPageRequest_Values(t *testing.T) {
	v := PageRequest{PageNumber: 2, PageSize: 20, Search: "alpha"}.Values()

	assert.Equal(t, "2", v.Get("pageNumber"))
	assert.Equal(t, "20", v.Get("pageSize"))
	assert.Equal(t, "alpha", v.Get("search"))
	assert.Equal(t, "false", v.Get("isDelete"))

	noSearch := PageRequest{PageNumber: 1, PageSize: 10, IsDelete: true}.Values()
	assert.False(t, noSearch.Has("search"))
	assert.Equal(t, "true", noSearch.Get("isDelete"))
}

func TestTokenPair_IsComplete(t *testing.T) {
	assert.True(t, TokenPair{AccessToken: "a", RefreshToken: "r"}.IsComplete())
	assert.False(t, TokenPair{AccessToken: "a"}.IsComplete())
	assert.False(t, TokenPair{RefreshToken: "r"}.IsComplete())
	assert.False(t, TokenPair{}.IsComplete())
}
