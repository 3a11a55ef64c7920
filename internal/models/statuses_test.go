package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseUserRole(t *testing.T) {
	cases := map[string]UserRole{
		"SUPERADMIN":    UserRoleSuperAdmin,
		"superadmin":    UserRoleSuperAdmin,
		"1":             UserRoleSuperAdmin,
		" admin ":       UserRoleAdmin,
		"Administrador": UserRoleAdmin,
		"2":             UserRoleAdmin,
		"usuario":       UserRoleUser,
		"publisher":     UserRoleUser,
		"3":             UserRoleUser,
	}
	for raw, want := range cases {
		got, ok := ParseUserRole(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "4", "0", "root"} {
		_, ok := ParseUserRole(raw)
		assert.False(t, ok, raw)
	}
}

func TestRoleTiers(t *testing.T) {
	assert.Equal(t, 1, UserRoleSuperAdmin.Tier())
	assert.Equal(t, 3, UserRoleUser.Tier())
	assert.Equal(t, 0, UserRole("GUEST").Tier())

	assert.True(t, UserRoleSuperAdmin.AtLeast(UserRoleAdmin))
	assert.True(t, UserRoleAdmin.AtLeast(UserRoleAdmin))
	assert.False(t, UserRoleUser.AtLeast(UserRoleAdmin))
	assert.False(t, UserRole("GUEST").AtLeast(UserRoleUser))
}

func TestParseStatuses(t *testing.T) {
	s, ok := ParseUserStatus("aprobado")
	assert.True(t, ok)
	assert.Equal(t, UserStatusApproved, s)

	s, ok = ParseUserStatus("BLOCKED")
	assert.True(t, ok)
	assert.Equal(t, UserStatusBlocked, s)

	_, ok = ParseUserStatus("sideways")
	assert.False(t, ok)

	p, ok := ParsePostStatus("publicada")
	assert.True(t, ok)
	assert.Equal(t, PostStatusPublished, p)

	_, ok = ParsePostStatus("DRAFT")
	assert.False(t, ok)

	assert.True(t, PostStatusHidden.LocksOwnerToggle())
	assert.True(t, PostStatusRejected.LocksOwnerToggle())
	assert.False(t, PostStatusPendingReview.LocksOwnerToggle())
}

func TestPostListable(t *testing.T) {
	p := &Post{ReviewStatus: PostStatusPublished, IsActive: true}
	assert.True(t, p.Listable())

	p.IsActive = false
	assert.False(t, p.Listable())

	p.IsActive = true
	p.ReviewStatus = PostStatusPendingReview
	assert.False(t, p.Listable())
}

func TestRefreshTokenExpired(t *testing.T) {
	now := time.Now()
	tok := &RefreshToken{ExpiresAt: now}
	assert.True(t, tok.Expired(now))
	assert.False(t, tok.Expired(now.Add(-time.Second)))
}

func TestBaseModelEnsureID(t *testing.T) {
	var b BaseModel
	b.EnsureID()
	assert.Len(t, b.ID, 36)

	id := b.ID
	b.EnsureID()
	assert.Equal(t, id, b.ID)
}
