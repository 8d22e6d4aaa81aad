package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionLess(t *testing.T) {
	labels := []string{"B1", "A10", "A2", "B24", "A1", "B3"}
	sort.Slice(labels, func(i, j int) bool { return SectionLess(labels[i], labels[j]) })
	assert.Equal(t, []string{"A1", "A2", "A10", "B1", "B3", "B24"}, labels)
}

func TestSectionLess_NoNumber(t *testing.T) {
	assert.True(t, SectionLess("VIP", "VIP1"))
	assert.False(t, SectionLess("B", "A1"))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "450.00", FormatCents(45000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-1.50", FormatCents(-150))
}

func TestIdentity(t *testing.T) {
	admin := Identity{UserID: 1, Role: RoleAdmin}
	user := Identity{UserID: 2, Role: RoleUser}

	assert.True(t, admin.IsAdmin())
	assert.False(t, user.IsAdmin())
	assert.True(t, user.Owns(2))
	assert.False(t, user.Owns(1))
	assert.False(t, Identity{}.Owns(0))
}
