package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Found Items", SectionItems, "list")

	assert.Equal(t, "Found Items", ctx.PageTitle)
	assert.Equal(t, SectionItems, ctx.ActiveSection)
	assert.Equal(t, "list", ctx.ActivePage)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
	assert.Zero(t, ctx.UnreadAnnouncements)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Edit Item", SectionItems, "edit").
		AddBreadcrumb("Home", "/", false).
		AddBreadcrumb("Items", "/items", false).
		AddBreadcrumb("Edit", "/items/17/edit", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "Items", ctx.Breadcrumbs[1].Title)
	assert.Equal(t, "Edit", ctx.Breadcrumbs[2].Title)
	assert.True(t, ctx.Breadcrumbs[2].Active)
	assert.False(t, ctx.Breadcrumbs[0].Active)
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Users", SectionAdmin, "users")

	assert.True(t, ctx.IsActive(SectionAdmin, "users"))
	assert.False(t, ctx.IsActive(SectionDashboard, "users"))
	assert.False(t, ctx.IsActive(SectionAdmin, "ad-groups"))
}

func TestContext_IsSectionActive(t *testing.T) {
	ctx := NewContext("Users", SectionAdmin, "users")

	assert.True(t, ctx.IsSectionActive(SectionAdmin))
	assert.False(t, ctx.IsSectionActive(SectionItems))
}

func TestContext_WithUnread(t *testing.T) {
	ctx := NewContext("Dashboard", SectionDashboard, "dashboard").WithUnread(4)

	assert.Equal(t, 4, ctx.UnreadAnnouncements)
}
