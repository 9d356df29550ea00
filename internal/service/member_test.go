package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/taskboard-client/internal/domain"
)

// TestMemberService_SoftRemove проверяет что исключение это мягкое
// удаление: участник помечается REMOVED и фильтруется из списков,
// но остается в записи бэкенда и может быть восстановлен
func TestMemberService_SoftRemove(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t)
	ctx := context.Background()

	project := env.backend.SeedProject(domain.Project{Name: "Alpha", OwnerID: user.ID})

	member, err := env.members.Add(ctx, project.ID, "u2", "developer")
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, domain.StatusApproved, member.ApprovedStatus)

	page, err := env.members.List(ctx, project.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// Исключаем: участник исчезает из списка
	require.NoError(t, env.members.Remove(ctx, project.ID, member.ID))

	page, err = env.members.List(ctx, project.ID, firstPage())
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// Запись не удалена физически: повторное одобрение возвращает участника
	require.NoError(t, env.members.UpdateApprovedStatus(ctx, project.ID, member.ID, domain.StatusApproved))

	page, err = env.members.List(ctx, project.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, member.ID, page.Items[0].ID)
}

func TestMemberService_ApprovalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t)
	ctx := context.Background()

	project := env.backend.SeedProject(domain.Project{Name: "Alpha", OwnerID: "someone-else"})

	// Заявка создает участника в статусе PENDING
	require.NoError(t, env.projects.Apply(ctx, project.ID))

	page, err := env.members.List(ctx, project.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	applicant := page.Items[0]
	assert.Equal(t, user.ID, applicant.UserID)
	assert.Equal(t, domain.StatusPending, applicant.ApprovedStatus)

	require.NoError(t, env.members.UpdateApprovedStatus(ctx, project.ID, applicant.ID, domain.StatusApproved))
	require.NoError(t, env.members.UpdateRole(ctx, project.ID, applicant.ID, "maintainer"))

	page, err = env.members.List(ctx, project.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.StatusApproved, page.Items[0].ApprovedStatus)
	assert.Equal(t, "maintainer", page.Items[0].Role)
}
