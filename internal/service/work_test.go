package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/taskboard-client/internal/domain"
)

// TestWorkService_BoardFlow проверяет путь область -> задача -> чеклист
func TestWorkService_BoardFlow(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	ctx := context.Background()

	project, err := env.projects.Create(ctx, CreateProjectInput{Name: "Alpha"})
	require.NoError(t, err)

	area, err := env.work.CreateWorkArea(ctx, project.ID, "Backend")
	require.NoError(t, err)
	assert.Equal(t, "Backend", area.Name)

	task, err := env.work.CreateWorkTask(ctx, area.ID, WorkTaskInput{
		Name:        "Implement sync",
		Description: "periodic project sync",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTodo, task.Status)

	tasks, err := env.work.WorkTasks(ctx, area.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, tasks.Items, 1)

	updated, err := env.work.UpdateWorkTask(ctx, task.ID, WorkTaskInput{Status: domain.TaskInProgress})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, updated.Status)

	objective, err := env.work.AddObjective(ctx, task.ID, "write tests")
	require.NoError(t, err)
	assert.Equal(t, "write tests", objective.Title)

	objectives, err := env.work.Objectives(ctx, task.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, objectives.Items, 1)

	require.NoError(t, env.work.AssignMember(ctx, task.ID, "u2"))

	require.NoError(t, env.work.DeleteWorkTask(ctx, task.ID))
	tasks, err = env.work.WorkTasks(ctx, area.ID, firstPage())
	require.NoError(t, err)
	assert.Empty(t, tasks.Items)
}

func TestCommentService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t)
	ctx := context.Background()

	project, err := env.projects.Create(ctx, CreateProjectInput{Name: "Alpha"})
	require.NoError(t, err)
	area, err := env.work.CreateWorkArea(ctx, project.ID, "Backend")
	require.NoError(t, err)
	task, err := env.work.CreateWorkTask(ctx, area.ID, WorkTaskInput{Name: "Implement sync"})
	require.NoError(t, err)

	comment, err := env.comments.Create(ctx, task.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, user.ID, comment.AuthorID)

	updated, err := env.comments.Update(ctx, comment.ID, "looks great")
	require.NoError(t, err)
	assert.Equal(t, "looks great", updated.Content)

	page, err := env.comments.List(ctx, task.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "looks great", page.Items[0].Content)

	// Комментарии другой задачи не попадают в выборку
	other, err := env.comments.List(ctx, "missing-task", firstPage())
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	require.NoError(t, env.comments.Delete(ctx, comment.ID))
	page, err = env.comments.List(ctx, task.ID, firstPage())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
