package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/taskboard-client/internal/domain"
)

func pageOf(projects ...domain.Project) domain.Page[domain.Project] {
	return domain.Page[domain.Project]{
		Items:       projects,
		TotalCount:  len(projects),
		PageCount:   1,
		CurrentPage: 1,
	}
}

// TestStore_LastWriterWins проверяет что побеждает последняя запись
// независимо от порядка отправки запросов
func TestStore_LastWriterWins(t *testing.T) {
	s := New()

	s.SetProjects(pageOf(domain.Project{ID: "p1", Name: "first response"}))
	s.SetProjects(pageOf(domain.Project{ID: "p1", Name: "second response"}))

	got := s.Projects()
	require.Len(t, got.Items, 1)
	assert.Equal(t, "second response", got.Items[0].Name)
}

func TestStore_UpsertProject(t *testing.T) {
	s := New()
	s.SetProjects(pageOf(
		domain.Project{ID: "p1", Name: "Alpha"},
		domain.Project{ID: "p2", Name: "Beta"},
	))
	current := domain.Project{ID: "p2", Name: "Beta"}
	s.SetCurrentProject(&current)

	s.UpsertProject(domain.Project{ID: "p2", Name: "Beta v2"})

	got := s.Projects()
	assert.Equal(t, "Beta v2", got.Items[1].Name)
	require.NotNil(t, s.CurrentProject())
	assert.Equal(t, "Beta v2", s.CurrentProject().Name)

	// Неизвестный id игнорируется до следующего фетча
	s.UpsertProject(domain.Project{ID: "p9", Name: "Ghost"})
	assert.Len(t, s.Projects().Items, 2)
}

func TestStore_RemoveProject(t *testing.T) {
	s := New()
	s.SetProjects(pageOf(
		domain.Project{ID: "p1"},
		domain.Project{ID: "p2"},
	))
	current := domain.Project{ID: "p1"}
	s.SetCurrentProject(&current)

	s.RemoveProject("p1")

	got := s.Projects()
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p2", got.Items[0].ID)
	assert.Nil(t, s.CurrentProject())
}

func TestStore_PerFeatureErrors(t *testing.T) {
	s := New()

	s.SetError(FeatureProjects, "temporary backend failure")
	s.SetError(FeatureAuth, "invalid credentials")

	assert.Equal(t, "temporary backend failure", s.Error(FeatureProjects))
	assert.Equal(t, "invalid credentials", s.Error(FeatureAuth))
	assert.Empty(t, s.Error(FeatureComments))

	// Пустое сообщение очищает состояние ошибки
	s.SetError(FeatureProjects, "")
	assert.Empty(t, s.Error(FeatureProjects))
}

func TestStore_Reset(t *testing.T) {
	s := New()
	s.SetProjects(pageOf(domain.Project{ID: "p1"}))
	current := domain.Project{ID: "p1"}
	s.SetCurrentProject(&current)
	s.SetError(FeatureProjects, "boom")

	s.Reset()

	assert.Empty(t, s.Projects().Items)
	assert.NotNil(t, s.Projects().Items)
	assert.Nil(t, s.CurrentProject())
	assert.Empty(t, s.Error(FeatureProjects))
}

// TestStore_ScheduleSearchDebounce проверяет что быстрые перепланирования
// отменяют несработавший таймер: выполняется только последний поиск
func TestStore_ScheduleSearchDebounce(t *testing.T) {
	s := New()

	var mu sync.Mutex
	fired := []string{}
	record := func(q string) func() {
		return func() {
			mu.Lock()
			fired = append(fired, q)
			mu.Unlock()
		}
	}

	s.ScheduleSearch(40*time.Millisecond, record("a"))
	s.ScheduleSearch(40*time.Millisecond, record("ab"))
	s.ScheduleSearch(40*time.Millisecond, record("abc"))

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"abc"}, fired)
}

// TestStore_ScheduleSearchDoesNotCancelFired проверяет что уже сработавший
// таймер не отменяется задним числом
func TestStore_ScheduleSearchDoesNotCancelFired(t *testing.T) {
	s := New()

	var mu sync.Mutex
	fired := []string{}

	s.ScheduleSearch(5*time.Millisecond, func() {
		mu.Lock()
		fired = append(fired, "first")
		mu.Unlock()
	})
	time.Sleep(50 * time.Millisecond)

	s.ScheduleSearch(5*time.Millisecond, func() {
		mu.Lock()
		fired = append(fired, "second")
		mu.Unlock()
	})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, fired)
}
