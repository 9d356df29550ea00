package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ApprovedStatus представляет статус участника проекта
type ApprovedStatus string

// Возможные статусы участника
const (
	StatusPending  ApprovedStatus = "PENDING"  // Заявка подана, ждет решения владельца
	StatusApproved ApprovedStatus = "APPROVED" // Участник принят в проект
	StatusRejected ApprovedStatus = "REJECTED" // Заявка отклонена
	StatusRemoved  ApprovedStatus = "REMOVED"  // Участник исключен (soft delete)
)

// ParseApprovedStatus сводит статус бэкенда к каноническому enum.
// Бэкенд присылает статус в произвольном регистре и дублирует удаление
// отдельным флагом isRemoved; здесь оба представления схлопываются в одно.
func ParseApprovedStatus(raw string, isRemoved bool) ApprovedStatus {
	if isRemoved {
		return StatusRemoved
	}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "APPROVED":
		return StatusApproved
	case "REJECTED":
		return StatusRejected
	case "REMOVED":
		return StatusRemoved
	default:
		return StatusPending
	}
}

// ProjectMember представляет участника проекта с его ролью и статусом
type ProjectMember struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Username       string         `json:"username"`
	Role           string         `json:"role"`
	ApprovedStatus ApprovedStatus `json:"approvedStatus"`
	JoinedAt       *time.Time     `json:"joinedAt,omitempty"`
}

// memberWire это форма участника как ее присылает бэкенд
// (регистронезависимый approvedStatus плюс legacy флаг isRemoved)
type memberWire struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Username       string     `json:"username"`
	Role           string     `json:"role"`
	ApprovedStatus string     `json:"approvedStatus"`
	IsRemoved      bool       `json:"isRemoved"`
	JoinedAt       *time.Time `json:"joinedAt,omitempty"`
}

// UnmarshalJSON декодирует участника, сводя legacy поля к enum статусу
func (m *ProjectMember) UnmarshalJSON(data []byte) error {
	var w memberWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.ID = w.ID
	m.UserID = w.UserID
	m.Username = w.Username
	m.Role = w.Role
	m.ApprovedStatus = ParseApprovedStatus(w.ApprovedStatus, w.IsRemoved)
	m.JoinedAt = w.JoinedAt
	return nil
}

// IsRemoved возвращает true если участник исключен из проекта
func (m *ProjectMember) IsRemoved() bool {
	return m.ApprovedStatus == StatusRemoved
}

// Project представляет проект со списком участников
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
	OwnerID     string          `json:"ownerId"`
	Members     []ProjectMember `json:"members,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// VisibleMembers возвращает участников без исключенных.
// Исключенные участники не удаляются из авторитетной записи бэкенда,
// фильтр применяется заново при каждой нормализации.
func (p *Project) VisibleMembers() []ProjectMember {
	visible := make([]ProjectMember, 0, len(p.Members))
	for _, m := range p.Members {
		if !m.IsRemoved() {
			visible = append(visible, m)
		}
	}
	return visible
}

// BelongsTo возвращает true если пользователь владелец проекта
// или принятый участник. Используется фильтром "мои проекты".
func (p *Project) BelongsTo(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.UserID == userID && m.ApprovedStatus == StatusApproved {
			return true
		}
	}
	return false
}
