package mapper

import (
	"encoding/json"

	"biz-assistant-be/internal/entity"
	"biz-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var meta entity.SessionMetadata
	if len(s.Metadata) > 0 {
		// A corrupt blob degrades to empty metadata rather than failing reads.
		_ = json.Unmarshal(s.Metadata, &meta)
	}

	return &entity.Session{
		Id:             s.Id,
		UserId:         s.UserId,
		FsmState:       s.FsmState,
		TaskRef:        s.TaskRef,
		ProjectRef:     s.ProjectRef,
		Metadata:       meta,
		ClosureReason:  s.ClosureReason,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
	}
}

func (m *SessionMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	raw, err := json.Marshal(s.Metadata)
	if err != nil {
		raw = []byte("{}")
	}

	return &model.Session{
		Id:             s.Id,
		UserId:         s.UserId,
		FsmState:       s.FsmState,
		TaskRef:        s.TaskRef,
		ProjectRef:     s.ProjectRef,
		Metadata:       datatypes.JSON(raw),
		ClosureReason:  s.ClosureReason,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
	}
}

func (m *SessionMapper) MetadataToJSON(meta entity.SessionMetadata) datatypes.JSON {
	raw, err := json.Marshal(meta)
	if err != nil {
		raw = []byte("{}")
	}
	return datatypes.JSON(raw)
}
