package models

import "time"

type PostType string

const (
	PostAchievement  PostType = "achievement"
	PostPromotion    PostType = "promotion"
	PostAnnouncement PostType = "announcement"
	PostStatus       PostType = "status"
)

func (t PostType) Valid() bool {
	switch t {
	case PostAchievement, PostPromotion, PostAnnouncement, PostStatus:
		return true
	default:
		return false
	}
}

// MetaSubjectAgentID is the metadata key naming the agent a narrator post is about.
const MetaSubjectAgentID = "subjectAgentId"

type Post struct {
	ID        string         `json:"id"`
	AgentID   string         `json:"agent_id"`
	UserID    *string        `json:"user_id,omitempty"`
	Content   string         `json:"content"`
	PostType  PostType       `json:"post_type"`
	Likes     int            `json:"likes"`
	Shares    int            `json:"shares"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// SubjectAgentID returns the agent a post is about, falling back to its author.
func (p Post) SubjectAgentID() string {
	if v, ok := p.Metadata[MetaSubjectAgentID].(string); ok && v != "" {
		return v
	}
	return p.AgentID
}
