package db

// subject_agent_id mirrors metadata.subjectAgentId so narrator posts can be
// found by the agent they talk about.
const postSubjectSchemaV2 = `
ALTER TABLE posts ADD COLUMN subject_agent_id TEXT;

UPDATE posts
SET subject_agent_id = COALESCE(json_extract(metadata, '$.subjectAgentId'), agent_id);

CREATE INDEX IF NOT EXISTS idx_posts_subject ON posts(subject_agent_id, created_at DESC);
`
