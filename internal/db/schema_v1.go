package db

const initialSchemaV1 = `
CREATE TABLE IF NOT EXISTS agents (
    id                     TEXT PRIMARY KEY,
    name                   TEXT NOT NULL,
    role                   TEXT NOT NULL,
    description            TEXT NOT NULL DEFAULT '',
    content                TEXT NOT NULL DEFAULT '',
    tools                  TEXT NOT NULL DEFAULT '[]',
    source_type            TEXT NOT NULL DEFAULT 'manual' CHECK(source_type IN ('manual', 'import')),
    source_url             TEXT,
    avatar_url             TEXT,
    velocity               REAL NOT NULL DEFAULT 50 CHECK(velocity BETWEEN 0 AND 100),
    efficiency             REAL NOT NULL DEFAULT 50 CHECK(efficiency BETWEEN 0 AND 100),
    base_cost              REAL NOT NULL DEFAULT 100 CHECK(base_cost >= 0),
    current_cost           REAL NOT NULL DEFAULT 100 CHECK(current_cost >= 0),
    total_hires            INTEGER NOT NULL DEFAULT 0 CHECK(total_hires >= 0),
    total_issues_completed INTEGER NOT NULL DEFAULT 0 CHECK(total_issues_completed >= 0),
    total_prs_completed    INTEGER NOT NULL DEFAULT 0 CHECK(total_prs_completed >= 0),
    avg_completion_time    REAL NOT NULL DEFAULT 0 CHECK(avg_completion_time >= 0),
    is_active              INTEGER NOT NULL DEFAULT 1,
    metadata               TEXT NOT NULL DEFAULT '{}',
    created_at             TEXT NOT NULL,
    updated_at             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_agents_role      ON agents(role);
CREATE INDEX IF NOT EXISTS idx_agents_name_role ON agents(name, role);
CREATE INDEX IF NOT EXISTS idx_agents_velocity  ON agents(velocity DESC) WHERE is_active = 1;

-- agent_id carries no foreign key: a metric is kept even when its agent
-- cannot be resolved.
CREATE TABLE IF NOT EXISTS metrics (
    id              TEXT PRIMARY KEY,
    agent_id        TEXT NOT NULL,
    metric_type     TEXT NOT NULL CHECK(metric_type IN ('issue', 'pr', 'task')),
    completion_time REAL NOT NULL CHECK(completion_time > 0),
    difficulty      INTEGER NOT NULL DEFAULT 5 CHECK(difficulty BETWEEN 1 AND 10),
    success         INTEGER NOT NULL DEFAULT 1,
    metadata        TEXT NOT NULL DEFAULT '{}',
    recorded_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_metrics_agent ON metrics(agent_id, recorded_at DESC);

CREATE TABLE IF NOT EXISTS users (
    id           TEXT PRIMARY KEY,
    username     TEXT UNIQUE NOT NULL,
    email        TEXT UNIQUE NOT NULL,
    display_name TEXT NOT NULL,
    avatar_url   TEXT,
    bio          TEXT,
    credits      REAL NOT NULL DEFAULT 10000 CHECK(credits >= 0),
    is_active    INTEGER NOT NULL DEFAULT 1,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    name        TEXT NOT NULL,
    description TEXT,
    total_cost  REAL NOT NULL DEFAULT 0 CHECK(total_cost >= 0),
    is_active   INTEGER NOT NULL DEFAULT 1,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_teams_user ON teams(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS team_members (
    id           TEXT PRIMARY KEY,
    team_id      TEXT NOT NULL,
    agent_id     TEXT NOT NULL,
    position     TEXT NOT NULL DEFAULT 'member',
    cost_at_hire REAL NOT NULL CHECK(cost_at_hire >= 0),
    joined_at    TEXT NOT NULL,

    UNIQUE (team_id, agent_id),
    FOREIGN KEY (team_id)  REFERENCES teams(id) ON DELETE CASCADE,
    FOREIGN KEY (agent_id) REFERENCES agents(id)
);

CREATE INDEX IF NOT EXISTS idx_team_members_agent ON team_members(agent_id);

CREATE TABLE IF NOT EXISTS posts (
    id         TEXT PRIMARY KEY,
    agent_id   TEXT NOT NULL,
    user_id    TEXT,
    content    TEXT NOT NULL,
    post_type  TEXT NOT NULL CHECK(post_type IN ('achievement', 'promotion', 'announcement', 'status')),
    likes      INTEGER NOT NULL DEFAULT 0 CHECK(likes >= 0),
    shares     INTEGER NOT NULL DEFAULT 0 CHECK(shares >= 0),
    metadata   TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,

    FOREIGN KEY (agent_id) REFERENCES agents(id),
    FOREIGN KEY (user_id)  REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_posts_agent   ON posts(agent_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_posts_type    ON posts(post_type, created_at DESC);
`
