package storage

// Database schema queries
const (
	queryCreateProjectsTable = `CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`

	queryCreateSessionsTable = `CREATE TABLE IF NOT EXISTS conversation_sessions (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	)`

	queryCreateMessagesTable = `CREATE TABLE IF NOT EXISTS conversation_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		content TEXT NOT NULL,
		source TEXT NOT NULL CHECK (source IN ('user', 'assistant')),
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES conversation_sessions(id)
	)`

	queryCreateNotesTable = `CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		modified TEXT NOT NULL DEFAULT '[]',
		FOREIGN KEY (project_id) REFERENCES projects(id)
	)`

	queryCreateTodosTable = `CREATE TABLE IF NOT EXISTS todos (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		content TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'done')),
		created_at DATETIME NOT NULL,
		modified TEXT NOT NULL DEFAULT '[]',
		FOREIGN KEY (project_id) REFERENCES projects(id)
	)`

	// FTS index over message content. The message id rides along
	// unindexed so hits can be joined back to their rows. Messages are
	// immutable, so only insert and delete triggers are needed.
	queryCreateMessageSearch = `CREATE VIRTUAL TABLE IF NOT EXISTS message_search USING fts5(
		message_id UNINDEXED,
		content
	)`

	queryCreateMessageSearchInsertTrigger = `CREATE TRIGGER IF NOT EXISTS message_search_ai AFTER INSERT ON conversation_messages
	BEGIN
		INSERT INTO message_search(message_id, content) VALUES (new.id, new.content);
	END`

	queryCreateMessageSearchDeleteTrigger = `CREATE TRIGGER IF NOT EXISTS message_search_ad AFTER DELETE ON conversation_messages
	BEGIN
		DELETE FROM message_search WHERE message_id = old.id;
	END`

	queryCreateIndexSessionsProject = `CREATE INDEX IF NOT EXISTS idx_sessions_project ON conversation_sessions(project_id)`
	queryCreateIndexSessionsAgent   = `CREATE INDEX IF NOT EXISTS idx_sessions_agent ON conversation_sessions(agent_id)`
	queryCreateIndexMessagesSession = `CREATE INDEX IF NOT EXISTS idx_messages_session ON conversation_messages(session_id)`
	queryCreateIndexNotesProject    = `CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project_id)`
	queryCreateIndexTodosProject    = `CREATE INDEX IF NOT EXISTS idx_todos_project ON todos(project_id)`
	queryCreateIndexTodosStatus     = `CREATE INDEX IF NOT EXISTS idx_todos_status ON todos(status)`

	queryInsertProject = `INSERT INTO projects (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	querySelectProject = `SELECT id, name, description, created_at, updated_at
		FROM projects WHERE id = ?`

	querySelectProjects = `SELECT
			p.id, p.name, p.description, p.created_at, p.updated_at,
			COUNT(cs.id) AS session_count
		FROM projects p
		LEFT JOIN conversation_sessions cs ON cs.project_id = p.id
		GROUP BY p.id
		ORDER BY p.created_at DESC`

	queryInsertSession = `INSERT INTO conversation_sessions (id, project_id, agent_id, started_at)
		VALUES (?, ?, ?, ?)`

	querySelectSession = `SELECT id, project_id, agent_id, started_at, ended_at
		FROM conversation_sessions WHERE id = ?`

	queryEndSession = `UPDATE conversation_sessions SET ended_at = ? WHERE id = ?`

	queryInsertMessage = `INSERT INTO conversation_messages (id, session_id, content, source, timestamp)
		VALUES (?, ?, ?, ?, ?)`

	querySelectMessages = `SELECT id, session_id, content, source, timestamp
		FROM conversation_messages WHERE session_id = ? ORDER BY timestamp ASC, rowid ASC`

	queryInsertNote = `INSERT INTO notes (id, project_id, title, content, created_at, modified)
		VALUES (?, ?, ?, ?, ?, '[]')`

	querySelectNote = `SELECT id, project_id, title, content, created_at, modified
		FROM notes WHERE id = ?`

	queryUpdateNote = `UPDATE notes SET title = ?, content = ?, modified = ? WHERE id = ?`

	queryInsertTodo = `INSERT INTO todos (id, project_id, content, status, created_at, modified)
		VALUES (?, ?, ?, ?, ?, '[]')`

	querySelectTodo = `SELECT id, project_id, content, status, created_at, modified
		FROM todos WHERE id = ?`

	queryUpdateTodo = `UPDATE todos SET content = ?, status = ?, modified = ? WHERE id = ?`

	querySearchMessages = `
		SELECT
			m.id, m.session_id, cs.project_id, p.name,
			m.content, m.source, m.timestamp,
			bm25(message_search) AS score
		FROM message_search
		JOIN conversation_messages m ON m.id = message_search.message_id
		JOIN conversation_sessions cs ON cs.id = m.session_id
		JOIN projects p ON p.id = cs.project_id
		WHERE message_search MATCH ?
		ORDER BY score
		LIMIT ?`

	queryCountProjects = `SELECT COUNT(*) FROM projects`
	queryCountSessions = `SELECT COUNT(*) FROM conversation_sessions`
	queryCountMessages = `SELECT COUNT(*) FROM conversation_messages`
	queryCountNotes    = `SELECT COUNT(*) FROM notes`
	queryTodosByStatus = `SELECT status, COUNT(*) FROM todos GROUP BY status`
)
