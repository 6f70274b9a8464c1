package history

// Schema contains SQL schema definitions for the run-history database
const Schema = `
-- Runs table: one row per completed reconciliation run
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    business_date TEXT NOT NULL,
    messages_processed INTEGER NOT NULL DEFAULT 0,
    attachments_saved INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Saved attachments table: one row per archived attachment copy
CREATE TABLE IF NOT EXISTS saved_attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    row_index INTEGER NOT NULL,
    sender TEXT NOT NULL,
    subject TEXT NOT NULL,
    attachment TEXT NOT NULL,
    saved_path TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Create indexes for faster queries
CREATE INDEX IF NOT EXISTS idx_saved_attachments_run_id ON saved_attachments(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_business_date ON runs(business_date);
`
