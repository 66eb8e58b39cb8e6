package mysql

// Same DDL as migrations/001_submissions.sql; Migrate runs it at startup.
const createSubmissionsSQL = `
CREATE TABLE IF NOT EXISTS hotel_submissions (
  id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  hotel_id   VARCHAR(64)     NULL,
  action     VARCHAR(16)     NOT NULL,
  ok         TINYINT(1)      NOT NULL,
  message    VARCHAR(512)    NULL,
  created_at DATETIME(3)     NOT NULL,
  PRIMARY KEY (id),
  KEY idx_submissions_created (created_at, id),
  KEY idx_submissions_hotel (hotel_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const insertSubmissionSQL = `
INSERT INTO hotel_submissions (hotel_id, action, ok, message, created_at)
VALUES (?, ?, ?, ?, ?)
`

// Newest first; matches idx_submissions_created.
const listSubmissionsSQL = `
SELECT id, hotel_id, action, ok, message, created_at
FROM hotel_submissions
ORDER BY created_at DESC, id DESC
LIMIT ?
`
