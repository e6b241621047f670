package db

const sessionDeleteSlotQ = `
DELETE FROM sessions
WHERE user_id = $1 AND device_id = $2
`

const sessionInsertQ = `
INSERT INTO sessions (user_id, device_id, token, created_at, last_used_at, expires_at)
VALUES ($1, $2, $3, $4, $4, $5)
RETURNING user_id, device_id, token, created_at, last_used_at, expires_at
`

const sessionGetQ = `
SELECT user_id, device_id, token, created_at, last_used_at, expires_at
FROM sessions
WHERE user_id = $1 AND device_id = $2
`

const sessionListByUserQ = `
SELECT user_id, device_id, token, created_at, last_used_at, expires_at
FROM sessions
WHERE user_id = $1
ORDER BY last_used_at ASC, created_at ASC
`

const sessionRotateQ = `
UPDATE sessions
SET token = $4, last_used_at = $5
WHERE user_id = $1 AND device_id = $2 AND token = $3 AND expires_at > $5
RETURNING user_id, device_id, token, created_at, last_used_at, expires_at
`

const sessionTouchQ = `
UPDATE sessions
SET last_used_at = $3
WHERE user_id = $1 AND device_id = $2 AND expires_at > $3
RETURNING user_id, device_id, token, created_at, last_used_at, expires_at
`

const sessionDeleteQ = `
DELETE FROM sessions
WHERE user_id = $1 AND device_id = $2
RETURNING user_id, device_id, token, created_at, last_used_at, expires_at
`

const sessionDeleteByUserQ = `
DELETE FROM sessions
WHERE user_id = $1
RETURNING user_id, device_id, token, created_at, last_used_at, expires_at
`

const sessionDeleteExpiredQ = `
DELETE FROM sessions
WHERE expires_at <= $1
`
