package db

const userGetByIDQ = `
SELECT
	u.id,
	u.name,
	u.email,
	u.created_at,
	u.updated_at
FROM users u
WHERE u.id = $1
`

const userGetByEmailQ = `
SELECT
    u.id,
    u.name,
    u.email,
    u.password,
    u.created_at,
    u.updated_at
FROM users u
WHERE email = $1
`

const userCreateQ = `
INSERT INTO users (name, password, email)
VALUES ($1, $2, $3)
RETURNING id
`

const userDeleteQ = `
DELETE FROM users
WHERE id = $1
`
