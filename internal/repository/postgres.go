package repository

import (
	"context"
	"database/sql"

	"github.com/atinyakov/usersvc/internal/models"
	"github.com/lib/pq"
)

// PostgresUserRepository keeps the user collection in the users table.
// It honours the same whole-collection contract as FileUserRepository:
// every write replaces all rows inside one transaction.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance with the users table in place.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// ReadUsers fetches all users in collection order.
func (s *PostgresUserRepository) ReadUsers(ctx context.Context) (models.Collection, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, firstname, secondname, age, city FROM users ORDER BY position
	`)
	if err != nil {
		return nil, storageError("read users", err)
	}
	defer rows.Close()

	users := models.Collection{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Firstname, &u.Secondname, &u.Age, &u.City); err != nil {
			return nil, storageError("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("read users", err)
	}
	return users, nil
}

// WriteUsers replaces the stored collection with users within a transaction.
// Rows are inserted in one statement from parallel arrays.
func (s *PostgresUserRepository) WriteUsers(ctx context.Context, users models.Collection) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return storageError("clear users", err)
	}

	if len(users) > 0 {
		positions := make([]int64, len(users))
		ids := make([]int64, len(users))
		firstnames := make([]string, len(users))
		secondnames := make([]string, len(users))
		ages := make([]float64, len(users))
		cities := make([]string, len(users))
		for i, u := range users {
			positions[i] = int64(i)
			ids[i] = int64(u.ID)
			firstnames[i] = u.Firstname
			secondnames[i] = u.Secondname
			ages[i] = u.Age
			cities[i] = u.City
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (position, id, firstname, secondname, age, city)
			SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::text[], $4::text[], $5::float8[], $6::text[])
		`, pq.Array(positions), pq.Array(ids), pq.Array(firstnames),
			pq.Array(secondnames), pq.Array(ages), pq.Array(cities))
		if err != nil {
			return storageError("insert users", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("commit", err)
	}
	return nil
}
