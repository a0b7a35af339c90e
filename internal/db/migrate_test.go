package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/testutil"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	dsn := testutil.StartPostgres(t)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := RunMigrations(ctx, pool, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init.up.sql", "0002_procedures.up.sql", "0003_audit_log.up.sql"}, applied)
	return pool
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func TestMigrationsAndProcedures(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		applied, err := RunMigrations(ctx, pool, zap.NewNop())
		require.NoError(t, err)
		assert.Empty(t, applied)
	})

	alice, bob, admin := uuid.NewString(), uuid.NewString(), uuid.NewString()
	for _, p := range []struct{ id, name, role string }{{alice, "alice", "user"}, {bob, "bob", "user"}, {admin, "root", "admin"}} {
		_, err := pool.Exec(ctx, `INSERT INTO profiles(id, email, username, role) VALUES($1, $2, $3, $4)`,
			p.id, p.name+"@example.com", p.name, p.role)
		require.NoError(t, err)
	}
	balance := func(id string) decimal.Decimal {
		var b decimal.Decimal
		require.NoError(t, pool.QueryRow(ctx, `SELECT balance::text FROM profiles WHERE id=$1`, id).Scan(&b))
		return b
	}

	t.Run("deposit approval credits balance", func(t *testing.T) {
		reqID := uuid.NewString()
		_, err := pool.Exec(ctx, `INSERT INTO payment_requests(id, user_id, kind, amount, method) VALUES($1,$2,'deposit',100,'card')`, reqID, alice)
		require.NoError(t, err)

		var status string
		require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM process_payment_request($1, true, $2, '')`, reqID, admin).Scan(&status))
		assert.Equal(t, "approved", status)
		assert.True(t, balance(alice).Equal(decimal.NewFromInt(100)))

		_, err = pool.Exec(ctx, `SELECT process_payment_request($1, false, $2, 'again')`, reqID, admin)
		assert.Equal(t, "P0001", pgCode(err))

		_, err = pool.Exec(ctx, `SELECT process_payment_request($1, true, $2, '')`, uuid.NewString(), admin)
		assert.Equal(t, "P0002", pgCode(err))
	})

	var gameID string
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO games(title, game_type, start_time, options)
		VALUES('Derby', 'football', now() + interval '1 hour',
		'[{"key":"home","label":"Home","odds":2.5},{"key":"away","label":"Away","odds":1.5}]')
		RETURNING id`).Scan(&gameID))

	t.Run("place bet debits balance", func(t *testing.T) {
		var potential decimal.Decimal
		require.NoError(t, pool.QueryRow(ctx, `SELECT potential_payout::text FROM place_bet($1, $2, 'home', 40)`, alice, gameID).Scan(&potential))
		assert.True(t, potential.Equal(decimal.NewFromInt(100)))
		assert.True(t, balance(alice).Equal(decimal.NewFromInt(60)))

		_, err := pool.Exec(ctx, `SELECT place_bet($1, $2, 'home', 500)`, alice, gameID)
		assert.Equal(t, "P0001", pgCode(err))
		_, err = pool.Exec(ctx, `SELECT place_bet($1, $2, 'draw', 5)`, alice, gameID)
		assert.Equal(t, "P0001", pgCode(err))
	})

	t.Run("deleting a game with bets violates the foreign key", func(t *testing.T) {
		_, err := pool.Exec(ctx, `DELETE FROM games WHERE id=$1`, gameID)
		assert.Equal(t, "23503", pgCode(err))
	})

	t.Run("settle pays winners", func(t *testing.T) {
		rows, err := pool.Query(ctx, `SELECT user_id::text, status FROM settle_game($1, 'home')`, gameID)
		require.NoError(t, err)
		var n int
		for rows.Next() {
			var uid, status string
			require.NoError(t, rows.Scan(&uid, &status))
			assert.Equal(t, alice, uid)
			assert.Equal(t, "won", status)
			n++
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, 1, n)
		assert.True(t, balance(alice).Equal(decimal.NewFromInt(160)))

		_, err = pool.Exec(ctx, `SELECT * FROM settle_game($1, 'home')`, gameID)
		assert.Equal(t, "P0001", pgCode(err))
	})

	t.Run("referral credits referrer once", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE profiles SET referral_code='ALICE123' WHERE id=$1`, alice)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `SELECT apply_referral($1, 'alice123')`, bob)
		require.NoError(t, err)
		assert.True(t, balance(alice).Equal(decimal.NewFromInt(170)))

		_, err = pool.Exec(ctx, `SELECT apply_referral($1, 'ALICE123')`, bob)
		assert.Equal(t, "P0001", pgCode(err))
	})

	t.Run("admin adjustment cannot go negative", func(t *testing.T) {
		_, err := pool.Exec(ctx, `SELECT adjust_user_balance($1, -1000, 'chargeback', $2)`, bob, admin)
		assert.Equal(t, "P0001", pgCode(err))

		var out string
		require.NoError(t, pool.QueryRow(ctx, `SELECT adjust_user_balance($1, 25, 'goodwill', $2)::text`, bob, admin).Scan(&out))
		assert.JSONEq(t, `{"new_balance":25.00}`, out)
	})

	t.Run("stats", func(t *testing.T) {
		var stats string
		require.NoError(t, pool.QueryRow(ctx, `SELECT get_user_bet_stats($1)::text`, alice).Scan(&stats))
		assert.Contains(t, stats, `"won" : 1`)

		var sent int
		require.NoError(t, pool.QueryRow(ctx, `SELECT broadcast_notification('Hi', 'Welcome', 'info')`).Scan(&sent))
		assert.Equal(t, 3, sent)
	})
}
