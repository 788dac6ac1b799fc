package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

const signingSecretKey = "jwt_secret"

// SigningSecret is used when JWT_SECRET is left empty. The first call on
// a fresh database stores 32 random bytes, hex encoded, under the
// "jwt_secret" settings key; every later call, including after a restart,
// returns that same value so issued tokens stay valid. When several
// processes race on first start, only one insert wins and all of them read
// the winner back.
func SigningSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating signing secret: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		signingSecretKey, hex.EncodeToString(buf),
	)
	if err != nil {
		return "", fmt.Errorf("storing signing secret: %w", err)
	}

	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, signingSecretKey,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("reading signing secret: %w", err)
	}

	return secret, nil
}
