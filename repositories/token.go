//go:generate go run go.uber.org/mock/mockgen -source=token.go -destination=../mocks/mock_token_repository.go -package=mocks
package repositories

import (
	"chat-shell/errors"
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TokenKey is the single durable key holding the bearer token.
const TokenKey = "session:token"

// ITokenRepository persists one bearer token across restarts.
// Get returns nil when no token is stored.
type ITokenRepository interface {
	Get(ctx context.Context) (*string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type TokenRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewTokenRepository(db *badger.DB, log *slog.Logger) ITokenRepository {
	return &TokenRepository{db: db, log: log}
}

// Get reads the token inside a read-only transaction.
// An undecodable value is reported as a storage error, never returned as a token.
func (r *TokenRepository) Get(ctx context.Context) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.KindStorage, "token read cancelled", err)
	}
	var value wrapperspb.StringValue
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(TokenKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &value)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "token read failed", err)
	}
	if value.GetValue() == "" {
		return nil, nil
	}
	token := value.GetValue()
	return &token, nil
}

// Set replaces the stored token. Badger commits the transaction as a whole,
// so a crash leaves either the previous token or the new one.
func (r *TokenRepository) Set(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.KindStorage, "token write cancelled", err)
	}
	if token == "" {
		return errors.New(errors.KindValidation, "token is empty")
	}
	data, err := proto.Marshal(wrapperspb.String(token))
	if err != nil {
		return errors.Wrap(errors.KindStorage, "token encoding failed", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(TokenKey), data)
	})
	if err != nil {
		return errors.Wrap(errors.KindStorage, "token write failed", err)
	}
	r.log.Debug("Token persisted")
	return nil
}

// Clear removes the token. Clearing an empty store is not an error.
func (r *TokenRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.KindStorage, "token clear cancelled", err)
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(TokenKey))
	})
	if err != nil {
		return errors.Wrap(errors.KindStorage, "token clear failed", err)
	}
	r.log.Debug("Token cleared")
	return nil
}
