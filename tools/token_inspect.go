package main

import (
	"chat-shell/auth"
	"chat-shell/internal"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	dbPath := flag.String("db", config.BadgerFilepath, "Path to badger DB")
	prefix := flag.String("prefix", "session:", "Prefix to scan")
	reveal := flag.Bool("reveal", false, "Print tokens unmasked")
	flag.Parse()

	db, err := openReadOnly(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := internal.NewTable(os.Stdout, "Key", "Token", "User", "Expires", "Status")

	now := time.Now()
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				var value wrapperspb.StringValue
				if err := proto.Unmarshal(v, &value); err != nil {
					// Keep listing the other keys
					table.Append([]string{rawKey, fmt.Sprintf("<corrupt, %d bytes>", len(v)), "-", "-", "CORRUPT"})
					return nil
				}
				table.Append(describe(rawKey, value.GetValue(), *reveal, now))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func describe(key, token string, reveal bool, now time.Time) []string {
	shown := token
	if !reveal {
		shown = mask(token)
	}
	claims, ok := auth.PeekClaims(token)
	if !ok {
		return []string{key, shown, "-", "-", "OPAQUE"}
	}
	user, expires, status := "-", "never", "VALID"
	if claims.UserID != nil {
		user = fmt.Sprint(claims.UserID)
	}
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Local().Format(time.DateTime)
		if auth.IsExpired(token, now) {
			status = "EXPIRED"
		}
	}
	return []string{key, shown, user, expires, status}
}

func mask(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-6:]
}

// openReadOnly opens the store without taking the directory lock, so the
// shell may keep running while tokens are inspected.
func openReadOnly(path string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open %s read-only: %w", path, err)
	}
	return db, nil
}
