// Command token mints a development JWT accepted by the hub and, optionally,
// seeds room membership for that user.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/dkeye/Huddle/internal/auth"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		userID     = flag.Int64P("user", "u", 0, "user id (required)")
		name       = flag.StringP("name", "n", "", "display name")
		email      = flag.String("email", "", "email claim")
		ttl        = flag.Duration("ttl", 24*time.Hour, "token lifetime")
		createRoom = flag.String("create-room", "", "create a room owned by the user")
		joinRoom   = flag.Int64("join-room", 0, "add the user as a member of this room")
	)
	flag.Parse()

	if *userID <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	id, err := domain.NewIdentity(domain.UserID(*userID), *name, *email)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid identity")
	}

	if *createRoom != "" || *joinRoom > 0 {
		if err := seed(cfg, id, *createRoom, domain.RoomID(*joinRoom)); err != nil {
			log.Fatal().Err(err).Msg("seed membership")
		}
	}

	v, err := auth.NewJWTVerifier(auth.Config{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: *ttl})
	if err != nil {
		log.Fatal().Err(err).Msg("verifier")
	}
	token, err := v.Sign(id)
	if err != nil {
		log.Fatal().Err(err).Msg("sign")
	}
	fmt.Println(token)
}

func seed(cfg *config.Config, id domain.Identity, roomName string, roomID domain.RoomID) error {
	st, err := store.Open(store.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN, AutoMigrate: cfg.Database.AutoMigrate})
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if roomName != "" {
		created, err := st.CreateRoom(ctx, roomName, id.UserID, false)
		if err != nil {
			return err
		}
		log.Info().Int64("room", int64(created)).Str("name", roomName).Msg("room created")
	}
	if roomID > 0 {
		if err := st.AddMember(ctx, roomID, id.UserID); err != nil {
			return err
		}
		log.Info().Int64("room", int64(roomID)).Int64("user", int64(id.UserID)).Msg("member added")
	}
	return nil
}
