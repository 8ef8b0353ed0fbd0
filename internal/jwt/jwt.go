package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"tichu-server/internal/config"
)

// Issuer issues the JWT
const Issuer = "tichu-server"

// Audience is the intended JWT audience
const Audience = "tichu-seat"

// ErrInvalidSeat is returned when the token does not describe a seat
var ErrInvalidSeat = errors.New("token does not hold a valid seat")

var secret []byte
var ttl = 24 * time.Hour

// SeatClaims binds a token to a player's seat in a room
type SeatClaims struct {
	RoomUUID string `json:"room"`
	jwtgo.RegisteredClaims
}

// LoadKey will load the signing secret from the configuration
// this method should only be called once.
func LoadKey() {
	cfg := config.Instance()
	if cfg.JWT.Secret == "" {
		logrus.Fatal("missing jwt secret in configuration")
	}

	SetKey([]byte(cfg.JWT.Secret), cfg.TokenTTL())
}

// SetKey sets the signing secret and how long tokens are valid
func SetKey(key []byte, tokenTTL time.Duration) {
	secret = key
	if tokenTTL > 0 {
		ttl = tokenTTL
	}
}

// Sign will sign a JWT for the player sitting in the room
func Sign(roomUUID string, playerID int64) (string, error) {
	if secret == nil {
		panic("LoadKey() not called")
	}

	now := time.Now()
	token := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, SeatClaims{
		RoomUUID: roomUUID,
		RegisteredClaims: jwtgo.RegisteredClaims{
			Audience:  jwtgo.ClaimStrings{Audience},
			ID:        uuid.New().String(),
			IssuedAt:  jwtgo.NewNumericDate(now),
			ExpiresAt: jwtgo.NewNumericDate(now.Add(ttl)),
			Issuer:    Issuer,
			Subject:   strconv.FormatInt(playerID, 10),
		},
	})

	return token.SignedString(secret)
}

// ValidSeat will validate a signed JWT and return the room and player it was issued for
func ValidSeat(signedString string) (string, int64, error) {
	if secret == nil {
		panic("LoadKey() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &SeatClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, errors.New("expected HS256 signing method")
		}

		return secret, nil
	}, jwtgo.WithAudience(Audience), jwtgo.WithIssuer(Issuer))

	if err != nil {
		return "", 0, err
	}

	claims, ok := token.Claims.(*SeatClaims)
	if !ok {
		return "", 0, fmt.Errorf("expected SeatClaims, got %T", token.Claims)
	}

	if claims.RoomUUID == "" {
		return "", 0, ErrInvalidSeat
	}

	playerID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", 0, ErrInvalidSeat
	}

	return claims.RoomUUID, playerID, nil
}
