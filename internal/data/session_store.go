package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
)

// sessionTTL is refreshed on every save; an idle conversation expires back to
// the idle state on its own.
const sessionTTL = 30 * time.Minute

// sessionRepo redis-backed conversation state store
type sessionRepo struct {
	data *Data
	log  *log.Helper
}

// NewSessionRepo creates the session store.
func NewSessionRepo(data *Data, logger log.Logger) biz.SessionRepo {
	return &sessionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%s%d", constants.RedisKeySession, userID)
}

// GetSession returns nil, nil when the user has no session (idle).
func (r *sessionRepo) GetSession(ctx context.Context, userID int64) (*biz.Session, error) {
	raw, err := r.data.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s biz.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// Corrupt session is unrecoverable; drop it and report idle.
		r.log.Warnf("corrupt session for user %d, clearing: %v", userID, err)
		r.data.rdb.Del(ctx, sessionKey(userID))
		return nil, nil
	}
	return &s, nil
}

// SaveSession writes the session document and refreshes its TTL.
func (r *sessionRepo) SaveSession(ctx context.Context, userID int64, s *biz.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.data.rdb.Set(ctx, sessionKey(userID), raw, sessionTTL).Err()
}

// ClearSession removes the session, returning the user to idle.
func (r *sessionRepo) ClearSession(ctx context.Context, userID int64) error {
	return r.data.rdb.Del(ctx, sessionKey(userID)).Err()
}
