// Package session 服务端会话：token 只携带会话 id，当前用户信息保存在这里。
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"cryptosignals/internal/consts"
	"cryptosignals/internal/signal"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

var ErrNotFound = errors.New("session not found")

// User 会话中缓存的当前用户
type User struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  string      `json:"role"`
	Plan  signal.Tier `json:"plan"`
}

func (u User) IsAdmin() bool {
	return u.Role == consts.RoleAdmin
}

// ViewTier 浏览信号时使用的等级，没有计划的管理员按 premium 处理
func (u User) ViewTier() signal.Tier {
	if u.IsAdmin() && !u.Plan.Valid() {
		return signal.TierPremium
	}
	return u.Plan
}

type Store interface {
	Save(ctx context.Context, id string, u User, ttl time.Duration) error
	Load(ctx context.Context, id string) (User, error)
	Delete(ctx context.Context, id string) error
	// UpdateUser 覆盖 u.ID 所有在线会话中的用户信息，保留原有效期
	UpdateUser(ctx context.Context, u User) error
	// DeleteUser 删除 userID 的所有会话
	DeleteUser(ctx context.Context, userID int64) error
}

type redisStore struct {
	rc *redis.Client
}

func NewRedisStore(rc *redis.Client) Store {
	return &redisStore{rc: rc}
}

func (s *redisStore) Save(ctx context.Context, id string, u User, ttl time.Duration) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	index := indexKey(u.ID)
	_, err = s.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, consts.SessionPrefix+id, data, ttl)
		pipe.SAdd(ctx, index, id)
		if ttl > 0 {
			// 所有会话的有效期相同，索引跟随最新的会话
			pipe.Expire(ctx, index, ttl)
		}
		return nil
	})
	return err
}

func indexKey(userID int64) string {
	return consts.SessionIndexPrefix + strconv.FormatInt(userID, 10)
}

func (s *redisStore) Load(ctx context.Context, id string) (User, error) {
	data, err := s.rc.Get(ctx, consts.SessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Delete 只删除会话本身，索引里残留的 id 在 UpdateUser 时清理
func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.rc.Del(ctx, consts.SessionPrefix+id).Err()
}

func (s *redisStore) UpdateUser(ctx context.Context, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	index := indexKey(u.ID)
	ids, err := s.rc.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		ok, err := s.rc.SetXX(ctx, consts.SessionPrefix+id, data, redis.KeepTTL).Result()
		if err != nil {
			return err
		}
		if !ok {
			// 会话已过期或已退出
			if err := s.rc.SRem(ctx, index, id).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *redisStore) DeleteUser(ctx context.Context, userID int64) error {
	index := indexKey(userID)
	ids, err := s.rc.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, consts.SessionPrefix+id)
	}
	keys = append(keys, index)
	return s.rc.Del(ctx, keys...).Err()
}

type memoryEntry struct {
	user    User
	expires time.Time
}

// memoryStore 未配置 redis 时使用，进程重启后会话失效
type memoryStore struct {
	mu  sync.Mutex
	m   map[string]memoryEntry
	now func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{m: make(map[string]memoryEntry), now: time.Now}
}

func (s *memoryStore) Save(_ context.Context, id string, u User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.m[id] = memoryEntry{user: u, expires: exp}
	return nil
}

func (s *memoryStore) Load(_ context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.m, id)
		return User{}, ErrNotFound
	}
	return e.user, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *memoryStore) UpdateUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.m {
		if e.user.ID == u.ID {
			e.user = u
			s.m[id] = e
		}
	}
	return nil
}

func (s *memoryStore) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.m {
		if e.user.ID == userID {
			delete(s.m, id)
		}
	}
	return nil
}

// Attach 由鉴权中间件调用，每个请求只解析一次会话
func Attach(c *gin.Context, id string, u User) {
	c.Set(consts.SessionID, id)
	c.Set(consts.SessionUser, u)
	c.Set(consts.UserID, u.ID)
}

func FromContext(c *gin.Context) (User, bool) {
	v, ok := c.Get(consts.SessionUser)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

func IDFromContext(c *gin.Context) string {
	return c.GetString(consts.SessionID)
}
