package message

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

const (
	redisSeqKey          = "chat:message:seq"
	redisConversationKey = "chat:conversation:%d:%s:%s"
	redisAttachmentRefs  = "chat:attachment:refs"
)

// releaseRef drops ARGV[2] references to attachment ARGV[1] and returns how many remain.
var releaseRef = redis.NewScript(`
local n = redis.call('HINCRBY', KEYS[1], ARGV[1], -tonumber(ARGV[2]))
if n <= 0 then
	redis.call('HDEL', KEYS[1], ARGV[1])
end
return n
`)

// RedisStore keeps each conversation in a sorted set scored by the message timestamp in milliseconds.
type RedisStore struct {
	client redis.UniversalClient
	blobs  BlobDeleter
	logger zerolog.Logger
}

// NewRedisStore returns a durable store backed by client. blobs may be nil.
func NewRedisStore(client redis.UniversalClient, blobs BlobDeleter) *RedisStore {
	return &RedisStore{
		client: client,
		blobs:  blobs,
		logger: logx.Component("redis_message_store"),
	}
}

// conversationKey prefixes the length of the first id so ids containing ':' cannot collide.
func conversationKey(a, b string) string {
	lo, hi := ConversationKey(a, b)
	return fmt.Sprintf(redisConversationKey, len(lo), lo, hi)
}

// Append assigns a sequence id from Redis and adds the message to its conversation. Attachment
// references are counted so that clearing one conversation keeps files another still uses.
func (s *RedisStore) Append(ctx context.Context, m Message) (Message, error) {
	seq, err := s.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return Message{}, storageError("allocate message id", err)
	}
	m.ID = strconv.FormatInt(seq, 10)
	m.CreatedAt = m.CreatedAt.UTC()

	member, err := json.Marshal(m)
	if err != nil {
		return Message{}, storageError("encode message", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, conversationKey(m.SenderID, m.ReceiverID), redis.Z{
			Score:  float64(m.CreatedAt.UnixMilli()),
			Member: member,
		})
		if m.Attachment != nil && m.FileID != "" {
			pipe.HIncrBy(ctx, redisAttachmentRefs, m.FileID, 1)
		}
		return nil
	})
	if err != nil {
		return Message{}, storageError("add message", err)
	}

	return m, nil
}

func (s *RedisStore) History(ctx context.Context, a, b string) ([]Message, error) {
	members, err := s.client.ZRange(ctx, conversationKey(a, b), 0, -1).Result()
	if err != nil {
		return nil, storageError("read conversation", err)
	}

	out := s.decode(members)
	return slices.DeleteFunc(out, func(m Message) bool { return !m.Involves(a, b) }), nil
}

// Clear reads and deletes the conversation in one transaction, then removes attachments.
func (s *RedisStore) Clear(ctx context.Context, a, b string) (int, error) {
	key := conversationKey(a, b)

	var members *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		members = pipe.ZRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return 0, storageError("delete conversation", err)
	}

	deleteBlobs(ctx, s.blobs, s.release(ctx, s.decode(members.Val())), s.logger)

	return len(members.Val()), nil
}

// release drops the references held by cleared and returns the attachments nothing else uses.
func (s *RedisStore) release(ctx context.Context, cleared []Message) []string {
	counts := make(map[string]int)
	var order []string
	for _, m := range cleared {
		if m.Attachment == nil || m.FileID == "" {
			continue
		}
		if counts[m.FileID] == 0 {
			order = append(order, m.FileID)
		}
		counts[m.FileID]++
	}

	var orphaned []string
	for _, key := range order {
		left, err := releaseRef.Run(ctx, s.client, []string{redisAttachmentRefs}, key, counts[key]).Int64()
		if err != nil {
			s.logger.Warn().Err(err).Str("file_id", key).Msg("Failed to release attachment reference")
			continue
		}
		if left <= 0 {
			orphaned = append(orphaned, key)
		}
	}

	return orphaned
}

func (s *RedisStore) Durable() bool { return true }

// decode parses stored members, skipping entries that are not valid messages.
func (s *RedisStore) decode(members []string) []Message {
	out := make([]Message, 0, len(members))
	for _, raw := range members {
		var m Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			s.logger.Warn().Err(err).Msg("Skipping undecodable message in conversation")
			continue
		}
		out = append(out, m)
	}

	// Members sharing a score are ordered lexically by Redis; restore send order by sequence.
	slices.SortStableFunc(out, func(x, y Message) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		xi, _ := strconv.ParseInt(x.ID, 10, 64)
		yi, _ := strconv.ParseInt(y.ID, 10, 64)
		return cmp.Compare(xi, yi)
	})

	return out
}
