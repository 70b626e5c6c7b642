package nodes

import (
	"context"
	"fmt"
	"strconv"
	"time"

	rd "github.com/go-redis/redis/v9"

	"github.com/aiinpocket/n3n-core/conncache"
	"github.com/aiinpocket/n3n-core/handler"
	"github.com/aiinpocket/n3n-core/model"
	"github.com/aiinpocket/n3n-core/schema"
)

const redisOpTimeout = 10 * time.Second

var _ handler.OperationHandler = new(redisHandler)

// redisHandler is the redis integration: key, string and hash operations on
// clients shared through the connection cache, keyed by the credential's
// identifying fields.
type redisHandler struct {
	clients *conncache.Cache[*rd.Client]
}

// NewRedisHandler builds the handler around an injected client cache; the
// owner is responsible for the cache's Shutdown.
func NewRedisHandler(clients *conncache.Cache[*rd.Client]) handler.OperationHandler {
	return &redisHandler{clients: clients}
}

// NewRedisClientCache builds a client cache suitable for NewRedisHandler.
func NewRedisClientCache(ttl time.Duration) *conncache.Cache[*rd.Client] {
	return conncache.New(ttl, func(client *rd.Client) error {
		return client.Close()
	})
}

func (h *redisHandler) Type() string {
	return "redis"
}

func (h *redisHandler) Resources() map[string]schema.ResourceDef {
	return map[string]schema.ResourceDef{
		"key":    schema.Resource("key", "Key", "Generic key management"),
		"string": schema.Resource("string", "String", "String value operations"),
		"hash":   schema.Resource("hash", "Hash", "Hash field operations"),
	}
}

func (h *redisHandler) Operations() map[string][]schema.OperationDef {
	return map[string][]schema.OperationDef{
		"key": {
			schema.Operation("delete", "Delete", "Delete one key",
				schema.String("key", "Key").AsRequired(),
			).WithOutput("deleted count"),
			schema.Operation("exists", "Exists", "Check whether a key exists",
				schema.String("key", "Key").AsRequired(),
			).WithOutput("exists flag"),
			schema.Operation("expire", "Expire", "Set a key's time to live",
				schema.String("key", "Key").AsRequired(),
				schema.Integer("seconds", "Seconds").AsRequired().WithRange(1, 86400*30),
			).WithOutput("ok flag"),
			schema.Operation("keys", "Keys", "List keys matching a pattern",
				schema.String("pattern", "Pattern").WithDefault("*"),
			).WithOutput("matching keys"),
		},
		"string": {
			schema.Operation("get", "Get", "Read a string value",
				schema.String("key", "Key").AsRequired(),
			).WithOutput("value and found flag"),
			schema.Operation("set", "Set", "Write a string value",
				schema.String("key", "Key").AsRequired(),
				schema.Textarea("value", "Value").AsRequired(),
				schema.Integer("ttlSeconds", "TTL Seconds").WithDescription("0 keeps the key forever"),
			).WithOutput("ok flag"),
			schema.Operation("increment", "Increment", "Increment a counter",
				schema.String("key", "Key").AsRequired(),
				schema.Integer("by", "By").WithDefault(1),
			).WithOutput("new value"),
		},
		"hash": {
			schema.Operation("get", "Get", "Read one hash field",
				schema.String("key", "Key").AsRequired(),
				schema.String("field", "Field").AsRequired(),
			).WithOutput("value and found flag"),
			schema.Operation("set", "Set", "Write one hash field",
				schema.String("key", "Key").AsRequired(),
				schema.String("field", "Field").AsRequired(),
				schema.Textarea("value", "Value").AsRequired(),
			).WithOutput("ok flag"),
			schema.Operation("getAll", "Get All", "Read every field of a hash",
				schema.String("key", "Key").AsRequired(),
			).WithOutput("field map"),
			schema.Operation("delete", "Delete", "Delete hash fields",
				schema.String("key", "Key").AsRequired(),
				schema.String("field", "Field").AsRequired(),
			).WithOutput("deleted count"),
		},
	}
}

func (h *redisHandler) ExecuteOperation(_ model.NodeExecutionContext, resource string, operation string,
	credential map[string]any, params map[string]any) model.NodeExecutionResult {

	client, err := h.client(credential)
	if err != nil {
		return model.ExecutionFailure(fmt.Sprintf("redis connection failed: %v", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	key := handler.StringParam(params, "key", "")
	switch resource + "." + operation {
	case "key.delete":
		n, err := client.Del(ctx, key).Result()
		return wrap("delete", err, map[string]any{"deleted": n})
	case "key.exists":
		n, err := client.Exists(ctx, key).Result()
		return wrap("exists", err, map[string]any{"exists": n > 0})
	case "key.expire":
		seconds := handler.IntParam(params, "seconds", 0)
		ok, err := client.Expire(ctx, key, time.Duration(seconds)*time.Second).Result()
		return wrap("expire", err, map[string]any{"ok": ok})
	case "key.keys":
		pattern := handler.StringParam(params, "pattern", "*")
		keys, err := client.Keys(ctx, pattern).Result()
		return wrap("keys", err, map[string]any{"keys": keys, "count": len(keys)})
	case "string.get":
		value, err := client.Get(ctx, key).Result()
		if err == rd.Nil {
			return model.ExecutionSuccess(map[string]any{"value": nil, "found": false})
		}
		return wrap("get", err, map[string]any{"value": value, "found": true})
	case "string.set":
		value := handler.StringParam(params, "value", "")
		ttl := time.Duration(handler.IntParam(params, "ttlSeconds", 0)) * time.Second
		err := client.Set(ctx, key, value, ttl).Err()
		return wrap("set", err, map[string]any{"ok": true})
	case "string.increment":
		by := handler.IntParam(params, "by", 1)
		value, err := client.IncrBy(ctx, key, int64(by)).Result()
		return wrap("increment", err, map[string]any{"value": value})
	case "hash.get":
		field := handler.StringParam(params, "field", "")
		value, err := client.HGet(ctx, key, field).Result()
		if err == rd.Nil {
			return model.ExecutionSuccess(map[string]any{"value": nil, "found": false})
		}
		return wrap("hget", err, map[string]any{"value": value, "found": true})
	case "hash.set":
		field := handler.StringParam(params, "field", "")
		value := handler.StringParam(params, "value", "")
		err := client.HSet(ctx, key, field, value).Err()
		return wrap("hset", err, map[string]any{"ok": true})
	case "hash.getAll":
		fields, err := client.HGetAll(ctx, key).Result()
		return wrap("hgetall", err, map[string]any{"fields": fields, "count": len(fields)})
	case "hash.delete":
		field := handler.StringParam(params, "field", "")
		n, err := client.HDel(ctx, key, field).Result()
		return wrap("hdel", err, map[string]any{"deleted": n})
	default:
		return model.ExecutionFailure(fmt.Sprintf("Unknown operation: %s for resource: %s", operation, resource))
	}
}

// client returns the cached client for the credential, constructing and
// verifying a new one when the cached entry is stale or absent.
func (h *redisHandler) client(credential map[string]any) (*rd.Client, error) {
	host := handler.CredentialValue(credential, "host")
	if host == "" {
		host = "localhost"
	}
	port := handler.CredentialValue(credential, "port")
	if port == "" {
		port = "6379"
	}
	username := handler.CredentialValue(credential, "username")
	password := handler.CredentialValue(credential, "password")
	db, _ := strconv.Atoi(handler.CredentialValue(credential, "database"))

	cacheKey := conncache.Key("redis", host, port, strconv.Itoa(db), username)
	return h.clients.GetOrCreate(cacheKey, func() (*rd.Client, error) {
		client := rd.NewClient(&rd.Options{
			Addr:     host + ":" + port,
			Username: username,
			Password: password,
			DB:       db,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, err
		}
		return client, nil
	})
}

func wrap(operation string, err error, output map[string]any) model.NodeExecutionResult {
	if err != nil {
		return model.ExecutionFailure(fmt.Sprintf("redis %s failed: %v", operation, err))
	}
	return model.ExecutionSuccess(output)
}
