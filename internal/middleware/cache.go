package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/DJaayy/slot-booking/internal/config"
)

// Cache is a Redis response cache for the read-heavy week-view and
// statistics endpoints. Because the underlying data changes with
// every booking, cache keys embed a ledger generation counter that
// Bump() advances on each mutation; old generations simply expire.
// TTL is therefore a storage bound, not the staleness bound.
type Cache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewCache returns a Cache. rdb may be nil, in which case both the
// middleware and Bump degrade to no-ops.
func NewCache(cfg config.CacheConfig, rdb *redis.Client) *Cache {
	return &Cache{cfg: cfg, rdb: rdb}
}

func (cc *Cache) enabled() bool { return cc != nil && cc.cfg.Enabled && cc.rdb != nil }

// Bump invalidates every cached response by advancing the ledger
// generation. Call it after any successful mutation of slots,
// releases, or templates.
func (cc *Cache) Bump(ctx context.Context) {
	if !cc.enabled() {
		return
	}
	_ = cc.rdb.Incr(ctx, cc.cfg.Prefix+":gen").Err()
}

func (cc *Cache) generation(ctx context.Context) string {
	gen, err := cc.rdb.Get(ctx, cc.cfg.Prefix+":gen").Result()
	if err != nil {
		return "0"
	}
	return gen
}

func (cc *Cache) key(gen string, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.Method + ":" + c.Path() + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", cc.cfg.Prefix, gen, sum)
}

// Middleware caches successful GET responses. Responses larger than
// MaxBodyBytes are served but not stored.
func (cc *Cache) Middleware() echo.MiddlewareFunc {
	if !cc.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cc.cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cc.key(cc.generation(ctx), c)

			if payload, err := cc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, ctype, body, ok := decodeCached(payload); ok {
					c.Response().Header().Set(echo.HeaderContentType, ctype)
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(status, ctype, body)
				}
			}

			rec := &recordingWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && rec.buf.Len() <= cc.cfg.MaxBodyBytes {
				ctype := c.Response().Header().Get(echo.HeaderContentType)
				payload := encodeCached(rec.status, ctype, rec.buf.Bytes())
				_ = cc.rdb.SetEx(context.Background(), key, payload, ttl).Err()
			}
			return nil
		}
	}
}

// recordingWriter tees the response body into a buffer while
// forwarding it to the client.
type recordingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *recordingWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// encodeCached packs: [2 bytes status][2 bytes ctypeLen][ctype][body].
func encodeCached(status int, ctype string, body []byte) []byte {
	out := make([]byte, 4+len(ctype)+len(body))
	binary.BigEndian.PutUint16(out[0:2], uint16(status))
	binary.BigEndian.PutUint16(out[2:4], uint16(len(ctype)))
	copy(out[4:], ctype)
	copy(out[4+len(ctype):], body)
	return out
}

func decodeCached(payload []byte) (status int, ctype string, body []byte, ok bool) {
	if len(payload) < 4 {
		return 0, "", nil, false
	}
	status = int(binary.BigEndian.Uint16(payload[0:2]))
	n := int(binary.BigEndian.Uint16(payload[2:4]))
	if 4+n > len(payload) {
		return 0, "", nil, false
	}
	return status, string(payload[4 : 4+n]), payload[4+n:], true
}
