package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/blog-backend/internal/config"
    "github.com/iliyamo/blog-backend/internal/logging"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// ResponseCache caches successful public GET responses in Redis.  Entries are
// namespaced by a generation counter; any successful mutating request that
// passes through the same middleware bumps the generation, so readers never
// see a post list or detail that predates a create, update or delete.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
}

// NewRedisCache returns a cache bound to rdb.  With a nil client or a
// disabled config the middleware is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

func (rc *ResponseCache) generationKey() string { return rc.cfg.Prefix + ":gen" }

// generation returns the current cache generation; a missing key is 0.
func (rc *ResponseCache) generation(ctx context.Context) (int64, error) {
    n, err := rc.rdb.Get(ctx, rc.generationKey()).Int64()
    if errors.Is(err, redis.Nil) {
        return 0, nil
    }
    return n, err
}

// Invalidate bumps the generation so every cached entry becomes unreachable.
func (rc *ResponseCache) Invalidate(ctx context.Context) {
    if !rc.enabled() {
        return
    }
    if err := rc.rdb.Incr(ctx, rc.generationKey()).Err(); err != nil {
        logging.From(ctx).Warn("cache invalidation failed", "err", err)
    }
}

// Middleware serves GET/HEAD from the cache and invalidates it after a
// successful POST, PUT, PATCH or DELETE.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    if !rc.enabled() {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    maxBody := int64(rc.cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            method := strings.ToUpper(c.Request().Method)
            if method != http.MethodGet && method != http.MethodHead {
                err := next(c)
                if err == nil && isSuccess(c.Response().Status) {
                    // The write is already committed; a client hang-up must not skip this.
                    rc.Invalidate(context.WithoutCancel(c.Request().Context()))
                }
                return err
            }

            ctx := c.Request().Context()
            gen, err := rc.generation(ctx)
            if err != nil {
                logging.From(ctx).Warn("cache generation read failed, bypassing cache", "err", err)
                return next(c)
            }
            key := cacheKeyFrom(rc.cfg, gen, c)

            // Try get from Redis
            if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        // Echo sets Content-Length itself
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 && method == http.MethodGet {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            // Miss: capture
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if cw.status == http.StatusOK && method == http.MethodGet && (maxBody <= 0 || cw.size <= maxBody) {
                hdr := c.Response().Header().Clone()
                hdr.Del("X-Cache")
                if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                    _ = rc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err()
                }
            }
            return nil
        }
    }
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

// cacheKeyFrom builds a stable key: prefix, generation and a digest of the
// request path (plus query for the route_query strategy).
func cacheKeyFrom(cfg config.CacheConfig, gen int64, c echo.Context) string {
    r := c.Request()
    parts := []string{"path", r.URL.Path}
    if cfg.Strategy() == "route_query" {
        parts = append(parts, "q", r.URL.Query().Encode())
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%d:%x", cfg.Prefix, gen, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    hdr := make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+hlen:], true
}
