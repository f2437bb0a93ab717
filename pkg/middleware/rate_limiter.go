package middleware

import (
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/code-100-precent/LingMeme/pkg/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const defaultRate = "1000-M"

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// Rate ulule 格式，如 "10-S"、"1000-M"
	Rate string
	// Identifier ip | session；其余值按 ip 处理
	Identifier string
	// SkipPaths 前缀匹配的免限流路径
	SkipPaths      []string
	WhitelistCIDRs []string
	BlacklistCIDRs []string
}

// RateLimitObserver receives every decision
type RateLimitObserver interface {
	OnAllow(route, key string)
	OnDeny(route, key string)
}

// StoreFactory builds the limiter backend
type StoreFactory interface {
	NewStore() (limiter.Store, error)
}

// PrebuiltStoreFactory returns an existing store
type PrebuiltStoreFactory struct {
	Store limiter.Store
}

func (f *PrebuiltStoreFactory) NewStore() (limiter.Store, error) {
	return f.Store, nil
}

// RedisStoreFactory shares counters between instances through redis
type RedisStoreFactory struct {
	Client *redis.Client
	Prefix string
}

func (f *RedisStoreFactory) NewStore() (limiter.Store, error) {
	prefix := f.Prefix
	if prefix == "" {
		prefix = "lingmeme:limiter"
	}
	return redisstore.NewStoreWithOptions(f.Client, limiter.StoreOptions{Prefix: prefix})
}

// RateLimiter wraps ulule/limiter for gin
type RateLimiter struct {
	mu           sync.RWMutex
	cfg          RateLimiterConfig
	store        limiter.Store
	storeFactory StoreFactory
	observer     RateLimitObserver
	limiter      *limiter.Limiter
	whitelist    []*net.IPNet
	blacklist    []*net.IPNet
}

// NewRateLimiter store 为空时使用内存存储
func NewRateLimiter(cfg RateLimiterConfig, store limiter.Store) *RateLimiter {
	if store == nil {
		store = memory.NewStore()
	}
	rl := &RateLimiter{store: store}
	rl.UpdateConfig(cfg)
	return rl
}

// WithStoreFactory swaps the backend; on failure the current store is kept
func (rl *RateLimiter) WithStoreFactory(f StoreFactory) *RateLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.storeFactory = f
	store, err := f.NewStore()
	if err != nil {
		logger.Warn("rate limiter store unavailable, keep current", zap.Error(err))
		return rl
	}
	rl.store = store
	rl.limiter = limiter.New(store, rl.limiter.Rate)
	return rl
}

func (rl *RateLimiter) WithObserver(o RateLimitObserver) *RateLimiter {
	rl.mu.Lock()
	rl.observer = o
	rl.mu.Unlock()
	return rl
}

// UpdateConfig 重新解析速率与黑白名单
func (rl *RateLimiter) UpdateConfig(cfg RateLimiterConfig) {
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		logger.Warn("invalid rate limit, fallback", zap.String("rate", cfg.Rate), zap.Error(err))
		rate, _ = limiter.NewRateFromFormatted(defaultRate)
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cfg = cfg
	rl.limiter = limiter.New(rl.store, rate)
	rl.whitelist = parseCIDRs(cfg.WhitelistCIDRs)
	rl.blacklist = parseCIDRs(cfg.BlacklistCIDRs)
}

func parseCIDRs(list []string) []*net.IPNet {
	var out []*net.IPNet
	for _, s := range list {
		_, n, err := net.ParseCIDR(strings.TrimSpace(s))
		if err != nil {
			logger.Warn("invalid CIDR ignored", zap.String("cidr", s))
			continue
		}
		out = append(out, n)
	}
	return out
}

func contains(nets []*net.IPNet, ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) key(c *gin.Context, cfg RateLimiterConfig) string {
	if cfg.Identifier == "session" {
		if s := sessionValue(c); s != "" {
			return "session:" + s
		}
	}
	return "ip:" + c.ClientIP()
}

func sessionValue(c *gin.Context) (v string) {
	defer func() {
		// sessions 中间件未挂载时 Default 会 panic
		if recover() != nil {
			v = ""
		}
	}()
	if id, ok := sessions.Default(c).Get(constants.EditorSessionKey).(string); ok {
		return id
	}
	return ""
}

// Middleware returns the gin handler
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.mu.RLock()
		cfg, lim, obs := rl.cfg, rl.limiter, rl.observer
		white, black := rl.whitelist, rl.blacklist
		rl.mu.RUnlock()

		path := c.Request.URL.Path
		for _, p := range cfg.SkipPaths {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		route := c.FullPath()
		if route == "" {
			route = path
		}
		ip := net.ParseIP(c.ClientIP())
		if contains(white, ip) {
			c.Next()
			return
		}
		key := rl.key(c, cfg)
		if contains(black, ip) {
			if obs != nil {
				obs.OnDeny(route, key)
			}
			c.AbortWithStatusJSON(429, gin.H{"error": "too many requests"})
			return
		}

		ctx, err := lim.Get(c.Request.Context(), key)
		if err != nil {
			// 存储不可用时放行
			logger.Warn("rate limiter store error", zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			if obs != nil {
				obs.OnDeny(route, key)
			}
			c.AbortWithStatusJSON(429, gin.H{"error": "too many requests"})
			return
		}
		if obs != nil {
			obs.OnAllow(route, key)
		}
		c.Next()
	}
}

// PrometheusObserver counts decisions per route
type PrometheusObserver struct {
	allow *prometheus.CounterVec
	deny  *prometheus.CounterVec
}

func NewPrometheusObserver() *PrometheusObserver {
	return &PrometheusObserver{
		allow: metrics.RateLimited.MustCurryWith(prometheus.Labels{"result": "allow"}),
		deny:  metrics.RateLimited.MustCurryWith(prometheus.Labels{"result": "deny"}),
	}
}

func (p *PrometheusObserver) OnAllow(route, _ string) {
	p.allow.WithLabelValues(route).Inc()
}

func (p *PrometheusObserver) OnDeny(route, _ string) {
	p.deny.WithLabelValues(route).Inc()
}

var (
	globalRLMu    sync.RWMutex
	globalRLCfg   = RateLimiterConfig{Rate: defaultRate, Identifier: "ip"}
	globalRLStore limiter.Store
)

func SetRateLimiterConfig(cfg RateLimiterConfig) {
	globalRLMu.Lock()
	globalRLCfg = cfg
	globalRLMu.Unlock()
}

func GetRateLimiterConfig() RateLimiterConfig {
	globalRLMu.RLock()
	defer globalRLMu.RUnlock()
	return globalRLCfg
}

func SetRateLimiterStore(store limiter.Store) {
	globalRLMu.Lock()
	globalRLStore = store
	globalRLMu.Unlock()
}

// RateLimiterMiddleware builds a limiter from the global config and store
func RateLimiterMiddleware() gin.HandlerFunc {
	globalRLMu.RLock()
	cfg, store := globalRLCfg, globalRLStore
	globalRLMu.RUnlock()
	return NewRateLimiter(cfg, store).WithObserver(NewPrometheusObserver()).Middleware()
}
