package constants

// 环境变量
const (
	ENV_DB_DRIVER           = "DB_DRIVER"
	ENV_DSN                 = "DSN"
	ENV_SESSION_FIELD       = "SESSION_FIELD"
	ENV_SESSION_SECRET      = "SESSION_SECRET"
	ENV_SESSION_EXPIRE_DAYS = "SESSION_EXPIRE_DAYS"
	ENV_STORAGE_KIND        = "STORAGE_KIND"
	ENV_UPLOAD_DIR          = "UPLOAD_DIR"
	ENV_MEDIA_PREFIX        = "MEDIA_PREFIX"
)

// gin 上下文字段
const (
	DbField        = "_lingmeme_db"
	RequestIDField = "request_id"
	// EditorSessionKey 保存在 cookie session 中的当前编辑会话 ID
	EditorSessionKey = "editor_session_id"
)

// 导出相关
const (
	DownloadFilename = "meme.png"
	PNGContentType   = "image/png"
	MemeKeyPrefix    = "memes/"
	// HeaderFrameVersion 当前帧版本号，客户端据此丢弃过期预览
	HeaderFrameVersion = "X-Frame-Version"
)

// 缓存键
const (
	// CacheKeyGalleryGen 画廊列表代数，发布新作品时更新
	CacheKeyGalleryGen   = "gallery:gen"
	CacheKeyGalleryPage  = "gallery:page:%s:%d:%d"
	CacheKeyGalleryCount = "gallery:count:%s"
)
