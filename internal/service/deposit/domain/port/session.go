package port

// SessionInvalidator 丢弃用户的缓存身份。
// 订阅审核通过后服务端改写了 profiles，需要让下一次请求重新加载等级。
type SessionInvalidator interface {
	Invalidate(userID string)
}
