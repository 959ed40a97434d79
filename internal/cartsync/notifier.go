package cartsync

import "go.uber.org/zap"

// Notifier はUIへのトースト通知の差し替え口。
// 失敗はここに流すだけでSyncerのキャッシュは壊さない。
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// ZapNotifier は通知をログに流す実装。
type ZapNotifier struct {
	log *zap.SugaredLogger
}

func NewZapNotifier(log *zap.SugaredLogger) *ZapNotifier {
	return &ZapNotifier{log: log}
}

func (n *ZapNotifier) Success(msg string) { n.log.Infow("notify", "level", "success", "msg", msg) }
func (n *ZapNotifier) Warn(msg string)    { n.log.Warnw("notify", "level", "warn", "msg", msg) }
func (n *ZapNotifier) Error(msg string)   { n.log.Errorw("notify", "level", "error", "msg", msg) }
