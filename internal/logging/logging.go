// Package logging は gommon/log（Echoのロガー）でJSON1行ログを出す。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

// Fields はログ1行分の項目。ゼロ値の項目は出さない。
type Fields struct {
	UserID     int64
	OrderID    int64
	ProductID  int64
	Step       string
	Status     string
	DurationMS int64
	Message    string
	Err        error
}

// New はサービス名をprefixにしたロガーを返す。wがnilならstdout。
func New(service string, level string, w io.Writer) *log.Logger {
	l := log.New(service)
	if w == nil {
		w = os.Stdout
	}
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	l.SetHeader(`{"time":"${time_rfc3339_nano}","level":"${level}","service":"${prefix}"}`)
	return l
}

// Discard はテスト用の捨てるロガー。
func Discard() *log.Logger {
	return New("test", "off", io.Discard)
}

func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

func (f Fields) JSON() log.JSON {
	j := log.JSON{}
	if f.UserID != 0 {
		j["user_id"] = f.UserID
	}
	if f.OrderID != 0 {
		j["order_id"] = f.OrderID
	}
	if f.ProductID != 0 {
		j["product_id"] = f.ProductID
	}
	if f.Step != "" {
		j["step"] = f.Step
	}
	if f.Status != "" {
		j["status"] = f.Status
	}
	if f.DurationMS != 0 {
		j["duration_ms"] = f.DurationMS
	}
	if f.Message != "" {
		j["message"] = f.Message
	}
	if f.Err != nil {
		j["error"] = f.Err.Error()
	}
	return j
}

func Info(l *log.Logger, f Fields) {
	l.Infoj(f.JSON())
}

func Warn(l *log.Logger, f Fields) {
	l.Warnj(f.JSON())
}

func Error(l *log.Logger, f Fields) {
	l.Errorj(f.JSON())
}
