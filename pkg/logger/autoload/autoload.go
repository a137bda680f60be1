// Package autoload initializes the global logger from LOG_* environment
// variables on import.
package autoload

import (
	configx "github.com/tala-demo/recoveries-agent/pkg/config"
	logx "github.com/tala-demo/recoveries-agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
