// Package app groups the fx modules into runnable applications.
package app

import (
	"github.com/lbscek/sarvajna/internal/ai"
	"github.com/lbscek/sarvajna/internal/api"
	"github.com/lbscek/sarvajna/internal/assistant"
	"github.com/lbscek/sarvajna/internal/bot"
	"github.com/lbscek/sarvajna/internal/config"
	"github.com/lbscek/sarvajna/internal/db"
	"github.com/lbscek/sarvajna/internal/knowledge"
	"github.com/lbscek/sarvajna/internal/metrics"
	"github.com/lbscek/sarvajna/internal/speech"
	"github.com/lbscek/sarvajna/internal/store"
	"github.com/lbscek/sarvajna/internal/turns"
	"go.uber.org/fx"
)

// Core provides the assistant and everything it needs. History stays in
// memory unless db.Module is added.
func Core() fx.Option {
	return fx.Options(
		config.Module(),
		knowledge.Module(),
		ai.Module(),
		speech.Module(),
		metrics.Module(),
		store.Module(),
		assistant.Module(),
	)
}

// Server is Core plus persistence and both transports.
func Server() fx.Option {
	return fx.Options(
		Core(),
		db.Module(),
		turns.Module(),
		api.Module(),
		bot.Module(),
	)
}
