// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: Una sola instancia global inicializada con Init().
//   - Context Scoping: un caller puede llevar su propio logger "scoped"
//     (request_id, provider, etc.) en el contexto sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Levels: debug, info, warn, error.
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: "prod", Level: "info"})
//	defer logger.Sync()
//
// En el resto del código:
//
//	log := logger.From(ctx)
//	log.Debug("exchanging code", logger.Provider("github"), logger.Op("token"))
package logger
