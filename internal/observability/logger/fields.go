package logger

import (
	"time"

	"go.uber.org/zap"
)

// Provider crea un campo para el nombre del provider OAuth.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// Op crea un campo para la operación actual (redirect, token, user).
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Endpoint crea un campo para la URL del endpoint remoto.
func Endpoint(v string) zap.Field {
	return zap.String("endpoint", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración de una operación.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
