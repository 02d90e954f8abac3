package logger

import (
	"github.com/teranos/corrfill/sym"
	"go.uber.org/zap"
)

// Symbol-aware logging helpers.
// These log with the glyph as a structured field, not in the message, so
// logs stay queryable by stage:
//
//	logger.FetchDebugw("Requesting record", logger.FieldContract, c)

// FillInfow logs an info message with the Fill symbol (✎)
func FillInfow(msg string, keysAndValues ...interface{}) {
	SymbolInfow(sym.Fill, msg, keysAndValues...)
}

// FetchDebugw logs a debug message with the Fetch symbol (⇣)
func FetchDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Fetch}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// DBDebugw logs a debug message with the DB symbol (⊔)
func DBDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.DB}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// SymbolInfow logs with any symbol - for dynamic symbol usage
func SymbolInfow(symbol, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, symbol}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// AddSymbol wraps an instance logger with a glyph field.
//
//	r.watchLog = logger.AddSymbol(baseLogger, sym.Watch)
func AddSymbol(l *zap.SugaredLogger, symbol string) *zap.SugaredLogger {
	return l.With(FieldSymbol, symbol)
}
