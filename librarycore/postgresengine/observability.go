package postgresengine

import (
	"context"
	"math"
	"time"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
)

const (
	logMsgSQLExecuted        = "executed sql"
	logMsgOperationCompleted = "library operation completed: "
	logMsgOperationFailed    = "library operation failed: "
	logMsgBeginTxFailed      = "failed to begin transaction"
	logMsgCommitTxFailed     = "failed to commit transaction"
	logMsgRollbackFailed     = "failed to roll back transaction"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database statement execution failed"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgBuildQueryFailed   = "failed to build sql statement"

	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrDurationMS = "duration_ms"

	metricOperationDuration = "library_operation_duration"
	metricOperationErrors   = "library_operation_errors"
	metricRuleViolations    = "library_rule_violations"

	spanNamePrefix    = "library."
	spanAttrOperation = "operation"

	statusSuccess = "success"
	statusError   = "error"
)

// instrument starts the observability scope of one public operation: a span
// (when tracing is configured) and a timer. The returned finish func must be
// called exactly once with the operation outcome.
func (l Library) instrument(ctx context.Context, operation string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := l.startTraceSpan(ctx, operation)

	finish := func(err error) {
		duration := time.Since(start)

		status := statusSuccess
		if err != nil {
			status = statusError
		}

		l.recordOperationMetrics(ctx, operation, duration, status)
		l.finishTraceSpan(span, status)
		l.logOutcome(ctx, operation, duration, err)
	}

	return ctx, finish
}

// logOutcome logs the operation result: info level on success, error level
// with the error text on failure.
func (l Library) logOutcome(ctx context.Context, operation string, duration time.Duration, err error) {
	if err != nil {
		l.logError(ctx, logMsgOperationFailed+operation, err, logAttrDurationMS, l.toMilliseconds(duration))
		return
	}

	if l.logger != nil {
		l.logger.Info(logMsgOperationCompleted+operation, logAttrDurationMS, l.toMilliseconds(duration))
	}

	if l.contextualLogger != nil {
		l.contextualLogger.InfoContext(ctx, logMsgOperationCompleted+operation, logAttrDurationMS, l.toMilliseconds(duration))
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level
// if a logger is configured.
func (l Library) logQueryWithDuration(ctx context.Context, query string, duration time.Duration) {
	if l.logger != nil {
		l.logger.Debug(logMsgSQLExecuted, logAttrDurationMS, l.toMilliseconds(duration), logAttrQuery, query)
	}

	if l.contextualLogger != nil {
		l.contextualLogger.DebugContext(ctx, logMsgSQLExecuted, logAttrDurationMS, l.toMilliseconds(duration), logAttrQuery, query)
	}
}

// logError logs error information at the error level if a logger is configured.
func (l Library) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if l.logger != nil {
		l.logger.Error(message, allArgs...)
	}

	if l.contextualLogger != nil {
		l.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// logWarn logs non-critical issues at the warn level if a logger is configured.
func (l Library) logWarn(ctx context.Context, message string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(message, args...)
	}

	if l.contextualLogger != nil {
		l.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// recordOperationMetrics records the duration and, on failure, the error
// counter for one operation if a metrics collector is configured.
func (l Library) recordOperationMetrics(ctx context.Context, operation string, duration time.Duration, status string) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := l.metricsCollector.(librarycore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
	} else {
		l.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	}

	if status == statusError {
		if contextualCollector, ok := l.metricsCollector.(librarycore.ContextualMetricsCollector); ok {
			contextualCollector.IncrementCounterContext(ctx, metricOperationErrors, labels)
		} else {
			l.metricsCollector.IncrementCounter(metricOperationErrors, labels)
		}
	}
}

// recordRuleViolation counts a business-rule violation (duplicate key, stock
// bound, open-loan conflict, ...) if a metrics collector is configured.
func (l Library) recordRuleViolation(ctx context.Context, operation string, rule string) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"rule":            rule,
	}

	if contextualCollector, ok := l.metricsCollector.(librarycore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricRuleViolations, labels)
	} else {
		l.metricsCollector.IncrementCounter(metricRuleViolations, labels)
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (l Library) startTraceSpan(ctx context.Context, operation string) (context.Context, librarycore.SpanContext) {
	if l.tracingCollector != nil {
		return l.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{spanAttrOperation: operation})
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (l Library) finishTraceSpan(span librarycore.SpanContext, status string) {
	if l.tracingCollector != nil && span != nil {
		l.tracingCollector.FinishSpan(span, status, nil)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (l Library) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
