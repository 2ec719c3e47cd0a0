package postgresengine_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
	"github.com/quercus-labs/library-lending-core-go/librarycore/postgresengine"
	. "github.com/quercus-labs/library-lending-core-go/testutil/helper"                 //nolint:revive
	. "github.com/quercus-labs/library-lending-core-go/testutil/helper/postgreswrapper" //nolint:revive
)

func setUpObservedLibrary(t *testing.T) (context.Context, postgresengine.Library, *MetricsCollectorSpy, *TracingCollectorSpy, *LogHandlerSpy) {
	t.Helper()

	metricsSpy := NewMetricsCollectorSpy()
	tracingSpy := NewTracingCollectorSpy()
	logSpy := NewLogHandlerSpy(false)

	wrapper := CreateWrapperWithTestConfig(t,
		postgresengine.WithLogger(slog.New(logSpy)),
		postgresengine.WithMetrics(metricsSpy),
		postgresengine.WithTracing(tracingSpy),
	)
	t.Cleanup(wrapper.Close)

	ctx := t.Context()
	library := wrapper.GetLibrary()
	GivenCleanSchema(t, ctx, library)

	metricsSpy.Reset()
	tracingSpy.Reset()
	logSpy.Reset()

	return ctx, library, metricsSpy, tracingSpy, logSpy
}

func Test_Observability_SuccessfulOperation_RecordsDurationAndSpan(t *testing.T) {
	ctx, library, metricsSpy, tracingSpy, _ := setUpObservedLibrary(t)

	book := GivenUniqueBook(t, 3)
	require.NoError(t, library.StoreBook(ctx, &book))

	durations := metricsSpy.GetDurationRecords()
	require.NotEmpty(t, durations, "a duration metric should be recorded")
	assert.Equal(t, "library_operation_duration", durations[0].Metric)
	assert.Equal(t, "store_book", durations[0].Labels["operation"])
	assert.Equal(t, "success", durations[0].Labels["status"])

	assert.True(t, tracingSpy.HasFinishedSpan("library.store_book", "success"),
		"the operation span should be finished with success")
}

func Test_Observability_RuleViolation_RecordsViolationCounterAndErrorSpan(t *testing.T) {
	ctx, library, metricsSpy, tracingSpy, _ := setUpObservedLibrary(t)

	book := GivenUniqueBook(t, 3)
	require.NoError(t, library.StoreBook(ctx, &book))

	duplicate := book
	duplicate.ID = 0
	err := library.StoreBook(ctx, &duplicate)
	require.ErrorIs(t, err, librarycore.ErrDuplicateEntity)

	assert.True(t,
		metricsSpy.HasCounterRecord("library_rule_violations", "rule", "duplicate_entity"),
		"the duplicate should be counted as a rule violation")
	assert.True(t,
		metricsSpy.HasCounterRecord("library_operation_errors", "operation", "store_book"),
		"the failed operation should be counted as an error")

	assert.True(t, tracingSpy.HasFinishedSpan("library.store_book", "error"),
		"the operation span should be finished with error")
}

func Test_Observability_OperationOutcome_IsLogged(t *testing.T) {
	ctx, library, _, _, logSpy := setUpObservedLibrary(t)

	book := GivenUniqueBook(t, 3)
	require.NoError(t, library.StoreBook(ctx, &book))

	assert.True(t, logSpy.HasRecordWithMessage("library operation completed: store_book"),
		"the operation outcome should be logged")
}

func Test_Observability_EveryOperationGetsItsOwnSpan(t *testing.T) {
	ctx, library, _, tracingSpy, _ := setUpObservedLibrary(t)

	book := GivenStoredBook(t, ctx, library, 2)
	card := GivenRegisteredCard(t, ctx, library)
	GivenOpenLoan(t, ctx, library, card.ID, book.ID, 100)
	require.NoError(t, library.ReturnBook(ctx, card.ID, book.ID, 100, 200))

	spanNames := make(map[string]bool)
	for _, span := range tracingSpy.GetFinishedSpans() {
		spanNames[span.Name] = true
	}

	assert.True(t, spanNames["library.store_book"])
	assert.True(t, spanNames["library.register_card"])
	assert.True(t, spanNames["library.borrow_book"])
	assert.True(t, spanNames["library.return_book"])
}
