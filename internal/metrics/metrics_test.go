package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStage(t *testing.T) {
	before := testutil.ToFloat64(StageTotal.WithLabelValues("summarize", StatusFailed))

	RecordStage("summarize", StatusFailed, 0.25)

	after := testutil.ToFloat64(StageTotal.WithLabelValues("summarize", StatusFailed))
	assert.Equal(t, before+1, after)
}

func TestRecordSinkError(t *testing.T) {
	before := testutil.ToFloat64(SinkErrorsTotal.WithLabelValues("s3"))

	RecordSinkError("s3")
	RecordSinkError("s3")

	assert.Equal(t, before+2, testutil.ToFloat64(SinkErrorsTotal.WithLabelValues("s3")))
}
