package admission_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tripwise-ai/tripwise/pkg/admission"
)

func TestBucket_SameWindowSameBucket(t *testing.T) {
	window := time.Minute
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	b1 := admission.Bucket(base, window)
	b2 := admission.Bucket(base.Add(59*time.Second), window)
	b3 := admission.Bucket(base.Add(60*time.Second), window)

	assert.Equal(t, b1, b2)
	assert.Equal(t, b1+1, b3)
}

func TestWindowEnd_IsBucketUpperBound(t *testing.T) {
	window := time.Minute
	now := time.Date(2025, 3, 1, 12, 0, 30, 0, time.UTC)

	bucket := admission.Bucket(now, window)
	end := admission.WindowEnd(bucket, window)

	assert.True(t, end.After(now))
	assert.True(t, end.Sub(now) <= window)
	assert.Equal(t, bucket+1, admission.Bucket(end, window))
}

func TestBucket_SubSecondWindow(t *testing.T) {
	window := 100 * time.Millisecond
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, admission.Bucket(base, window)+1, admission.Bucket(base.Add(window), window))
}
