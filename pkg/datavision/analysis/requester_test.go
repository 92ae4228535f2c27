package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

var meterPreview = &models.SpreadsheetPreview{
	Headers:    []string{"station", "unit", "pea_import", "pea_export"},
	SampleRows: [][]any{{"ST-1", int64(0), 1.5, 0.5}},
}

func TestRequesterRequest(t *testing.T) {
	fake := llm.NewFakeClient()
	temp := float32(0.2)
	r, err := NewRequester(fake, datavision.Options{Temperature: &temp}, nil)
	require.NoError(t, err)

	result, err := r.Request(context.Background(), meterPreview)
	require.NoError(t, err)
	require.Len(t, result.Options, 4)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, float32(0.2), reqs[0].Temperature)
	assert.Contains(t, reqs[0].Prompt, `"pea_export"`)
	assert.Equal(t, ResponseSchema(), reqs[0].Schema)
}

func TestRequesterEmptyResponse(t *testing.T) {
	r, err := NewRequester(&llm.FakeClient{}, datavision.DefaultOptions(), nil)
	require.NoError(t, err)

	result, err := r.Request(context.Background(), meterPreview)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, datavision.ErrEmptyResponse)
}

func TestRequesterPropagatesTransportError(t *testing.T) {
	boom := errors.New("503 unavailable")
	fake := &llm.FakeClient{GenerateErr: boom}
	r, err := NewRequester(fake, datavision.DefaultOptions(), nil)
	require.NoError(t, err)

	_, err = r.Request(context.Background(), meterPreview)
	assert.Same(t, boom, err)
	assert.Len(t, fake.Requests(), 1)
}

func TestRequesterMalformedResponse(t *testing.T) {
	r, err := NewRequester(&llm.FakeClient{Payload: `{"options":[{"level":20}]}`}, datavision.DefaultOptions(), nil)
	require.NoError(t, err)

	result, err := r.Request(context.Background(), meterPreview)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, datavision.ErrSchemaValidation)
}

func TestNewRequesterRequiresGenerator(t *testing.T) {
	_, err := NewRequester(nil, datavision.DefaultOptions(), nil)
	assert.Error(t, err)
}
